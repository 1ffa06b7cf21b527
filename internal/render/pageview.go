package render

import (
	"github.com/wikimedia/globaluserpage/internal/remote"
)

// RobotPolicyNoIndex is applied to every page served as a global
// fallback: the canonical copy lives on the central wiki, so indexing
// the local copy would create duplicate content.
const RobotPolicyNoIndex = "noindex,follow"

// ModuleRegistry reports whether a ResourceLoader module name is
// registered on the local wiki. Remote module names that are unknown
// locally are dropped rather than loaded blindly.
type ModuleRegistry interface {
	IsModuleRegistered(name string) bool
}

// StaticModuleRegistry is a ModuleRegistry backed by a fixed name set.
type StaticModuleRegistry map[string]struct{}

// NewStaticModuleRegistry builds a registry from module names.
func NewStaticModuleRegistry(names ...string) StaticModuleRegistry {
	r := make(StaticModuleRegistry, len(names))
	for _, name := range names {
		r[name] = struct{}{}
	}
	return r
}

// IsModuleRegistered implements ModuleRegistry.
func (r StaticModuleRegistry) IsModuleRegistered(name string) bool {
	_, ok := r[name]
	return ok
}

// PageView is a composed global user page, ready for the local wiki's
// output layer.
type PageView struct {
	HTML          string
	Modules       []string
	ModuleStyles  []string
	ModuleScripts []string
	JSConfigVars  map[string]any
	Indicators    map[string]string
	Sections      []remote.Section
	ExternalLinks []string

	// CanonicalURL points search engines at the source copy.
	CanonicalURL string

	// RobotPolicy is always RobotPolicyNoIndex for global fallbacks.
	RobotPolicy string

	// FooterMessage is the configured message key for the attribution
	// footer, or "" when the footer is disabled. Message rendering
	// belongs to the wiki's i18n layer.
	FooterMessage string

	// SourceWiki is the display name (hostname) of the central wiki.
	SourceWiki string
}

// Compose builds a PageView from a cached rendering. Module identifiers
// only survive if the local wiki has them registered.
func Compose(parsed *remote.ParsedPage, sourceURL, sourceWiki, footerMessage string, registry ModuleRegistry) *PageView {
	if parsed == nil {
		return nil
	}

	return &PageView{
		HTML:          parsed.Text,
		Modules:       filterModules(parsed.Modules, registry),
		ModuleStyles:  filterModules(parsed.ModuleStyles, registry),
		ModuleScripts: filterModules(parsed.ModuleScripts, registry),
		JSConfigVars:  parsed.JSConfigVars,
		Indicators:    parsed.Indicators,
		Sections:      parsed.Sections,
		ExternalLinks: parsed.ExternalLinks,
		CanonicalURL:  sourceURL,
		RobotPolicy:   RobotPolicyNoIndex,
		FooterMessage: footerMessage,
		SourceWiki:    sourceWiki,
	}
}

func filterModules(modules []string, registry ModuleRegistry) []string {
	if registry == nil {
		return nil
	}
	var kept []string
	for _, module := range modules {
		if registry.IsModuleRegistered(module) {
			kept = append(kept, module)
		}
	}
	return kept
}
