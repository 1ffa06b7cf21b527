// Package title implements the small slice of MediaWiki title semantics the
// global user page pipeline needs: namespace-prefixed parsing, root-page
// detection and username validation.
package title

import (
	"net/netip"
	"strings"
	"unicode"
)

// Namespace is a MediaWiki namespace number.
type Namespace int

// Namespace numbers follow the MediaWiki defaults.
const (
	NamespaceMain     Namespace = 0
	NamespaceUser     Namespace = 2
	NamespaceUserTalk Namespace = 3
)

// namespaceNames maps canonical (English) namespace prefixes to numbers.
var namespaceNames = map[string]Namespace{
	"":          NamespaceMain,
	"User":      NamespaceUser,
	"User talk": NamespaceUserTalk,
}

// namespacePrefixes is the reverse mapping, used for display text.
var namespacePrefixes = map[Namespace]string{
	NamespaceMain:     "",
	NamespaceUser:     "User",
	NamespaceUserTalk: "User talk",
}

// Title identifies a page as a (namespace, text) pair. Text uses spaces,
// not underscores, and carries any subpage path ("Alice/vector.js").
type Title struct {
	Namespace Namespace
	Text      string
}

// Parse splits a prefixed title like "User:Alice/Archive" into a Title.
// Unknown prefixes are treated as part of a main-namespace title, which
// is all this extension ever needs to tell apart.
func Parse(prefixed string) Title {
	text := strings.TrimSpace(strings.ReplaceAll(prefixed, "_", " "))
	if idx := strings.Index(text, ":"); idx >= 0 {
		prefix := strings.TrimSpace(text[:idx])
		if ns, ok := namespaceNames[prefix]; ok {
			return Title{Namespace: ns, Text: strings.TrimSpace(text[idx+1:])}
		}
	}
	return Title{Namespace: NamespaceMain, Text: text}
}

// NewUserPage returns the root user page title for a username.
func NewUserPage(username string) Title {
	return Title{Namespace: NamespaceUser, Text: username}
}

// PrefixedText returns the canonical display form, e.g. "User:Alice".
func (t Title) PrefixedText() string {
	prefix := namespacePrefixes[t.Namespace]
	if prefix == "" {
		return t.Text
	}
	return prefix + ":" + t.Text
}

// RootText returns the title text with any subpage path stripped.
func (t Title) RootText() string {
	if idx := strings.Index(t.Text, "/"); idx >= 0 {
		return t.Text[:idx]
	}
	return t.Text
}

// IsSubpage reports whether the title carries a subpage path.
func (t Title) IsSubpage() bool {
	return strings.Contains(t.Text, "/")
}

// DBKey returns the storage form of the title text, with underscores.
func (t Title) DBKey() string {
	return strings.ReplaceAll(t.Text, " ", "_")
}

// OtherPage returns the companion talk/subject page. Purging both keeps the
// subject/talk navigation tabs colored consistently on participant wikis.
func (t Title) OtherPage() Title {
	switch t.Namespace {
	case NamespaceUser:
		return Title{Namespace: NamespaceUserTalk, Text: t.Text}
	case NamespaceUserTalk:
		return Title{Namespace: NamespaceUser, Text: t.Text}
	default:
		return t
	}
}

// invalidUsernameChars are characters MediaWiki never allows in usernames.
const invalidUsernameChars = "/#<>[]|{}@:"

// NormalizeUsername canonicalizes a username the way MediaWiki does:
// underscores become spaces, surrounding whitespace is trimmed and the
// first letter is uppercased. Returns "" if the name is not a valid,
// named, non-temporary account.
func NormalizeUsername(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if name == "" {
		return ""
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	name = string(runes)
	if !IsValidUsername(name) {
		return ""
	}
	return name
}

// IsValidUsername reports whether a name is a syntactically valid username
// that can own a global user page. IP addresses and temporary accounts are
// excluded: neither has a central identity to attach to.
func IsValidUsername(name string) bool {
	if name == "" {
		return false
	}
	if strings.ContainsAny(name, invalidUsernameChars) {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	if IsIPAddress(name) {
		return false
	}
	// Temporary account names are auto-generated and start with a tilde.
	if strings.HasPrefix(name, "~") {
		return false
	}
	return true
}

// IsIPAddress reports whether a name is shaped like an IPv4/IPv6 address
// or CIDR range.
func IsIPAddress(name string) bool {
	if _, err := netip.ParseAddr(name); err == nil {
		return true
	}
	if _, err := netip.ParsePrefix(name); err == nil {
		return true
	}
	return false
}
