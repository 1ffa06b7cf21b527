package remote

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/wikimedia/globaluserpage/pkg/cache"
	"github.com/wikimedia/globaluserpage/pkg/title"
)

// UserPage points at one user's page on the central wiki.
type UserPage struct {
	client      *Client
	store       cache.Store
	username    string
	centralWiki string
	wikiURLs    map[string]string
}

// NewUserPage creates a UserPage for username. wikiURLs is the static
// site map consulted before falling back to the API.
func NewUserPage(client *Client, store cache.Store, username, centralWiki string, wikiURLs map[string]string) *UserPage {
	return &UserPage{
		client:      client,
		store:       store,
		username:    username,
		centralWiki: centralWiki,
		wikiURLs:    wikiURLs,
	}
}

// Username returns the owning username.
func (p *UserPage) Username() string {
	return p.username
}

// Title returns the root user page title.
func (p *UserPage) Title() title.Title {
	return title.NewUserPage(p.username)
}

// prefixedTitle is the canonical (English-namespace) form used in API
// calls and URLs, regardless of the local wiki's content language.
func (p *UserPage) prefixedTitle() string {
	return p.Title().PrefixedText()
}

// SourceURL resolves the canonical URL of the central copy. The static
// site map wins when the central wiki is listed there; otherwise one API
// request resolves it and the result is cached without expiry. Central
// wiki URL changes require an operator to clear the cache by hand.
func (p *UserPage) SourceURL(ctx context.Context) string {
	if base, ok := p.wikiURLs[p.centralWiki]; ok {
		return strings.TrimRight(base, "/") + "/" + strings.ReplaceAll(p.prefixedTitle(), " ", "_")
	}

	return p.remoteURLFromAPI(ctx)
}

// remoteURLFromAPI resolves the source URL through the API, caching the
// answer indefinitely.
func (p *UserPage) remoteURLFromAPI(ctx context.Context) string {
	key := URLCacheKey(p.username)
	if cached, ok, _ := p.store.Get(key); ok {
		return cached
	}

	resolved := p.client.PageInfoURL(ctx, p.prefixedTitle())
	if resolved == "" {
		// Don't cache upon failure.
		return ""
	}
	_ = p.store.Set(key, resolved, 0)

	return resolved
}

// WikiDisplayName returns the hostname of the wiki serving the source
// page, for footer attribution.
func (p *UserPage) WikiDisplayName(ctx context.Context) string {
	sourceURL := p.SourceURL(ctx)
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}

// Parse fetches the rendered form of the central copy. Returns nil on
// any transport failure.
func (p *UserPage) Parse(ctx context.Context, lang, skin string) *ParsedPage {
	return p.client.Parse(ctx, p.prefixedTitle(), lang, skin)
}

// URLCacheKey is the shared-store key holding a user's resolved source
// URL. Stored without expiry.
func URLCacheKey(username string) string {
	return "globaluserpage-url:" + md5Hex(username)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
