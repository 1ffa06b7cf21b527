// Package render caches the central wiki's rendered user pages and
// composes them into displayable page views.
package render

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wikimedia/globaluserpage/internal/remote"
	"github.com/wikimedia/globaluserpage/pkg/cache"
)

// parsedCacheVersion must be bumped whenever ParsedPage's shape changes,
// so a deploy never reads an incompatible cached structure.
const parsedCacheVersion = 3

// negativeTTL bounds retry storms after a failed fetch without caching a
// permanent failure for long.
const negativeTTL = 10 * time.Second

// negativeMarker is the stored value for a failed fetch. It unmarshals
// to a nil ParsedPage.
const negativeMarker = "null"

// Fetcher supplies the remote rendering on a cache miss.
type Fetcher interface {
	Username() string
	Parse(ctx context.Context, lang, skin string) *remote.ParsedPage
}

// Cache is the shared render cache. Entries are keyed globally, not
// per-wiki: the rendering for a username, freshness token, language and
// skin is the same on every participant wiki.
type Cache struct {
	store  cache.Store
	expiry time.Duration
}

// NewCache creates a render cache storing successful entries for expiry.
func NewCache(store cache.Store, expiry time.Duration) *Cache {
	return &Cache{
		store:  store,
		expiry: expiry,
	}
}

// RemoteParsedText returns the rendered central copy for the given
// freshness token, fetching and caching on miss. Returns nil when the
// remote fetch fails or the remote page body is empty; that result is
// itself cached briefly so repeated views stay cheap.
func (c *Cache) RemoteParsedText(ctx context.Context, fetcher Fetcher, touched, lang, skin string) *remote.ParsedPage {
	if touched == "" {
		// Callers establish eligibility first; an empty freshness token
		// here is a logic bug, not a runtime condition.
		slog.Error("RemoteParsedText called without a freshness token", "username", fetcher.Username())
		return nil
	}

	key := ParsedCacheKey(touched, lang, skin, fetcher.Username())
	if value, ok, err := c.store.Get(key); err != nil {
		slog.Error("Render cache read failed", "key", key, "error", err)
	} else if ok {
		var parsed *remote.ParsedPage
		if err := json.Unmarshal([]byte(value), &parsed); err == nil {
			return parsed
		}
		slog.Warn("Discarding undecodable render cache entry", "key", key)
	}

	parsed := fetcher.Parse(ctx, lang, skin)
	if parsed == nil || strings.TrimSpace(parsed.Text) == "" {
		// An empty body is as useless as a failed fetch.
		if err := c.store.Set(key, negativeMarker, negativeTTL); err != nil {
			slog.Error("Render cache negative write failed", "key", key, "error", err)
		}
		return nil
	}

	encoded, err := json.Marshal(parsed)
	if err != nil {
		slog.Error("Failed to encode render payload", "username", fetcher.Username(), "error", err)
		return parsed
	}
	if err := c.store.Set(key, string(encoded), c.expiry); err != nil {
		slog.Error("Render cache write failed", "key", key, "error", err)
	}

	return parsed
}

// ParsedCacheKey builds the global render cache key. Language and skin
// are dimensions because both are passed through to action=parse.
func ParsedCacheKey(touched, lang, skin, username string) string {
	return fmt.Sprintf("globaluserpage-parsed:%d:%s:%s:%s:%s",
		parsedCacheVersion, touched, lang, skin, md5Hex(username))
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
