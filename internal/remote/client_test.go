package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wikimedia/globaluserpage/pkg/cache"
)

// newAPIServer fakes the central wiki's api.php for query and parse calls.
func newAPIServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("request missing format=json: %s", r.URL.RawQuery)
		}

		switch r.URL.Query().Get("action") {
		case "query":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"query": map[string]any{
					"pages": []map[string]any{
						{"title": "User:Alice", "canonicalurl": "https://meta.example.org/wiki/User:Alice"},
					},
				},
			})
		case "parse":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"parse": map[string]any{
					"text":          "<p>Hello from meta</p>",
					"modules":       []string{"ext.gadget.foo"},
					"modulestyles":  []string{"ext.gadget.foo.styles"},
					"jsconfigvars":  map[string]any{"wgFoo": true},
					"externallinks": []string{"https://example.com/"},
					"sections": []map[string]any{
						{"toclevel": 1, "level": "2", "line": "About", "anchor": "About"},
					},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestClientParse(t *testing.T) {
	srv := newAPIServer(t, nil)
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	parsed := client.Parse(context.Background(), "User:Alice", "en", "vector")
	if parsed == nil {
		t.Fatal("Parse() = nil, want payload")
	}
	if parsed.Text != "<p>Hello from meta</p>" {
		t.Errorf("Text = %q", parsed.Text)
	}
	if len(parsed.Modules) != 1 || parsed.Modules[0] != "ext.gadget.foo" {
		t.Errorf("Modules = %v", parsed.Modules)
	}
	if len(parsed.Sections) != 1 || parsed.Sections[0].Anchor != "About" {
		t.Errorf("Sections = %+v", parsed.Sections)
	}
}

func TestClientParseTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	if parsed := client.Parse(context.Background(), "User:Alice", "en", "vector"); parsed != nil {
		t.Errorf("Parse() = %+v on failure, want nil", parsed)
	}
}

func TestClientParseMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	if parsed := client.Parse(context.Background(), "User:Alice", "en", "vector"); parsed != nil {
		t.Error("Parse() returned a payload for malformed JSON")
	}
}

func TestSourceURLStaticSiteMap(t *testing.T) {
	// No server: the static map must answer without any network call.
	client := NewClient("http://127.0.0.1:1/api.php", time.Second)
	page := NewUserPage(client, cache.NewMemoryStore(), "Alice Example", "metawiki",
		map[string]string{"metawiki": "https://meta.example.org/wiki/"})

	got := page.SourceURL(context.Background())
	want := "https://meta.example.org/wiki/User:Alice_Example"
	if got != want {
		t.Errorf("SourceURL() = %q, want %q", got, want)
	}
}

func TestSourceURLFromAPICachesForever(t *testing.T) {
	var calls atomic.Int32
	srv := newAPIServer(t, &calls)
	defer srv.Close()

	store := cache.NewMemoryStore()
	client := NewClient(srv.URL, time.Second)
	page := NewUserPage(client, store, "Alice", "metawiki", nil)

	want := "https://meta.example.org/wiki/User:Alice"
	if got := page.SourceURL(context.Background()); got != want {
		t.Fatalf("SourceURL() = %q, want %q", got, want)
	}
	if got := page.SourceURL(context.Background()); got != want {
		t.Fatalf("second SourceURL() = %q, want %q", got, want)
	}
	if calls.Load() != 1 {
		t.Errorf("API calls = %d, want 1 (second resolution should be cached)", calls.Load())
	}

	// The entry has no expiry.
	if _, ok, _ := store.Get(URLCacheKey("Alice")); !ok {
		t.Error("resolved URL not present in the shared store")
	}
}

func TestSourceURLFailureNotCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	store := cache.NewMemoryStore()
	client := NewClient(srv.URL, time.Second)
	page := NewUserPage(client, store, "Alice", "metawiki", nil)

	if got := page.SourceURL(context.Background()); got != "" {
		t.Fatalf("SourceURL() = %q on failure, want \"\"", got)
	}
	if _, ok, _ := store.Get(URLCacheKey("Alice")); ok {
		t.Error("failure was cached")
	}

	// A later call tries again instead of serving a cached failure.
	_ = page.SourceURL(context.Background())
	if calls.Load() < 2 {
		t.Errorf("API calls = %d, want a fresh attempt per call", calls.Load())
	}
}

func TestWikiDisplayName(t *testing.T) {
	client := NewClient("http://127.0.0.1:1/api.php", time.Second)
	page := NewUserPage(client, cache.NewMemoryStore(), "Alice", "metawiki",
		map[string]string{"metawiki": "https://meta.example.org/wiki"})

	if got := page.WikiDisplayName(context.Background()); got != "meta.example.org" {
		t.Errorf("WikiDisplayName() = %q, want %q", got, "meta.example.org")
	}
}
