// Package eligibility decides whether a missing user page should be
// served from the central wiki. It is database-only: no network calls
// happen here, and every failure resolves to false.
package eligibility

import (
	"database/sql"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wikimedia/globaluserpage/pkg/title"
)

// decisionCacheSize bounds the per-request instance caches. The link
// renderer can ask about thousands of titles per page view, so both the
// decision and the freshness timestamp are memoized.
const decisionCacheSize = 100

// noGlobalProperty is the page property set by the __NOGLOBAL__ magic
// word, letting users opt their central page out of propagation.
const noGlobalProperty = "noglobal"

// CentralIDLookup reports whether a username is attached to the central
// identity on a given wiki.
type CentralIDLookup interface {
	IsAttached(username, wiki string) bool
}

// Manager is the eligibility oracle for global user pages.
type Manager struct {
	db          *sql.DB
	lookup      CentralIDLookup
	localWiki   string
	centralWiki string

	displayCache *lru.Cache[string, bool]
	touchedCache *lru.Cache[string, string]
}

// NewManager creates a Manager reading the central wiki's page metadata
// from db. localWiki is the identity of the wiki this process runs as.
func NewManager(db *sql.DB, lookup CentralIDLookup, localWiki, centralWiki string) (*Manager, error) {
	displayCache, err := lru.New[string, bool](decisionCacheSize)
	if err != nil {
		return nil, err
	}
	touchedCache, err := lru.New[string, string](decisionCacheSize)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:           db,
		lookup:       lookup,
		localWiki:    localWiki,
		centralWiki:  centralWiki,
		displayCache: displayCache,
		touchedCache: touchedCache,
	}, nil
}

// ShouldDisplayGlobalPage reports whether t, assuming it doesn't exist
// locally, should display the central wiki's copy.
func (m *Manager) ShouldDisplayGlobalPage(t title.Title) bool {
	if !m.canBeGlobal(t) {
		return false
	}

	text := t.PrefixedText()
	if decision, ok := m.displayCache.Get(text); ok {
		return decision
	}

	username := title.NormalizeUsername(t.Text)
	if username == "" {
		m.displayCache.Add(text, false)
		return false
	}

	// The username must represent the same account here and centrally.
	if !m.lookup.IsAttached(username, m.localWiki) ||
		!m.lookup.IsAttached(username, m.centralWiki) {
		m.displayCache.Add(text, false)
		return false
	}

	decision := m.CentralTouched(username) != ""
	m.displayCache.Add(text, decision)

	return decision
}

// CentralTouched returns the page_touched timestamp of the user's central
// user page, or "" if the page does not exist or carries the __NOGLOBAL__
// opt-out property. The timestamp doubles as the render cache's freshness
// token.
func (m *Manager) CentralTouched(username string) string {
	if touched, ok := m.touchedCache.Get(username); ok {
		return touched
	}

	userPage := title.NewUserPage(username)

	// One round trip: the opt-out property rides along on a left join
	// instead of a second query.
	row := m.db.QueryRow(`
		SELECT page_touched, pp_propname
		FROM page
		LEFT JOIN page_props ON page_id = pp_page AND pp_propname = ?
		WHERE page_namespace = ? AND page_title = ?`,
		noGlobalProperty, int(title.NamespaceUser), userPage.DBKey(),
	)

	var (
		touched  string
		propName sql.NullString
	)
	switch err := row.Scan(&touched, &propName); err {
	case nil:
		if propName.Valid {
			touched = ""
		}
	case sql.ErrNoRows:
		touched = ""
	default:
		slog.Error("Failed to query central page metadata", "username", username, "error", err)
		return ""
	}

	m.touchedCache.Add(username, touched)

	return touched
}

// canBeGlobal checks the structural conditions that need no database.
func (m *Manager) canBeGlobal(t title.Title) bool {
	// The central wiki serves its own pages directly.
	if m.localWiki == m.centralWiki {
		return false
	}

	if t.Namespace != title.NamespaceUser {
		return false
	}

	// Only root user pages are globalized.
	if t.IsSubpage() {
		return false
	}

	return title.IsValidUsername(t.Text)
}

// IsSourcePage reports whether t is a page on the central wiki whose
// content other wikis might be displaying.
func (m *Manager) IsSourcePage(t title.Title) bool {
	return m.localWiki == m.centralWiki &&
		t.Namespace == title.NamespaceUser &&
		!t.IsSubpage()
}
