package eligibility

import (
	"database/sql"
	"log/slog"
)

// DBCentralLookup answers attachment queries from the central identity
// store's localuser table, which records which wikis an account is
// attached on.
type DBCentralLookup struct {
	db *sql.DB
}

// NewDBCentralLookup creates a lookup reading from db.
func NewDBCentralLookup(db *sql.DB) *DBCentralLookup {
	return &DBCentralLookup{db: db}
}

// IsAttached reports whether username is attached on wiki. Any database
// failure reads as "not attached": showing no global page beats showing
// the wrong user's page.
func (l *DBCentralLookup) IsAttached(username, wiki string) bool {
	var one int
	err := l.db.QueryRow(
		`SELECT 1 FROM localuser WHERE lu_name = ? AND lu_wiki = ?`,
		username, wiki,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		slog.Error("Failed to query attachment", "username", username, "wiki", wiki, "error", err)
		return false
	}
	return true
}

var _ CentralIDLookup = (*DBCentralLookup)(nil)
