package cache

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/wikimedia/globaluserpage/pkg/database"
)

// SQLiteStore is a Store backed by a shared SQLite database. All wikis in
// the fleet point at the same database, which gives the cross-wiki reuse
// the cache key scheme depends on.
type SQLiteStore struct {
	db        *database.Database
	tableName string
}

// NewSQLiteStore creates a store on top of db using the given table.
func NewSQLiteStore(db *database.Database, tableName string) (*SQLiteStore, error) {
	s := &SQLiteStore{
		db:        db,
		tableName: tableName,
	}
	if err := s.initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

// initialize creates the cache table if it doesn't exist. expires_at is
// NULL for entries stored without an expiry.
func (s *SQLiteStore) initialize() error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT NOT NULL UNIQUE,
			value TEXT NOT NULL,
			expires_at TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_%s_key ON %s(key);
		CREATE INDEX IF NOT EXISTS idx_%s_expires ON %s(expires_at);
	`, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName)

	return s.db.ExecuteSchema(schema)
}

// Get retrieves a value from the store.
func (s *SQLiteStore) Get(key string) (string, bool, error) {
	query := fmt.Sprintf(`
		SELECT value FROM %s
		WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)
	`, s.tableName)

	var value string
	err := s.db.DB().QueryRow(query, key, time.Now().UTC()).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cache value: %w", err)
	}

	return value, true, nil
}

// Set stores a value. A ttl <= 0 stores the entry without an expiry.
func (s *SQLiteStore) Set(key, value string, ttl time.Duration) error {
	var expiresAt any
	if ttl > 0 {
		expiresAt = time.Now().UTC().Add(ttl)
	}

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (key, value, expires_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`, s.tableName)

	if _, err := s.db.DB().Exec(query, key, value, expiresAt); err != nil {
		return fmt.Errorf("failed to set cache value: %w", err)
	}

	return nil
}

// Delete removes a value from the store.
func (s *SQLiteStore) Delete(key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, s.tableName)

	if _, err := s.db.DB().Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete cache value: %w", err)
	}

	return nil
}

// CleanupExpired removes expired entries from the store.
func (s *SQLiteStore) CleanupExpired() error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at IS NOT NULL AND expires_at < ?`, s.tableName)

	result, err := s.db.DB().Exec(query, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to cleanup expired entries: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		slog.Debug("Cleaned up expired cache entries", "table", s.tableName, "count", rowsAffected)
	}

	return nil
}

var _ Store = (*SQLiteStore)(nil)
