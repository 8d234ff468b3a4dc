package db

import (
	"database/sql"
)

// MigrateUp creates the cache_entries table used by the primary cache tier.
// Entries are immutable once written; a refresh replaces the row wholesale.
func MigrateUp(database *sql.DB) error {
	if _, err := database.Exec(`
CREATE TABLE IF NOT EXISTS cache_entries (
    key        TEXT PRIMARY KEY,
    value      BYTEA NOT NULL,
    stored_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    expires_at TIMESTAMPTZ NOT NULL
)`); err != nil {
		return err
	}

	// Used by the worker's expiry sweep (DELETE ... WHERE expires_at <= now()).
	if _, err := database.Exec(
		`CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at)`); err != nil {
		return err
	}

	return nil
}
