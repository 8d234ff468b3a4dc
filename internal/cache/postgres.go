package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresStore is the primary cache tier, backed by the cache_entries table.
//
// Expiry is enforced store-side: Get filters on expires_at > now() using the
// database clock, so a stale application clock can never resurrect an expired
// entry. Set upserts the row wholesale, which preserves the entry-immutability
// contract (a refresh writes a new entry, it never patches an old one).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a primary-tier store on top of an open pool.
func NewPostgresStore(database *sql.DB) *PostgresStore {
	return &PostgresStore{db: database}
}

// Get returns the unexpired entry stored under key.
func (s *PostgresStore) Get(ctx context.Context, key string) (*Entry, error) {
	var (
		value    []byte
		storedAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, stored_at FROM cache_entries WHERE key = $1 AND expires_at > now()`,
		key,
	).Scan(&value, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("primary cache get: %w", err)
	}
	return &Entry{Value: value, StoredAt: storedAt}, nil
}

// Set stores value under key, expiring ttl from the database's now().
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("primary cache set: ttl must be positive, got %v", ttl)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, stored_at, expires_at)
		 VALUES ($1, $2, now(), now() + make_interval(secs => $3))
		 ON CONFLICT (key) DO UPDATE
		 SET value = EXCLUDED.value, stored_at = EXCLUDED.stored_at, expires_at = EXCLUDED.expires_at`,
		key, value, ttl.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("primary cache set: %w", err)
	}
	return nil
}

// Ping probes the backing database.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Sweep deletes expired rows and returns the number removed. The worker runs
// this on a schedule; correctness does not depend on it because Get already
// filters expired rows.
func (s *PostgresStore) Sweep(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("primary cache sweep: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("primary cache sweep: %w", err)
	}
	return removed, nil
}
