// Package cache implements the two-tier response cache for the fetch
// pipeline: a shared TTL-expiring primary store (Postgres) and a bounded
// in-process LRU fallback used only while the primary is unavailable.
package cache

import (
	"context"
	"time"
)

// Entry is one cached payload together with its write time. The write time
// lets callers reason about entry age, for example to decide whether a hit
// is fresh enough to skip revalidation.
type Entry struct {
	// Value is the opaque serialized payload.
	Value []byte

	// StoredAt is when the entry was written.
	StoredAt time.Time
}

// Store is the contract a single cache tier satisfies.
//
// Implementations must be safe for concurrent use. Values are opaque
// serialized payloads; the cache never inspects them. Entries are immutable
// once written: Set replaces, it never mutates in place.
type Store interface {
	// Get returns the entry stored under key, or nil when the key is absent
	// or its entry has expired. Expired entries are never returned.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set stores value under key with the given time-to-live. A ttl of zero
	// or less is rejected by implementations.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Ping probes the tier's backing store for connectivity.
	Ping(ctx context.Context) error
}

// Clock provides an abstraction for time operations to enable testing.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// SystemClock is a Clock implementation that uses the system time.
type SystemClock struct{}

// Now returns the current system time.
func (c *SystemClock) Now() time.Time {
	return time.Now()
}
