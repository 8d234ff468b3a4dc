// Package search implements the resilient fetch pipeline: cache-key
// derivation, the fetch coordinator with stale-while-revalidate semantics,
// and the typed errors callers dispatch on.
package search

import (
	"context"
	"encoding/json"
	"errors"
)

// Searcher is the contract for the upstream search API client.
//
// Implementations perform a single GET against the external API and return
// its JSON payload verbatim. The payload is opaque at this layer; the domain
// tools own strongly-typed parsing of it.
//
// The pipeline wraps every Searcher call in the circuit breaker, so
// implementations should not retry internally; a failed call is simply
// reported and counted against the breaker's rolling window.
type Searcher interface {
	// Search runs the query with the given recognized filters.
	//
	// Parameters:
	//   - ctx: Context carrying the breaker's per-call deadline
	//   - query: Non-empty, validated query text
	//   - filters: Recognized filter names to values (may be empty)
	//
	// Returns the raw JSON payload or an error wrapping ErrUpstream.
	Search(ctx context.Context, query string, filters map[string]string) (json.RawMessage, error)
}

// Sentinel errors for the fetch pipeline.
// These allow callers to distinguish infrastructure protection from genuine
// upstream failure and react accordingly (retry later vs. report).
var (
	// ErrUpstream indicates the upstream search API reported a failure
	// (network error, timeout, or HTTP error status). Eligible for
	// breaker-tracked retry on the next call; never retried inline.
	ErrUpstream = errors.New("upstream search failed")

	// ErrEmptyQuery indicates the caller passed an empty query string.
	ErrEmptyQuery = errors.New("query must not be empty")
)
