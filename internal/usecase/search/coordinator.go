package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"searchgate/internal/cache"
	"searchgate/internal/observability/metrics"
	"searchgate/internal/resilience/circuitbreaker"
)

// Breaker is the slice of the circuit breaker the coordinator needs.
// Satisfied by *circuitbreaker.CircuitBreaker.
type Breaker interface {
	Execute(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error)
	StateString() string
}

// Result is the outcome of a pipeline fetch.
type Result struct {
	// Payload is the raw upstream JSON.
	Payload json.RawMessage

	// CacheHit reports whether the payload was served from cache.
	CacheHit bool
}

// CoordinatorConfig holds the tunables of the fetch coordinator.
type CoordinatorConfig struct {
	// TTL is the cache lifetime of a fetched payload. Default 300s.
	TTL time.Duration

	// RefreshTimeout bounds a background stale-while-revalidate fetch.
	// Default 15s.
	RefreshTimeout time.Duration

	// RefreshAge is the minimum entry age before a cache hit schedules a
	// background refresh. Hits on younger entries are served without
	// revalidation, so repeat fetches inside this window cost no upstream
	// calls at all. Default TTL/2.
	RefreshAge time.Duration
}

// Coordinator orchestrates a fetch through the full pipeline:
// cache lookup, single-flight deduplication, circuit breaker, upstream call,
// cache store. Cache hits return immediately and may trigger a background
// refresh (stale-while-revalidate) whose own failure is logged and discarded.
type Coordinator struct {
	store    cache.Store
	breaker  Breaker
	upstream Searcher
	logger   *slog.Logger
	group    singleflight.Group

	ttl            time.Duration
	refreshTimeout time.Duration
	refreshAge     time.Duration

	// refreshing deduplicates background refreshes per key.
	refreshing singleflight.Group
}

// NewCoordinator creates a Coordinator.
//
// Parameters:
//   - store: Tiered (or any) cache store
//   - breaker: Circuit breaker guarding upstream calls
//   - upstream: Search API client
//   - logger: Structured logger for background refresh outcomes
//   - cfg: Tunables; zero values take defaults
func NewCoordinator(store cache.Store, breaker Breaker, upstream Searcher, logger *slog.Logger, cfg CoordinatorConfig) *Coordinator {
	if cfg.TTL <= 0 {
		cfg.TTL = 300 * time.Second
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = 15 * time.Second
	}
	if cfg.RefreshAge <= 0 {
		cfg.RefreshAge = cfg.TTL / 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:          store,
		breaker:        breaker,
		upstream:       upstream,
		logger:         logger,
		ttl:            cfg.TTL,
		refreshTimeout: cfg.RefreshTimeout,
		refreshAge:     cfg.RefreshAge,
	}
}

// Fetch returns the payload for the query, serving from cache when possible.
//
// A cache hit returns the cached payload immediately. When the entry's age
// has crossed the refresh threshold, a background refresh is spawned; the
// caller never waits on it, and younger entries are served without touching
// the upstream at all. On a miss, concurrent callers with the same key
// collapse into one upstream call and all receive its result. Upstream
// errors arrive wrapped in ErrUpstream; a fast-failed call while the breaker
// is open arrives as circuitbreaker.ErrCircuitOpen.
func (c *Coordinator) Fetch(ctx context.Context, query string, filters map[string]string) (*Result, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	start := time.Now()
	key := BuildKey(query, filters)

	entry, err := c.store.Get(ctx, key)
	if err != nil {
		// The tiered store degrades internally; an error here means both
		// tiers failed. Treat it as a miss.
		c.logger.Warn("cache lookup failed, treating as miss", "key", key, "error", err)
	}
	if entry != nil {
		if time.Since(entry.StoredAt) >= c.refreshAge {
			c.spawnRefresh(key, query, filters)
		}
		metrics.RecordSearch(metrics.OutcomeHit, time.Since(start))
		return &Result{Payload: entry.Value, CacheHit: true}, nil
	}

	payload, err, _ := c.group.Do(key, func() (any, error) {
		fetched, fetchErr := c.fetchAndStore(ctx, key, query, filters)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return fetched, nil
	})
	if err != nil {
		metrics.RecordSearch(metrics.OutcomeError, time.Since(start))
		return nil, err
	}
	metrics.RecordSearch(metrics.OutcomeMiss, time.Since(start))
	return &Result{Payload: payload.(json.RawMessage)}, nil
}

// BreakerState exposes the breaker state for health reporting.
func (c *Coordinator) BreakerState() string {
	return c.breaker.StateString()
}

// fetchAndStore performs the breaker-guarded upstream call and stores the
// result. A cache write failure does not fail the fetch; the payload is
// still returned to the caller.
func (c *Coordinator) fetchAndStore(ctx context.Context, key, query string, filters map[string]string) (json.RawMessage, error) {
	out, err := c.breaker.Execute(ctx, func(callCtx context.Context) (any, error) {
		payload, searchErr := c.upstream.Search(callCtx, query, filters)
		if searchErr != nil {
			return nil, searchErr
		}
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	payload := out.(json.RawMessage)

	if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return payload, nil
}

// spawnRefresh starts a background revalidation of the key. The refresh uses
// its own context so it outlives the request, is deduplicated per key, and
// reports failures through the logger only.
func (c *Coordinator) spawnRefresh(key, query string, filters map[string]string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("background refresh panicked", "key", key, "panic", fmt.Sprint(r))
			}
		}()

		_, _, _ = c.refreshing.Do(key, func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
			defer cancel()

			if _, err := c.fetchAndStore(ctx, key, query, filters); err != nil {
				metrics.RecordRefresh(false)
				c.logger.Warn("background refresh failed", "key", key, "error", err)
				return nil, err
			}
			metrics.RecordRefresh(true)
			c.logger.Debug("background refresh completed", "key", key)
			return nil, nil
		})
	}()
}

// ensure the real breaker satisfies the interface.
var _ Breaker = (*circuitbreaker.CircuitBreaker)(nil)
