package cache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the tiered cache.
var (
	// cacheOpsTotal tracks cache operations by tier and outcome.
	cacheOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total cache operations by tier, operation and outcome",
		},
		[]string{"tier", "op", "outcome"},
	)

	// cacheDegraded reports whether the cache is serving from the fallback tier.
	// 0 = primary healthy, 1 = degraded
	cacheDegraded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_degraded",
			Help: "Whether the cache is degraded to the fallback tier (0=no, 1=yes)",
		},
	)
)

// Health reports the tiered cache's operating mode.
type Health string

const (
	// HealthOK means the primary tier is serving reads and writes.
	HealthOK Health = "ok"

	// HealthDegraded means the primary tier is unavailable and the
	// in-process fallback tier is serving instead.
	HealthDegraded Health = "degraded"
)

// Tiered routes cache operations to the primary tier while it is available
// and transparently to the fallback tier once it is not.
//
// Availability is decided once at startup by a connection probe and flipped
// off permanently by the first caught error on a primary operation. No
// reconnection is attempted for the remainder of the process lifetime: a
// retry loop against a down store would amplify the outage it is meant to
// absorb. This is a deliberate trade-off, accepted in exchange for a quiet
// failure mode.
//
// Exactly one tier is authoritative at any moment; there is no double-write
// to the fallback while the primary is healthy.
type Tiered struct {
	primary  Store
	fallback Store
	logger   *slog.Logger

	// degraded is sticky: 0 -> 1 once, never back.
	degraded atomic.Bool
}

// NewTiered builds the tiered cache and probes the primary tier.
// A failed probe starts the process in degraded mode immediately.
func NewTiered(ctx context.Context, primary, fallback Store, logger *slog.Logger) *Tiered {
	if logger == nil {
		logger = slog.Default()
	}

	t := &Tiered{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := primary.Ping(probeCtx); err != nil {
		t.markDegraded("startup probe", err)
	} else {
		cacheDegraded.Set(0)
		logger.Info("primary cache tier available")
	}

	return t
}

// Get returns the cached entry for key from the authoritative tier.
// A primary-tier error degrades the cache and re-serves the read from the
// fallback tier; the caller never sees cache-infrastructure errors.
func (t *Tiered) Get(ctx context.Context, key string) (*Entry, error) {
	if t.degraded.Load() {
		entry, err := t.fallback.Get(ctx, key)
		t.observe("fallback", "get", entry != nil, err)
		return entry, err
	}

	entry, err := t.primary.Get(ctx, key)
	if err != nil {
		t.markDegraded("get", err)
		entry, err = t.fallback.Get(ctx, key)
		t.observe("fallback", "get", entry != nil, err)
		return entry, err
	}
	t.observe("primary", "get", entry != nil, nil)
	return entry, nil
}

// Set writes value to the authoritative tier with the given TTL.
func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if t.degraded.Load() {
		err := t.fallback.Set(ctx, key, value, ttl)
		t.observe("fallback", "set", err == nil, err)
		return err
	}

	if err := t.primary.Set(ctx, key, value, ttl); err != nil {
		t.markDegraded("set", err)
		err = t.fallback.Set(ctx, key, value, ttl)
		t.observe("fallback", "set", err == nil, err)
		return err
	}
	t.observe("primary", "set", true, nil)
	return nil
}

// Ping probes the authoritative tier's backing store.
func (t *Tiered) Ping(ctx context.Context) error {
	if t.degraded.Load() {
		return t.fallback.Ping(ctx)
	}
	return t.primary.Ping(ctx)
}

// Health reports whether the cache is running on the primary tier.
func (t *Tiered) Health() Health {
	if t.degraded.Load() {
		return HealthDegraded
	}
	return HealthOK
}

// markDegraded flips the cache to fallback-only operation.
// The first flip logs a warning; later calls are no-ops so an error storm on
// concurrent operations produces a single log line.
func (t *Tiered) markDegraded(op string, err error) {
	if t.degraded.CompareAndSwap(false, true) {
		cacheDegraded.Set(1)
		t.logger.Warn("primary cache tier unavailable, serving fallback tier for process lifetime",
			slog.String("op", op),
			slog.Any("error", err))
	}
}

func (t *Tiered) observe(tier, op string, ok bool, err error) {
	outcome := "miss"
	if ok {
		outcome = "hit"
	}
	if err != nil {
		outcome = "error"
	}
	cacheOpsTotal.WithLabelValues(tier, op, outcome).Inc()
}
