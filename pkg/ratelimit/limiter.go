package ratelimit

import (
	"sync"
	"time"
)

// Config holds configuration for a fixed-window Limiter.
type Config struct {
	// Limit is the maximum number of requests per window. Default: 30.
	Limit int

	// Window is the fixed window width. Default: 60s.
	Window time.Duration

	// LimiterType labels metrics and decisions (e.g. "client"). Default: "client".
	LimiterType string

	// Clock provides time operations for testing. Default: SystemClock.
	Clock Clock

	// Metrics records check outcomes. Default: NoopMetrics.
	Metrics Metrics
}

// applyDefaults fills zero-valued fields with safe defaults.
func (c *Config) applyDefaults() {
	if c.Limit <= 0 {
		c.Limit = 30
	}
	if c.Window <= 0 {
		c.Window = 60 * time.Second
	}
	if c.LimiterType == "" {
		c.LimiterType = "client"
	}
	if c.Clock == nil {
		c.Clock = &SystemClock{}
	}
	if c.Metrics == nil {
		c.Metrics = &NoopMetrics{}
	}
}

// window is one scope's fixed counting window.
type window struct {
	start time.Time
	count int
}

// Limiter implements fixed-window rate limiting per scope.
//
// Each scope owns a {windowStart, count} pair, created lazily on first use
// and reset lazily once the window has elapsed. Windows are non-overlapping:
// a request arriving after windowStart+Window starts a fresh window anchored
// at its own arrival time.
//
// Limiter instances are explicitly constructed and injectable so tests can
// isolate them and production can run one per admission point. The zero
// value is not usable; call New.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window

	limit       int
	width       time.Duration
	limiterType string
	clock       Clock
	metrics     Metrics
}

// New creates a fixed-window limiter with the given configuration.
func New(cfg Config) *Limiter {
	cfg.applyDefaults()

	return &Limiter{
		windows:     make(map[string]*window),
		limit:       cfg.Limit,
		width:       cfg.Window,
		limiterType: cfg.LimiterType,
		clock:       cfg.Clock,
		metrics:     cfg.Metrics,
	}
}

// Allow checks whether one more request is admitted for scope.
//
// The check and the counter increment happen under a single lock
// acquisition, so concurrent callers cannot slip past the limit between
// check and add.
func (l *Limiter) Allow(scope string) *Decision {
	started := l.clock.Now()

	l.mu.Lock()
	now := l.clock.Now()

	w, exists := l.windows[scope]
	if !exists || !now.Before(w.start.Add(l.width)) {
		w = &window{start: now}
		l.windows[scope] = w
	}

	resetAt := w.start.Add(l.width)

	var decision *Decision
	if w.count < l.limit {
		w.count++
		decision = &Decision{
			Scope:       scope,
			Allowed:     true,
			Limit:       l.limit,
			Remaining:   l.limit - w.count,
			ResetAt:     resetAt,
			LimiterType: l.limiterType,
		}
	} else {
		decision = &Decision{
			Scope:       scope,
			Allowed:     false,
			Limit:       l.limit,
			Remaining:   0,
			ResetAt:     resetAt,
			RetryAfter:  resetAt.Sub(now),
			LimiterType: l.limiterType,
		}
	}
	active := len(l.windows)
	l.mu.Unlock()

	if decision.Allowed {
		l.metrics.RecordAllowed(l.limiterType)
	} else {
		l.metrics.RecordDenied(l.limiterType)
	}
	l.metrics.RecordCheckDuration(l.limiterType, l.clock.Now().Sub(started))
	l.metrics.SetActiveScopes(l.limiterType, active)

	return decision
}

// Cleanup removes windows that ended more than maxAge ago and returns the
// number removed. Run it periodically to keep memory bounded under scope
// churn; correctness does not depend on it because Allow resets elapsed
// windows lazily.
func (l *Limiter) Cleanup(maxAge time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.clock.Now().Add(-maxAge)
	removed := 0
	for scope, w := range l.windows {
		if w.start.Add(l.width).Before(cutoff) {
			delete(l.windows, scope)
			removed++
		}
	}

	l.metrics.SetActiveScopes(l.limiterType, len(l.windows))
	return removed
}

// ScopeCount returns the number of scopes with a tracked window.
func (l *Limiter) ScopeCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
