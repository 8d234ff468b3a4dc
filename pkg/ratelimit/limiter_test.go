package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a controllable Clock for window rollover tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	clock := newFakeClock()
	limiter := New(Config{Limit: 3, Window: time.Minute, Clock: clock})

	for i := 0; i < 3; i++ {
		decision := limiter.Allow("client-a")
		assert.True(t, decision.Allowed, "request %d should be allowed", i)
		assert.Equal(t, 3-(i+1), decision.Remaining)
	}

	decision := limiter.Allow("client-a")
	assert.False(t, decision.Allowed)
	assert.True(t, decision.IsDenied())
	assert.Equal(t, 0, decision.Remaining)
	assert.Positive(t, decision.RetryAfter)
}

func TestLimiter_WindowReset(t *testing.T) {
	clock := newFakeClock()
	limiter := New(Config{Limit: 2, Window: time.Minute, Clock: clock})

	require.True(t, limiter.Allow("client-a").Allowed)
	require.True(t, limiter.Allow("client-a").Allowed)
	require.False(t, limiter.Allow("client-a").Allowed)

	// Inside the same window the verdict stays denied.
	clock.Advance(30 * time.Second)
	assert.False(t, limiter.Allow("client-a").Allowed)

	// Once the window has elapsed a fresh one starts.
	clock.Advance(31 * time.Second)
	decision := limiter.Allow("client-a")
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Remaining)
}

func TestLimiter_ScopesAreIndependent(t *testing.T) {
	clock := newFakeClock()
	limiter := New(Config{Limit: 1, Window: time.Minute, Clock: clock})

	assert.True(t, limiter.Allow("client-a").Allowed)
	assert.False(t, limiter.Allow("client-a").Allowed)

	// A different scope has its own window.
	assert.True(t, limiter.Allow("client-b").Allowed)
	assert.Equal(t, 2, limiter.ScopeCount())
}

func TestLimiter_RetryAfterPointsAtWindowEnd(t *testing.T) {
	clock := newFakeClock()
	limiter := New(Config{Limit: 1, Window: time.Minute, Clock: clock})

	first := limiter.Allow("client-a")
	require.True(t, first.Allowed)

	clock.Advance(15 * time.Second)
	denied := limiter.Allow("client-a")
	require.False(t, denied.Allowed)
	assert.Equal(t, 45*time.Second, denied.RetryAfter)
	assert.Equal(t, first.ResetAt, denied.ResetAt)
	assert.Equal(t, int64(45), denied.RetryAfterSeconds())
}

func TestLimiter_Defaults(t *testing.T) {
	limiter := New(Config{})

	assert.Equal(t, 30, limiter.limit)
	assert.Equal(t, 60*time.Second, limiter.width)
	assert.Equal(t, "client", limiter.limiterType)
}

func TestLimiter_Cleanup(t *testing.T) {
	clock := newFakeClock()
	limiter := New(Config{Limit: 5, Window: time.Minute, Clock: clock})

	limiter.Allow("client-a")
	limiter.Allow("client-b")
	require.Equal(t, 2, limiter.ScopeCount())

	// Windows ended less than maxAge ago survive.
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 0, limiter.Cleanup(5*time.Minute))

	// Keep client-b fresh, then expire client-a.
	limiter.Allow("client-b")
	clock.Advance(10 * time.Minute)
	limiter.Allow("client-b")

	removed := limiter.Cleanup(5 * time.Minute)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, limiter.ScopeCount())
}

func TestLimiter_ConcurrentAllowRespectsLimit(t *testing.T) {
	limiter := New(Config{Limit: 50, Window: time.Minute})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("shared").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed, "exactly Limit requests may pass in one window")
}

func TestLimiter_MetricsRecorded(t *testing.T) {
	clock := newFakeClock()
	metrics := &captureMetrics{}
	limiter := New(Config{Limit: 1, Window: time.Minute, Clock: clock, Metrics: metrics})

	limiter.Allow("client-a")
	limiter.Allow("client-a")

	assert.Equal(t, 1, metrics.allowed)
	assert.Equal(t, 1, metrics.denied)
	assert.Equal(t, 2, metrics.durations)
}

// captureMetrics counts observations for assertions.
type captureMetrics struct {
	allowed   int
	denied    int
	durations int
	scopes    int
}

func (m *captureMetrics) RecordAllowed(limiterType string) { m.allowed++ }
func (m *captureMetrics) RecordDenied(limiterType string)  { m.denied++ }
func (m *captureMetrics) RecordCheckDuration(limiterType string, duration time.Duration) {
	m.durations++
}
func (m *captureMetrics) SetActiveScopes(limiterType string, count int) { m.scopes = count }

func TestDecision_String(t *testing.T) {
	allowed := &Decision{Scope: "a", Allowed: true, Limit: 3, Remaining: 2, ResetAt: time.Unix(0, 0)}
	assert.Contains(t, allowed.String(), "Allowed: true")

	denied := &Decision{Scope: "a", Limit: 3, RetryAfter: 30 * time.Second}
	assert.Contains(t, denied.String(), "Allowed: false")
	assert.Contains(t, denied.String(), fmt.Sprint(30*time.Second))
}

func TestDecision_RetryAfterSeconds_RoundsUp(t *testing.T) {
	d := &Decision{RetryAfter: 1500 * time.Millisecond}
	assert.Equal(t, int64(2), d.RetryAfterSeconds())

	zero := &Decision{}
	assert.Equal(t, int64(0), zero.RetryAfterSeconds())
}
