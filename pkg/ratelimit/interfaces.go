// Package ratelimit provides framework-agnostic fixed-window rate limiting.
//
// The limiter is an admission-control gate: it answers allow/deny per scope
// and tells rejected callers when to retry. There is no queuing and no
// backpressure beyond the verdict. Scopes are opaque strings (client
// identity, IP address, or a single global scope).
package ratelimit

import (
	"time"
)

// Metrics defines the interface for recording rate limiting metrics.
//
// Implementations can use Prometheus, StatsD, or custom metrics systems.
type Metrics interface {
	// RecordAllowed records a rate limit check that admitted the request.
	RecordAllowed(limiterType string)

	// RecordDenied records a rate limit violation (request rejected).
	RecordDenied(limiterType string)

	// RecordCheckDuration records the duration of a rate limit check.
	RecordCheckDuration(limiterType string, duration time.Duration)

	// SetActiveScopes records the number of scopes with a live window.
	SetActiveScopes(limiterType string, count int)
}

// Clock provides an abstraction for time operations to enable testing.
//
// This interface allows for dependency injection of time functions,
// making it easy to test window rollover with fake clocks.
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
