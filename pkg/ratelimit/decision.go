package ratelimit

import (
	"fmt"
	"time"
)

// Decision represents the result of a rate limit check.
//
// It carries the verdict plus the metadata a caller needs to populate
// RateLimit response headers and a Retry-After hint.
type Decision struct {
	// Scope is the identifier the check was made for (e.g. client ID, IP).
	Scope string

	// Allowed indicates whether the request should be permitted.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests remaining in the current window.
	// Zero means the limit has been reached.
	Remaining int

	// ResetAt is the time the current fixed window ends.
	ResetAt time.Time

	// RetryAfter is how long a rejected caller should wait before retrying.
	// Zero for allowed requests.
	RetryAfter time.Duration

	// LimiterType identifies which limiter made this decision (e.g. "client").
	LimiterType string
}

// String returns a human-readable representation of the decision.
func (d *Decision) String() string {
	if d.Allowed {
		return fmt.Sprintf("Decision{Allowed: true, Scope: %s, Remaining: %d/%d, ResetAt: %s}",
			d.Scope, d.Remaining, d.Limit, d.ResetAt.Format(time.RFC3339))
	}
	return fmt.Sprintf("Decision{Allowed: false, Scope: %s, Limit: %d, RetryAfter: %s}",
		d.Scope, d.Limit, d.RetryAfter)
}

// IsDenied returns true if the request was rejected.
func (d *Decision) IsDenied() bool {
	return !d.Allowed
}

// ResetAtUnix returns the window end as a Unix timestamp.
//
// This is useful for HTTP headers like X-RateLimit-Reset.
func (d *Decision) ResetAtUnix() int64 {
	return d.ResetAt.Unix()
}

// RetryAfterSeconds returns the retry delay in whole seconds, rounded up so
// a client that honors the header never retries inside the same window.
//
// This is useful for HTTP headers like Retry-After.
func (d *Decision) RetryAfterSeconds() int64 {
	if d.RetryAfter <= 0 {
		return 0
	}
	seconds := int64((d.RetryAfter + time.Second - 1) / time.Second)
	return seconds
}
