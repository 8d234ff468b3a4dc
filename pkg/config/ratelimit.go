package config

import (
	"log/slog"
	"time"
)

// RateLimitSettings holds the client-facing rate limiter configuration.
//
// The limiter counts requests per scope in fixed windows; Limit and Window
// define those windows, Cleanup* govern the background sweep that evicts
// scopes whose window ended long ago.
type RateLimitSettings struct {
	// Enabled controls whether the rate limit middleware is installed.
	Enabled bool

	// Limit is the maximum number of requests a scope may make per window.
	Limit int

	// Window is the width of the fixed counting window.
	Window time.Duration

	// CleanupInterval is how often idle scopes are swept.
	CleanupInterval time.Duration

	// CleanupMaxAge is how long after its window ended a scope survives
	// before the sweep removes it.
	CleanupMaxAge time.Duration
}

// LoadRateLimitSettings loads rate limiting configuration from environment
// variables. Invalid values are logged as warnings and replaced with safe
// defaults instead of failing startup.
//
// Environment variables:
//   - RATELIMIT_ENABLED: Enable/disable rate limiting (default: true)
//   - RATELIMIT_MAX: Requests per scope per window (default: 30)
//   - RATELIMIT_WINDOW: Window width (default: 60s)
//   - RATELIMIT_CLEANUP_INTERVAL: Idle scope sweep interval (default: 5m)
//   - RATELIMIT_CLEANUP_MAX_AGE: Idle scope retention (default: 1h)
func LoadRateLimitSettings() *RateLimitSettings {
	settings := &RateLimitSettings{
		Enabled: GetEnvBool("RATELIMIT_ENABLED", true),
	}

	limit := GetEnvInt("RATELIMIT_MAX", 30)
	if limit <= 0 {
		slog.Warn("invalid RATELIMIT_MAX, using default",
			slog.Int("value", limit),
			slog.Int("default", 30))
		limit = 30
	}
	settings.Limit = limit

	settings.Window = positiveDuration("RATELIMIT_WINDOW", 60*time.Second)
	settings.CleanupInterval = positiveDuration("RATELIMIT_CLEANUP_INTERVAL", 5*time.Minute)
	settings.CleanupMaxAge = positiveDuration("RATELIMIT_CLEANUP_MAX_AGE", 1*time.Hour)

	return settings
}

// positiveDuration loads a duration variable and treats zero or
// negative values like a parse failure. A zero window or sweep interval
// would stall the limiter.
func positiveDuration(key string, def time.Duration) time.Duration {
	v := GetEnvDuration(key, def)
	if v <= 0 {
		slog.Warn("non-positive duration, using default",
			slog.String("key", key),
			slog.String("value", v.String()),
			slog.String("default", def.String()))
		return def
	}
	return v
}
