package http

import (
	"context"
	"log/slog"
	"time"

	"searchgate/pkg/ratelimit"
)

// StartRateLimitCleanup starts a background loop that periodically evicts
// idle scopes from the rate limiter.
//
// This prevents unbounded memory growth: every distinct client scope holds a
// window record, and without cleanup a scan of many IPs would pin them all.
//
// The loop stops gracefully when the context is cancelled (e.g., during
// server shutdown). Run it on its own goroutine.
//
// Parameters:
//   - ctx: Context for cancellation (typically server's context)
//   - limiter: The rate limiter to clean up
//   - interval: How often to run cleanup (e.g., 5 minutes)
//   - maxAge: How long after its window ended a scope survives
func StartRateLimitCleanup(
	ctx context.Context,
	limiter *ratelimit.Limiter,
	interval time.Duration,
	maxAge time.Duration,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("rate limit cleanup started",
		slog.Duration("interval", interval),
		slog.Duration("max_age", maxAge))

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate limit cleanup stopped")
			return

		case <-ticker.C:
			removed := limiter.Cleanup(maxAge)

			slog.Debug("rate limit cleanup completed",
				slog.Int("scopes_removed", removed),
				slog.Int("active_scopes", limiter.ScopeCount()))
		}
	}
}
