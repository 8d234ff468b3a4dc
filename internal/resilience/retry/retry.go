// Package retry reruns operations whose failures are likely to clear on
// their own, waiting exponentially longer between attempts. Permanent
// failures are returned immediately so callers never burn their attempt
// budget on an error that cannot improve.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Config shapes the backoff schedule for one call site.
type Config struct {
	// MaxAttempts bounds the total number of calls, including the first.
	MaxAttempts int

	// InitialDelay is the wait after the first failure.
	InitialDelay time.Duration

	// MaxDelay caps the wait regardless of how many attempts failed.
	MaxDelay time.Duration

	// Multiplier grows the wait between consecutive attempts.
	Multiplier float64

	// JitterFraction randomizes each wait by up to this fraction of
	// itself so synchronized callers spread out.
	JitterFraction float64
}

// DefaultConfig suits most transient failures.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// FeedFetchConfig retries harder. Feed hosts drop connections often and
// a missed poll costs a whole warmup cycle.
func FeedFetchConfig() Config {
	return Config{
		MaxAttempts:    5,
		InitialDelay:   time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// AIAPIConfig retries gently. Every attempt against a model API is
// billed, so the budget stays small.
func AIAPIConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   2 * time.Second,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// WithBackoff runs fn until it succeeds, fails permanently, or the
// attempt budget is spent. The context cancels the wait between
// attempts, not fn itself; callers pass the same context into fn.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				slog.Info("operation recovered",
					slog.Int("attempt", attempt))
			}
			return nil
		}

		if !IsRetryable(err) {
			slog.Warn("permanent failure, giving up",
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			return err
		}

		if attempt >= cfg.MaxAttempts {
			return fmt.Errorf("gave up after %d attempts: %w", cfg.MaxAttempts, err)
		}

		wait := backoff(cfg, attempt)
		slog.Warn("transient failure, backing off",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("wait", wait),
			slog.Any("error", err))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}
	}
}

// backoff computes the wait after the given 1-based failed attempt. The
// first wait equals InitialDelay.
func backoff(cfg Config, attempt int) time.Duration {
	d := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if capped := float64(cfg.MaxDelay); d > capped {
		d = capped
	}
	if f := cfg.JitterFraction; f > 0 {
		if f > 1 {
			f = 1
		}
		// #nosec G404 -- jitter needs no cryptographic randomness.
		d += rand.Float64() * d * f
	}
	return time.Duration(d)
}

// IsRetryable reports whether another attempt could plausibly succeed.
// Cancellation is final. Network timeouts and refused or reset
// connections are worth another try, and HTTP exchanges are judged by
// status code when the error carries one.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	for _, errno := range []error{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.ETIMEDOUT,
		syscall.ENETUNREACH,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	var st *StatusError
	if errors.As(err, &st) {
		switch {
		case st.Code >= 500 && st.Code < 600:
			return true
		case st.Code == http.StatusTooManyRequests:
			return true
		case st.Code == http.StatusRequestTimeout:
			return true
		}
	}

	return false
}

// StatusError marks a failed HTTP exchange with its status code so
// IsRetryable can tell a flaky host from a hopeless request.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Code, e.Detail)
}
