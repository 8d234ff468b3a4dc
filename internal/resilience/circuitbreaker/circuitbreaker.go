// Package circuitbreaker guards calls to the upstream search API.
// It uses the github.com/sony/gobreaker library to prevent cascading failures.
package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Common errors returned by Execute.
var (
	// ErrCircuitOpen indicates the circuit is open and the upstream was not
	// contacted. It is distinct from upstream-reported errors so callers and
	// logs can tell infrastructure protection apart from genuine failures.
	ErrCircuitOpen = errors.New("circuit open: upstream temporarily disabled")

	// ErrCallTimeout indicates the upstream did not respond within the
	// configured per-call timeout. The call is counted as a failure even if
	// it eventually completes; its late result is discarded.
	ErrCallTimeout = errors.New("upstream call timed out")
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name is the circuit breaker name for logging and metrics
	Name string

	// MaxRequests is the maximum number of trial requests allowed in half-open state
	MaxRequests uint32

	// Interval is the cyclic period of the closed state to clear success/failure counts
	Interval time.Duration

	// ResetTimeout is how long to wait in open state before moving to half-open
	ResetTimeout time.Duration

	// CallTimeout is the per-call deadline; calls exceeding it count as failures
	CallTimeout time.Duration

	// FailureThreshold is the failure ratio threshold to trip the circuit
	// For example, 0.5 means 50% failure rate
	FailureThreshold float64

	// MinRequests is the minimum number of requests before calculating failure ratio
	MinRequests uint32

	// OnStateChange, when set, is invoked on every state transition in
	// addition to the built-in warning log. Used to drive metrics gauges.
	OnStateChange func(name, from, to string)
}

// DefaultConfig returns a default configuration for circuit breakers.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		ResetTimeout:     30 * time.Second,
		CallTimeout:      10 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      5,
	}
}

// SearchAPIConfig returns configuration optimized for the external search API.
// The upstream is quota constrained, so the breaker trips early and recovers
// with a single trial call.
func SearchAPIConfig() Config {
	return Config{
		Name:             "search-api",
		MaxRequests:      1,
		Interval:         60 * time.Second,
		ResetTimeout:     30 * time.Second,
		CallTimeout:      10 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      5,
	}
}

// AIAPIConfig returns configuration for AI report synthesis providers.
// Calls are slow and billed, so the per-call timeout is generous and the
// breaker needs fewer samples to trip.
func AIAPIConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		ResetTimeout:     60 * time.Second,
		CallTimeout:      60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// CircuitBreaker wraps gobreaker.CircuitBreaker with a per-call timeout.
type CircuitBreaker struct {
	breaker     *gobreaker.CircuitBreaker
	callTimeout time.Duration
	name        string
}

// New creates a new circuit breaker with the given configuration.
// Instances are explicitly constructed and injected; create one per
// protected resource, never share a package-level singleton.
func New(cfg Config) *CircuitBreaker {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 10 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			// An installed callback owns transition handling, including
			// logging; the built-in warning is only the default.
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, from.String(), to.String())
				return
			}
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &CircuitBreaker{
		breaker:     gobreaker.NewCircuitBreaker(settings),
		callTimeout: cfg.CallTimeout,
		name:        cfg.Name,
	}
}

// Execute runs the given function through the circuit breaker, bounded by the
// configured per-call timeout.
//
// If the circuit is open (or half-open and saturated), it returns
// ErrCircuitOpen immediately without invoking fn. If fn does not return
// before the timeout, the call is recorded as a failure and ErrCallTimeout is
// returned; the in-flight fn keeps running on its own goroutine and its
// eventual result is delivered to a buffered channel nobody reads, so an
// out-of-order result can never reach the caller after the timeout fired.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	result, err := cb.breaker.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, cb.callTimeout)
		defer cancel()

		type outcome struct {
			value any
			err   error
		}
		// Buffered so the worker goroutine can always complete its send,
		// even when the timeout already won the select below.
		done := make(chan outcome, 1)
		go func() {
			v, fnErr := fn(callCtx)
			done <- outcome{value: v, err: fnErr}
		}()

		select {
		case out := <-done:
			return out.value, out.err
		case <-callCtx.Done():
			return nil, fmt.Errorf("%w after %s", ErrCallTimeout, cb.callTimeout)
		}
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	return result, nil
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// StateString returns the current state as a lowercase label
// ("closed", "half-open", "open") suitable for health payloads and logs.
func (cb *CircuitBreaker) StateString() string {
	return cb.breaker.State().String()
}

// Name returns the name of the circuit breaker.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen returns true if the circuit breaker is in the open state.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
