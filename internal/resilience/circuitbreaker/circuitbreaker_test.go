package circuitbreaker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func TestNew(t *testing.T) {
	cfg := Config{
		Name:             "test-circuit",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		ResetTimeout:     20 * time.Second,
		CallTimeout:      5 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      5,
	}

	cb := New(cfg)

	if cb == nil {
		t.Fatal("expected circuit breaker, got nil")
	}
	if cb.Name() != "test-circuit" {
		t.Errorf("expected name='test-circuit', got %q", cb.Name())
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected initial state=Closed, got %v", cb.State())
	}
}

func TestCircuitBreaker_Execute_Success(t *testing.T) {
	cb := New(DefaultConfig("test-circuit"))

	result, err := cb.Execute(context.Background(), func(ctx context.Context) (any, error) {
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected result='success', got %v", result)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected state=Closed after success, got %v", cb.State())
	}
}

func TestCircuitBreaker_Execute_Failure(t *testing.T) {
	cb := New(DefaultConfig("test-circuit"))

	testErr := errors.New("test error")
	result, err := cb.Execute(context.Background(), func(ctx context.Context) (any, error) {
		return nil, testErr
	})

	if !errors.Is(err, testErr) {
		t.Errorf("expected error=%v, got %v", testErr, err)
	}
	if result != nil {
		t.Errorf("expected nil result, got %v", result)
	}
}

func TestCircuitBreaker_TripsOpen(t *testing.T) {
	cfg := Config{
		Name:             "test-circuit",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		ResetTimeout:     1 * time.Second,
		CallTimeout:      time.Second,
		FailureThreshold: 0.6, // 60% failure rate
		MinRequests:      5,   // Minimum 5 requests
	}

	cb := New(cfg)

	if cb.State() != gobreaker.StateClosed {
		t.Fatalf("expected initial state=Closed, got %v", cb.State())
	}

	// 5 failures + 1 success keeps the ratio well above the threshold.
	testErr := errors.New("test error")
	calls := 0
	for i := 0; i < 5; i++ {
		_, err := cb.Execute(context.Background(), func(ctx context.Context) (any, error) {
			calls++
			return nil, testErr
		})
		if !errors.Is(err, testErr) {
			t.Errorf("request %d: expected test error, got %v", i, err)
		}
	}

	if cb.State() != gobreaker.StateOpen {
		t.Errorf("expected state=Open after exceeding failure threshold, got %v", cb.State())
	}
	if !cb.IsOpen() {
		t.Error("expected IsOpen()=true")
	}
	if calls != 5 {
		t.Errorf("expected 5 upstream calls, got %d", calls)
	}

	// Next request must fail fast without invoking the function.
	_, err := cb.Execute(context.Background(), func(ctx context.Context) (any, error) {
		t.Error("function should not be called when circuit is open")
		return nil, nil
	})

	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if calls != 5 {
		t.Errorf("expected upstream call count unchanged, got %d", calls)
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cfg := Config{
		Name:             "test-circuit",
		MaxRequests:      1, // exactly one trial call in half-open
		Interval:         10 * time.Second,
		ResetTimeout:     100 * time.Millisecond,
		CallTimeout:      time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}

	cb := New(cfg)

	testErr := errors.New("test error")
	for i := 0; i < 6; i++ {
		_, _ = cb.Execute(context.Background(), func(ctx context.Context) (any, error) {
			return nil, testErr
		})
	}

	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("circuit should be open, got %v", cb.State())
	}

	// Wait for the reset timeout to transition to half-open.
	time.Sleep(150 * time.Millisecond)

	// The trial call succeeds and closes the circuit.
	_, err := cb.Execute(context.Background(), func(ctx context.Context) (any, error) {
		return "success", nil
	})
	if err != nil {
		t.Errorf("expected success in half-open state, got %v", err)
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("circuit should be closed after successful trial, got %v", cb.State())
	}

	// Counters were cleared by the transition: a single failure must not
	// immediately re-open the circuit.
	_, _ = cb.Execute(context.Background(), func(ctx context.Context) (any, error) {
		return nil, testErr
	})
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("one failure after recovery should not re-open, got %v", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cfg := Config{
		Name:             "test-circuit",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		ResetTimeout:     100 * time.Millisecond,
		CallTimeout:      time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}

	cb := New(cfg)

	testErr := errors.New("test error")
	for i := 0; i < 6; i++ {
		_, _ = cb.Execute(context.Background(), func(ctx context.Context) (any, error) {
			return nil, testErr
		})
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("circuit should be open, got %v", cb.State())
	}

	time.Sleep(150 * time.Millisecond)

	// Failed trial call sends the circuit straight back to open.
	_, err := cb.Execute(context.Background(), func(ctx context.Context) (any, error) {
		return nil, testErr
	})
	if !errors.Is(err, testErr) {
		t.Errorf("expected test error from trial call, got %v", err)
	}
	if cb.State() != gobreaker.StateOpen {
		t.Errorf("circuit should re-open after failed trial, got %v", cb.State())
	}
}

func TestCircuitBreaker_CallTimeout(t *testing.T) {
	cfg := DefaultConfig("test-circuit")
	cfg.CallTimeout = 50 * time.Millisecond

	cb := New(cfg)

	started := make(chan struct{})
	result, err := cb.Execute(context.Background(), func(ctx context.Context) (any, error) {
		close(started)
		// Simulate an upstream that outlives the call deadline.
		time.Sleep(300 * time.Millisecond)
		return "late result", nil
	})

	<-started
	if !errors.Is(err, ErrCallTimeout) {
		t.Errorf("expected ErrCallTimeout, got %v", err)
	}
	if result != nil {
		t.Errorf("late result must be discarded, got %v", result)
	}
}

func TestCircuitBreaker_TimeoutCountsAsFailure(t *testing.T) {
	cfg := Config{
		Name:             "test-circuit",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		ResetTimeout:     time.Second,
		CallTimeout:      10 * time.Millisecond,
		FailureThreshold: 0.5,
		MinRequests:      3,
	}

	cb := New(cfg)

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(context.Background(), func(ctx context.Context) (any, error) {
			time.Sleep(100 * time.Millisecond)
			return nil, nil
		})
		if !errors.Is(err, ErrCallTimeout) {
			t.Fatalf("request %d: expected ErrCallTimeout, got %v", i, err)
		}
	}

	if cb.State() != gobreaker.StateOpen {
		t.Errorf("timeouts should trip the circuit, got state %v", cb.State())
	}
}

func TestCircuitBreaker_MinRequests(t *testing.T) {
	cfg := Config{
		Name:             "test-circuit",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		ResetTimeout:     1 * time.Second,
		CallTimeout:      time.Second,
		FailureThreshold: 0.5, // 50% failure rate
		MinRequests:      10,  // Need at least 10 requests
	}

	cb := New(cfg)

	testErr := errors.New("test error")
	for i := 0; i < 4; i++ {
		_, err := cb.Execute(context.Background(), func(ctx context.Context) (any, error) {
			return nil, testErr
		})
		if !errors.Is(err, testErr) {
			t.Errorf("request %d: expected test error, got %v", i, err)
		}
	}

	// Circuit should still be closed (not enough requests).
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected state=Closed (below MinRequests), got %v", cb.State())
	}
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	var transitions []string
	cfg := Config{
		Name:             "test-circuit",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		ResetTimeout:     time.Second,
		CallTimeout:      time.Second,
		FailureThreshold: 0.5,
		MinRequests:      2,
		OnStateChange: func(name, from, to string) {
			transitions = append(transitions, from+"->"+to)
		},
	}

	cb := New(cfg)

	testErr := errors.New("test error")
	for i := 0; i < 2; i++ {
		_, _ = cb.Execute(context.Background(), func(ctx context.Context) (any, error) {
			return nil, testErr
		})
	}

	if len(transitions) != 1 || transitions[0] != "closed->open" {
		t.Errorf("expected single closed->open transition, got %v", transitions)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("test")

	if cfg.Name != "test" {
		t.Errorf("expected Name='test', got %q", cfg.Name)
	}
	if cfg.MaxRequests != 1 {
		t.Errorf("expected MaxRequests=1, got %d", cfg.MaxRequests)
	}
	if cfg.ResetTimeout != 30*time.Second {
		t.Errorf("expected ResetTimeout=30s, got %v", cfg.ResetTimeout)
	}
	if cfg.CallTimeout != 10*time.Second {
		t.Errorf("expected CallTimeout=10s, got %v", cfg.CallTimeout)
	}
	if cfg.FailureThreshold != 0.5 {
		t.Errorf("expected FailureThreshold=0.5, got %f", cfg.FailureThreshold)
	}
	if cfg.MinRequests != 5 {
		t.Errorf("expected MinRequests=5, got %d", cfg.MinRequests)
	}
}

func TestSearchAPIConfig(t *testing.T) {
	cfg := SearchAPIConfig()

	if cfg.Name != "search-api" {
		t.Errorf("expected Name='search-api', got %q", cfg.Name)
	}
	if cfg.MaxRequests != 1 {
		t.Errorf("expected MaxRequests=1, got %d", cfg.MaxRequests)
	}
}

func TestCircuitBreaker_CallbackReplacesDefaultLog(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	fired := 0
	cb := New(Config{
		Name:             "test-circuit",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		ResetTimeout:     time.Second,
		CallTimeout:      time.Second,
		FailureThreshold: 0.5,
		MinRequests:      2,
		OnStateChange:    func(name, from, to string) { fired++ },
	})

	testErr := errors.New("test error")
	for i := 0; i < 2; i++ {
		_, _ = cb.Execute(context.Background(), func(ctx context.Context) (any, error) {
			return nil, testErr
		})
	}

	if fired != 1 {
		t.Errorf("expected callback to fire once, got %d", fired)
	}
	// Each transition produces exactly one report: the callback's. The
	// built-in warning only covers breakers without a callback.
	if strings.Contains(buf.String(), "circuit breaker state changed") {
		t.Errorf("default transition log emitted alongside callback: %s", buf.String())
	}
}
