package ratelimit

import "time"

// NoopMetrics is a Metrics implementation that discards all observations.
// It is the default when no metrics collector is configured, and keeps the
// hot path free of nil checks.
type NoopMetrics struct{}

// RecordAllowed does nothing.
func (m *NoopMetrics) RecordAllowed(limiterType string) {}

// RecordDenied does nothing.
func (m *NoopMetrics) RecordDenied(limiterType string) {}

// RecordCheckDuration does nothing.
func (m *NoopMetrics) RecordCheckDuration(limiterType string, duration time.Duration) {}

// SetActiveScopes does nothing.
func (m *NoopMetrics) SetActiveScopes(limiterType string, count int) {}
