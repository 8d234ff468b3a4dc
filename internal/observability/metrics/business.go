package metrics

import (
	"time"
)

// Search outcomes recorded by RecordSearch.
const (
	OutcomeHit      = "hit"
	OutcomeMiss     = "miss"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// RecordSearch records one search request with its outcome and total
// handling time. Outcome should be one of the Outcome* constants.
func RecordSearch(outcome string, duration time.Duration) {
	SearchesTotal.WithLabelValues(outcome).Inc()
	SearchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordRefresh records the result of a background refresh of a stale
// cache entry. Status should be either "success" or "failure".
func RecordRefresh(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	SearchRefreshesTotal.WithLabelValues(status).Inc()
}

// RecordUpstreamRequest records the result of a call to the external
// search provider.
//
// Parameters:
//   - success: Whether the call produced a usable payload
//   - duration: Time taken by the call, including the response body read
//
// Example:
//
//	start := time.Now()
//	payload, err := client.Search(ctx, query, filters)
//	metrics.RecordUpstreamRequest(err == nil, time.Since(start))
func RecordUpstreamRequest(success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	UpstreamRequestsTotal.WithLabelValues(result).Inc()
	UpstreamRequestDuration.Observe(duration.Seconds())
}

// UpdateBreakerState updates the state gauge for the named breaker.
// Unknown state strings are ignored so a library upgrade cannot skew
// the gauge.
func UpdateBreakerState(name, state string) {
	v, ok := breakerStateValue(state)
	if !ok {
		return
	}
	BreakerState.WithLabelValues(name).Set(v)
}

// RecordBreakerTransition records one state transition of the named
// breaker and keeps the state gauge in sync. It is shaped to be called
// from the breaker's state change hook.
func RecordBreakerTransition(name, to string) {
	BreakerTransitionsTotal.WithLabelValues(name, to).Inc()
	UpdateBreakerState(name, to)
}

func breakerStateValue(state string) (float64, bool) {
	switch state {
	case "closed":
		return 0, true
	case "half-open":
		return 1, true
	case "open":
		return 2, true
	default:
		return 0, false
	}
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "cache_get", "cache_set").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBPoolStats updates the connection pool gauges. This should be
// called periodically, e.g. from the health check path.
func UpdateDBPoolStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
