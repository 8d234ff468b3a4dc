// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Search pipeline metrics (outcomes, durations, refreshes)
//   - Upstream provider metrics (call results, latency)
//   - Circuit breaker state metrics
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "searchgate/internal/observability/metrics"
//
//	func handleSearch() {
//	    start := time.Now()
//	    // ... serve the search ...
//
//	    metrics.RecordSearch(metrics.OutcomeMiss, time.Since(start))
//	}
package metrics
