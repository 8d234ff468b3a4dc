// Package observability collects the instrumentation for the fetch
// pipeline. Its subpackages are wired into the HTTP middleware chain
// and the cache and upstream layers:
//
//   - logging: the process-wide slog logger
//   - metrics: Prometheus collectors for searches, cache tiers and the
//     upstream circuit
//   - tracing: OpenTelemetry spans with W3C context propagation
//   - slo: gauges comparing measured reliability against targets
package observability
