// Package http provides HTTP handlers and middleware for the search gateway.
// It includes the search and tool endpoints, health check endpoints, metrics
// collection, rate limiting, and various middleware components.
package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"searchgate/internal/cache"
	"searchgate/pkg/ratelimit"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy", "degraded" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`    // Status of each check item
	Version   string                 `json:"version"`   // Application version
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string                 `json:"status"`            // "healthy", "degraded" or "unhealthy"
	Message string                 `json:"message,omitempty"` // Optional status message
	Details map[string]interface{} `json:"details,omitempty"` // Optional additional details
}

// BreakerInfo is the slice of the circuit breaker the health check reports.
type BreakerInfo interface {
	Name() string
	StateString() string
	IsOpen() bool
}

// HealthHandler handles health check endpoint requests.
// It reports primary cache connectivity, the cache serving mode, the upstream
// circuit breaker state, and rate limiter occupancy.
//
// A degraded cache or an open breaker is reported but does not fail the
// check: the service still answers requests in those modes, just with
// reduced guarantees.
type HealthHandler struct {
	DB      *sql.DB
	Cache   *cache.Tiered
	Breaker BreakerInfo
	Limiter *ratelimit.Limiter
	Version string
}

// ServeHTTP performs health checks and returns the service health status.
// Returns 200 OK when healthy or degraded, 503 Service Unavailable when the
// service cannot answer requests at all.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	degraded := false

	if h.DB != nil {
		dbCheck := h.checkDatabase(ctx)
		checks["database"] = dbCheck
		if dbCheck.Status != "healthy" {
			degraded = true
		}
	} else {
		checks["database"] = CheckStatus{Status: "degraded", Message: "not configured"}
		degraded = true
	}

	if h.Cache != nil {
		cacheCheck := h.checkCache()
		checks["cache"] = cacheCheck
		if cacheCheck.Status != "healthy" {
			degraded = true
		}
	}

	if h.Breaker != nil {
		breakerCheck := h.checkBreaker()
		checks["circuit_breaker"] = breakerCheck
		if breakerCheck.Status != "healthy" {
			degraded = true
		}
	}

	if h.Limiter != nil {
		checks["rate_limiter"] = CheckStatus{
			Status: "healthy",
			Details: map[string]interface{}{
				"active_scopes": h.Limiter.ScopeCount(),
			},
		}
	}

	status := "healthy"
	if degraded {
		status = "degraded"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("health: failed to encode response: %v", err)
	}
}

// checkDatabase checks primary cache store connectivity and returns
// connection pool statistics.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{
			Status:  "degraded",
			Message: err.Error(),
		}
	}

	stats := h.DB.Stats()
	details := map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	// Guard against zero division when MaxOpenConnections is 0 (unlimited/unconfigured)
	if stats.MaxOpenConnections > 0 {
		utilizationPercent := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
		details["utilization_percent"] = utilizationPercent

		if utilizationPercent >= 80.0 {
			return CheckStatus{
				Status:  "degraded",
				Message: "connection pool utilization above 80%",
				Details: details,
			}
		}
	}

	return CheckStatus{
		Status:  "healthy",
		Details: details,
	}
}

// checkCache reports which tier the cache is currently serving from.
func (h *HealthHandler) checkCache() CheckStatus {
	if h.Cache.Health() == cache.HealthDegraded {
		return CheckStatus{
			Status:  "degraded",
			Message: "serving from in-process fallback, restart required to reattach primary",
			Details: map[string]interface{}{"mode": "fallback"},
		}
	}
	return CheckStatus{
		Status:  "healthy",
		Details: map[string]interface{}{"mode": "primary"},
	}
}

// checkBreaker reports the upstream circuit breaker state. An open breaker
// means requests are being fast-failed while the upstream recovers.
func (h *HealthHandler) checkBreaker() CheckStatus {
	status := "healthy"
	message := ""
	if h.Breaker.IsOpen() {
		status = "degraded"
		message = "upstream calls are fast-failing"
	}
	return CheckStatus{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"name":  h.Breaker.Name(),
			"state": h.Breaker.StateString(),
		},
	}
}

// ReadyHandler handles Kubernetes readiness probe requests.
// The service stays ready while degraded (fallback cache, open breaker);
// only a missing cache layer makes it unready.
type ReadyHandler struct {
	Cache *cache.Tiered
}

// ServeHTTP performs readiness checks and returns 200 OK if ready,
// or 503 Service Unavailable when the service cannot serve traffic.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Cache == nil {
		http.Error(w, "cache not configured", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ready")); err != nil {
		log.Printf("ready: failed to write response: %v", err)
	}
}

// LiveHandler handles Kubernetes liveness probe requests.
// It performs a lightweight check to verify the application is responsive.
type LiveHandler struct{}

// ServeHTTP performs a simple liveness check and always returns 200 OK
// if the application is running and able to respond.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		log.Printf("alive: failed to write response: %v", err)
	}
}
