// Package search exposes the search endpoint of the gateway. It validates
// the incoming query, drives the fetch pipeline, and maps pipeline errors to
// HTTP status codes.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"searchgate/internal/handler/http/respond"
	"searchgate/internal/resilience/circuitbreaker"
	searchUC "searchgate/internal/usecase/search"
)

// maxQueryLength caps the query size; anything longer is noise or abuse.
const maxQueryLength = 512

// Service is the slice of the fetch coordinator the handler needs.
type Service interface {
	Fetch(ctx context.Context, query string, filters map[string]string) (*searchUC.Result, error)
}

// Handler serves GET /api/search.
type Handler struct {
	Svc Service
}

// ServeHTTP handles a search request.
//
// Query parameters:
//   - q: Query text (required)
//   - site, lang, region, recency, max_results: Optional filters
//
// Responses:
//   - 200: Upstream JSON payload, X-Cache header reports HIT or MISS
//   - 400: Missing or invalid query
//   - 502: Upstream failure
//   - 503: Circuit open, Retry-After advises when to come back
//   - 504: Upstream call timed out
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("q query param required"))
		return
	}
	if len(query) > maxQueryLength {
		respond.SafeError(w, http.StatusBadRequest,
			fmt.Errorf("invalid query: must be at most %d bytes", maxQueryLength))
		return
	}

	filters := map[string]string{}
	for _, name := range searchUC.RecognizedFilters() {
		if v := r.URL.Query().Get(name); v != "" {
			filters[name] = v
		}
	}
	if maxResults, ok := filters["max_results"]; ok {
		n, err := strconv.Atoi(maxResults)
		if err != nil || n <= 0 || n > 100 {
			respond.SafeError(w, http.StatusBadRequest,
				errors.New("invalid max_results: must be an integer between 1 and 100"))
			return
		}
	}

	result, err := h.Svc.Fetch(r.Context(), query, filters)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.CacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Payload)
}

// writeError maps pipeline errors onto HTTP status codes.
func (h Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, searchUC.ErrEmptyQuery):
		respond.SafeError(w, http.StatusBadRequest, err)

	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		// The message is crafted here, not propagated, so it can skip
		// sanitization.
		w.Header().Set("Retry-After", "30")
		respond.Error(w, http.StatusServiceUnavailable,
			errors.New("search temporarily unavailable"))

	case errors.Is(err, circuitbreaker.ErrCallTimeout):
		respond.Error(w, http.StatusGatewayTimeout,
			errors.New("search timed out"))

	case errors.Is(err, searchUC.ErrUpstream):
		respond.Error(w, http.StatusBadGateway,
			errors.New("search provider error"))

	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}
