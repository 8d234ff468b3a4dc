// Package tools exposes the auxiliary endpoints of the gateway: page
// extraction, feed reading, and report synthesis.
package tools

import (
	"context"
	"errors"
	"net/http"

	"searchgate/internal/handler/http/respond"
	"searchgate/internal/infra/extract"
	"searchgate/internal/resilience/circuitbreaker"
)

// Extractor is the slice of the page extractor the handler needs.
type Extractor interface {
	Extract(ctx context.Context, url string) (*extract.Article, error)
}

// ExtractHandler serves GET /api/extract.
type ExtractHandler struct {
	Svc Extractor
}

// ServeHTTP extracts the article content of a page.
//
// Query parameters:
//   - url: Page URL (required, http/https, public addresses only)
func (h ExtractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pageURL := r.URL.Query().Get("url")
	if pageURL == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("url query param required"))
		return
	}

	article, err := h.Svc.Extract(r.Context(), pageURL)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrInvalidURL), errors.Is(err, extract.ErrPrivateIP):
			respond.SafeError(w, http.StatusBadRequest, err)
		case errors.Is(err, circuitbreaker.ErrCircuitOpen):
			w.Header().Set("Retry-After", "60")
			respond.Error(w, http.StatusServiceUnavailable,
				errors.New("extraction temporarily unavailable"))
		default:
			respond.Error(w, http.StatusBadGateway,
				errors.New("failed to extract page"))
		}
		return
	}

	respond.JSON(w, http.StatusOK, article)
}
