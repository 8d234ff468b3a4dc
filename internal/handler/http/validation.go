package http

import (
	"errors"
	"net/http"

	"searchgate/internal/handler/http/respond"
)

// Request guardrails applied before routing. Search queries travel in the
// query string, so it gets its own bound next to the usual header and path
// limits.
const (
	maxAuthHeaderBytes = 8 << 10
	maxPathBytes       = 2 << 10
	maxQueryBytes      = 4 << 10
	maxBodyBytes       = 10 << 20
)

// InputValidation returns middleware that rejects oversized request inputs
// before they reach a handler. A runaway Authorization header answers 400,
// an overlong path or query string answers 414, and the body is capped with
// http.MaxBytesReader so no handler can be fed more than maxBodyBytes.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Header.Get("Authorization")) > maxAuthHeaderBytes {
				respond.Error(w, http.StatusBadRequest, errors.New("authorization header too large"))
				return
			}
			if len(r.URL.Path) > maxPathBytes {
				respond.Error(w, http.StatusRequestURITooLong, errors.New("URI too long"))
				return
			}
			if len(r.URL.RawQuery) > maxQueryBytes {
				respond.Error(w, http.StatusRequestURITooLong, errors.New("query string too long"))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	}
}
