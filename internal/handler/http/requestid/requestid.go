// Package requestid tags every request with an ID so a single search can be
// followed through the middleware chain, the fetch pipeline, and the logs.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the ID between client and server.
const RequestIDHeader = "X-Request-ID"

// maxIDBytes bounds client-supplied IDs. Anything longer is replaced
// rather than truncated so log fields stay trustworthy.
const maxIDBytes = 128

type contextKey struct{}

// FromContext returns the request ID stored in ctx, or "" when the
// request never passed through Middleware.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// WithRequestID returns a context carrying the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Middleware accepts a client-supplied X-Request-ID when it is sane,
// mints a UUID otherwise, and echoes the chosen ID on the response so
// callers can quote it when reporting a failed search.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !acceptable(id) {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// acceptable reports whether a client-supplied ID may be propagated.
// Control characters would corrupt log lines, so they disqualify the ID.
func acceptable(id string) bool {
	if id == "" || len(id) > maxIDBytes {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x20 || id[i] == 0x7f {
			return false
		}
	}
	return true
}
