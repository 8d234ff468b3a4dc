package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_GeneratesIDWhenAbsent(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=golang", nil))

	require.NotEmpty(t, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err, "generated ID must be a UUID")
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader),
		"response header must echo the ID the handler saw")
}

func TestMiddleware_PropagatesClientID(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=golang", nil)
	req.Header.Set(RequestIDHeader, "client-7f3a")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "client-7f3a", seen)
	assert.Equal(t, "client-7f3a", rec.Header().Get(RequestIDHeader))
}

func TestMiddleware_ReplacesUnusableClientID(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"oversized", strings.Repeat("x", maxIDBytes+1)},
		{"newline smuggled in", "abc\ndef"},
		{"control character", "abc\x00def"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/search?q=golang", nil)
			req.Header.Set(RequestIDHeader, tt.id)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.NotEqual(t, tt.id, seen)
			_, err := uuid.Parse(seen)
			assert.NoError(t, err, "unusable client IDs are replaced with a UUID")
		})
	}
}

func TestMiddleware_DistinctRequestsGetDistinctIDs(t *testing.T) {
	ids := make(map[string]struct{})
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids[FromContext(r.Context())] = struct{}{}
	}))

	for i := 0; i < 10; i++ {
		h.ServeHTTP(httptest.NewRecorder(),
			httptest.NewRequest(http.MethodGet, "/api/search?q=golang", nil))
	}
	assert.Len(t, ids, 10)
}

func TestFromContext_EmptyWithoutMiddleware(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
}

func TestWithRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-cache-sweep")
	assert.Equal(t, "req-cache-sweep", FromContext(ctx))
}
