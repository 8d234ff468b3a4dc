package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validatedHandler(t *testing.T, reached *bool) http.Handler {
	t.Helper()
	return InputValidation()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reached != nil {
			*reached = true
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestInputValidation_SearchRequestPasses(t *testing.T) {
	reached := false
	h := validatedHandler(t, &reached)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=golang+generics&lang=en", nil)
	req.Header.Set("Authorization", "Bearer token123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInputValidation_AuthorizationHeaderBounds(t *testing.T) {
	tests := []struct {
		name       string
		headerSize int
		wantCode   int
	}{
		{"typical JWT passes", 300, http.StatusOK},
		{"exactly at limit passes", maxAuthHeaderBytes, http.StatusOK},
		{"one over limit rejected", maxAuthHeaderBytes + 1, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validatedHandler(t, nil)
			req := httptest.NewRequest(http.MethodGet, "/api/search?q=golang", nil)
			req.Header.Set("Authorization", strings.Repeat("a", tt.headerSize))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				assert.Contains(t, rec.Body.String(), "authorization header too large")
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestInputValidation_PathTooLong(t *testing.T) {
	h := validatedHandler(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/"+strings.Repeat("s", maxPathBytes), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestURITooLong, rec.Code)
	assert.Contains(t, rec.Body.String(), "URI too long")
}

func TestInputValidation_QueryStringTooLong(t *testing.T) {
	h := validatedHandler(t, nil)
	// A pathological search query longer than any legitimate one.
	req := httptest.NewRequest(http.MethodGet,
		"/api/search?q="+strings.Repeat("x", maxQueryBytes+1), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestURITooLong, rec.Code)
	assert.Contains(t, rec.Body.String(), "query string too long")
}

func TestInputValidation_BodyCapped(t *testing.T) {
	h := InputValidation()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.Copy(io.Discard, r.Body)
		assert.Error(t, err, "reading past the cap must fail")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/report",
		strings.NewReader(strings.Repeat("b", maxBodyBytes+1)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
}

func TestInputValidation_NormalBodyReadable(t *testing.T) {
	var got string
	h := InputValidation()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		got = string(body)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/report",
		strings.NewReader(`{"question":"latest Go release?"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"question":"latest Go release?"}`, got)
}
