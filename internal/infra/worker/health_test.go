package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthServer_Liveness(t *testing.T) {
	server := NewHealthServer(":0", testLogger())

	rec := httptest.NewRecorder()
	server.routes().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHealthServer_ReadinessTransitions(t *testing.T) {
	server := NewHealthServer(":0", testLogger())
	probe := func() int {
		rec := httptest.NewRecorder()
		server.routes().ServeHTTP(rec, httptest.NewRequest("GET", "/health/ready", nil))
		return rec.Code
	}

	assert.Equal(t, http.StatusServiceUnavailable, probe(), "not ready at startup")

	server.SetReady(true)
	assert.Equal(t, http.StatusOK, probe(), "ready once the scheduler runs")

	server.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, probe(), "shutdown flips it back")
}

func TestHealthServer_StartAndShutdown(t *testing.T) {
	server := NewHealthServer("127.0.0.1:0", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Start(ctx)
	}()

	// Give the listener a moment, then trigger graceful shutdown.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}
