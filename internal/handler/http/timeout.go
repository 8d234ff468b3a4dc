package http

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout returns middleware bounding the total time a handler may spend on
// one request. The deadline rides on the request context so downstream work
// (cache lookups, upstream calls) is cancelled with it. If the handler has
// not produced a response when the deadline fires, the client receives
// 504 Gateway Timeout and any late handler writes are discarded.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			gw := &deadlineWriter{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(gw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				gw.timeout()
			}
		})
	}
}

// deadlineWriter serializes the race between a finishing handler and the
// timeout response. Whichever side writes first wins; the loser's writes
// are dropped.
type deadlineWriter struct {
	http.ResponseWriter
	mu     sync.Mutex
	wrote  bool
	closed bool
}

func (w *deadlineWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.wrote {
		return
	}
	w.wrote = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *deadlineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, http.ErrHandlerTimeout
	}
	if !w.wrote {
		w.wrote = true
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(p)
}

// timeout emits the 504, unless the handler already responded.
func (w *deadlineWriter) timeout() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.wrote {
		return
	}
	w.wrote = true
	w.ResponseWriter.Header().Set("Content-Type", "application/json")
	w.ResponseWriter.WriteHeader(http.StatusGatewayTimeout)
	_, _ = w.ResponseWriter.Write([]byte(`{"error":"request timeout"}`))
}
