// Package respond writes JSON responses. Error payloads pass through a
// sanitizer so upstream credentials and internal details never reach a
// client.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status code. A nil v sends headers only.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; all that is left is the log line.
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// Error writes the error message verbatim. Use SafeError for anything
// that might carry internals.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, errorBody{Error: err.Error()})
}

// SafeError decides whether the caller may see the real message.
// Validation-shaped errors on 4xx responses pass through; everything
// else, and every 5xx, collapses to "internal server error" with the
// sanitized detail kept in the log.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	if code < 500 && safeToEcho(err.Error()) {
		JSON(w, code, errorBody{Error: err.Error()})
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.Any("error", SanitizeError(err)))
	JSON(w, code, errorBody{Error: "internal server error"})
}

// echoMarkers are phrases that identify a message as something the
// caller caused and can act on, like a validation failure.
var echoMarkers = []string{
	"required",
	"invalid",
	"not found",
	"already exists",
	"must be",
	"cannot be",
	"too long",
	"too short",
}

func safeToEcho(msg string) bool {
	msg = strings.ToLower(msg)
	for _, marker := range echoMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
