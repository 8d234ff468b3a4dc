package logging

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"searchgate/internal/handler/http/requestid"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "input %q", tt.in)
	}
}

func TestNewLogger_LevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	logger := NewLogger()

	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

func TestNewLogger_DefaultsToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	logger := NewLogger()

	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestWithRequestID_AddsField(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := requestid.WithRequestID(context.Background(), "req-search-42")
	WithRequestID(ctx, logger).Info("cache warmed")

	assert.Contains(t, buf.String(), "request_id=req-search-42")
	assert.Contains(t, buf.String(), "cache warmed")
}

func TestWithRequestID_NoIDPassesLoggerThrough(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	got := WithRequestID(context.Background(), logger)
	assert.Same(t, logger, got)

	got.Info("sweep finished")
	assert.NotContains(t, buf.String(), "request_id")
}
