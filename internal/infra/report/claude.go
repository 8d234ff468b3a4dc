package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"searchgate/internal/resilience/circuitbreaker"
	"searchgate/internal/resilience/retry"
	"searchgate/internal/utils/text"
)

// ClaudeConfig holds configuration parameters for the Claude synthesizer.
// Configuration is loaded from environment variables with fallback to defaults.
type ClaudeConfig struct {
	// CharacterLimit is the maximum number of characters allowed in a report.
	// Loaded from REPORT_CHAR_LIMIT environment variable.
	// Valid range: 100-5000 characters. Default: 1500.
	CharacterLimit int

	// Model is the Claude API model identifier to use for synthesis.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout is the maximum duration for a single synthesis API call.
	Timeout time.Duration
}

// LoadClaudeConfig loads configuration from environment variables.
// It validates the character limit against the valid range (100-5000);
// invalid values fall back to the default (1500) with a warning log.
//
// Environment variables:
//   - REPORT_CHAR_LIMIT: Character limit (default: 1500, range: 100-5000)
func LoadClaudeConfig() ClaudeConfig {
	const defaultCharLimit = 1500

	charLimit := defaultCharLimit

	if envLimit := os.Getenv("REPORT_CHAR_LIMIT"); envLimit != "" {
		parsed, err := strconv.Atoi(envLimit)
		if err != nil {
			slog.Warn("Invalid REPORT_CHAR_LIMIT format, using default",
				slog.String("value", envLimit),
				slog.Int("default", defaultCharLimit),
				slog.String("error", err.Error()))
		} else if validErr := ValidateCharacterLimit(parsed); validErr != nil {
			slog.Warn("REPORT_CHAR_LIMIT out of valid range, using default",
				slog.Int("value", parsed),
				slog.Int("default", defaultCharLimit),
				slog.String("error", validErr.Error()))
		} else {
			charLimit = parsed
		}
	}

	return ClaudeConfig{
		CharacterLimit: charLimit,
		Model:          string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens:      2048,
		Timeout:        60 * time.Second,
	}
}

// Claude implements the Synthesizer interface using Anthropic's Claude API.
// It includes circuit breaker and retry logic for improved reliability.
type Claude struct {
	client          anthropic.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          ClaudeConfig
	metricsRecorder MetricsRecorder
}

// NewClaude creates a new Claude synthesizer with the given API key.
// It automatically configures circuit breaker, retry logic, and metrics
// recording.
func NewClaude(apiKey string) *Claude {
	config := LoadClaudeConfig()

	slog.Info("Initialized Claude synthesizer with configuration",
		slog.Int("character_limit", config.CharacterLimit),
		slog.String("model", config.Model))

	return &Claude{
		client:          anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.AIAPIConfig("claude-api")),
		retryConfig:     retry.AIAPIConfig(),
		config:          config,
		metricsRecorder: NewPrometheusMetrics(),
	}
}

// Synthesize generates a report from the documents using Claude.
// It uses circuit breaker and retry logic for improved reliability.
func (c *Claude) Synthesize(ctx context.Context, question string, docs []Document) (string, error) {
	if len(docs) == 0 {
		return "", fmt.Errorf("invalid input: at least one document required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(ctx, func(callCtx context.Context) (any, error) {
			return c.doSynthesize(callCtx, question, docs)
		})
		if err != nil {
			if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.StateString()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		c.metricsRecorder.RecordOutcome("claude", false)
		return "", fmt.Errorf("claude synthesis failed after retries: %w", retryErr)
	}

	c.metricsRecorder.RecordOutcome("claude", true)
	return result, nil
}

// doSynthesize performs the actual API call without retry or circuit breaker.
func (c *Claude) doSynthesize(ctx context.Context, question string, docs []Document) (string, error) {
	requestID := uuid.New().String()

	prompt := buildPrompt(question, truncateDocs(docs, maxInputChars), c.config.CharacterLimit)

	slog.InfoContext(ctx, "Starting report synthesis",
		slog.String("request_id", requestID),
		slog.Int("documents", len(docs)),
		slog.Int("character_limit", c.config.CharacterLimit))

	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Report synthesis failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		slog.ErrorContext(ctx, "Claude API returned empty response",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		slog.ErrorContext(ctx, "Claude API returned unexpected response type",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	reportText := textBlock.Text
	reportLength := text.CountRunes(reportText)
	withinLimit := reportLength <= c.config.CharacterLimit

	slog.InfoContext(ctx, "Report synthesis completed",
		slog.String("request_id", requestID),
		slog.Int("report_length", reportLength),
		slog.Int("character_limit", c.config.CharacterLimit),
		slog.Bool("within_limit", withinLimit),
		slog.Duration("duration", duration))

	if !withinLimit {
		slog.WarnContext(ctx, "Report exceeds character limit",
			slog.String("request_id", requestID),
			slog.Int("report_length", reportLength),
			slog.Int("limit", c.config.CharacterLimit))
		c.metricsRecorder.RecordLimitExceeded()
	}

	c.metricsRecorder.RecordLength(reportLength)
	c.metricsRecorder.RecordDuration(duration)

	return reportText, nil
}
