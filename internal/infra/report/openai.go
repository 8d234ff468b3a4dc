package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"searchgate/internal/resilience/circuitbreaker"
	"searchgate/internal/resilience/retry"
	"searchgate/internal/utils/text"
)

// OpenAIConfig holds configuration parameters for the OpenAI synthesizer.
// Configuration is loaded from environment variables with fallback to defaults.
type OpenAIConfig struct {
	// CharacterLimit is the maximum number of characters allowed in a report.
	// Loaded from REPORT_CHAR_LIMIT environment variable.
	// Valid range: 100-5000 characters. Default: 1500.
	CharacterLimit int

	// Model is the OpenAI API model identifier to use for synthesis.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout is the maximum duration for a single synthesis API call.
	Timeout time.Duration
}

// Validate validates the configuration and returns an error if invalid.
func (c *OpenAIConfig) Validate() error {
	if err := ValidateCharacterLimit(c.CharacterLimit); err != nil {
		return fmt.Errorf("invalid character limit: %w", err)
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// LoadOpenAIConfig loads configuration from environment variables.
// Unlike the Claude loader this is fail-closed: an invalid REPORT_CHAR_LIMIT
// is an error rather than a silent default.
//
// Environment variables:
//   - REPORT_CHAR_LIMIT: Character limit (default: 1500, range: 100-5000)
func LoadOpenAIConfig() (*OpenAIConfig, error) {
	const defaultCharLimit = 1500

	charLimit := defaultCharLimit

	if envLimit := os.Getenv("REPORT_CHAR_LIMIT"); envLimit != "" {
		parsed, err := strconv.Atoi(envLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid REPORT_CHAR_LIMIT format: %s: %w", envLimit, err)
		}
		if err := ValidateCharacterLimit(parsed); err != nil {
			return nil, fmt.Errorf("REPORT_CHAR_LIMIT out of valid range: %w", err)
		}
		charLimit = parsed
	}

	config := &OpenAIConfig{
		CharacterLimit: charLimit,
		Model:          openai.GPT4oMini,
		MaxTokens:      2048,
		Timeout:        60 * time.Second,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid OpenAI configuration: %w", err)
	}

	return config, nil
}

// OpenAI implements the Synthesizer interface using OpenAI's chat API.
// It includes circuit breaker and retry logic for improved reliability.
type OpenAI struct {
	client          *openai.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          *OpenAIConfig
	metricsRecorder MetricsRecorder
}

// NewOpenAI creates a new OpenAI synthesizer with the given API key and
// configuration.
func NewOpenAI(apiKey string, config *OpenAIConfig) *OpenAI {
	slog.Info("Initialized OpenAI synthesizer with configuration",
		slog.Int("character_limit", config.CharacterLimit),
		slog.String("model", config.Model))

	return &OpenAI{
		client:          openai.NewClient(apiKey),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.AIAPIConfig("openai-api")),
		retryConfig:     retry.AIAPIConfig(),
		config:          config,
		metricsRecorder: NewPrometheusMetrics(),
	}
}

// Synthesize generates a report from the documents using OpenAI.
func (o *OpenAI) Synthesize(ctx context.Context, question string, docs []Document) (string, error) {
	if len(docs) == 0 {
		return "", fmt.Errorf("invalid input: at least one document required")
	}

	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(ctx, func(callCtx context.Context) (any, error) {
			return o.doSynthesize(callCtx, question, docs)
		})
		if err != nil {
			if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.StateString()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		o.metricsRecorder.RecordOutcome("openai", false)
		return "", fmt.Errorf("openai synthesis failed after retries: %w", retryErr)
	}

	o.metricsRecorder.RecordOutcome("openai", true)
	return result, nil
}

// doSynthesize performs the actual API call without retry or circuit breaker.
func (o *OpenAI) doSynthesize(ctx context.Context, question string, docs []Document) (string, error) {
	requestID := uuid.New().String()

	prompt := buildPrompt(question, truncateDocs(docs, maxInputChars), o.config.CharacterLimit)

	slog.InfoContext(ctx, "Starting report synthesis",
		slog.String("request_id", requestID),
		slog.Int("documents", len(docs)),
		slog.Int("character_limit", o.config.CharacterLimit))

	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Report synthesis failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		slog.ErrorContext(ctx, "OpenAI API returned empty response",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fmt.Errorf("openai api returned empty response")
	}

	reportText := resp.Choices[0].Message.Content
	reportLength := text.CountRunes(reportText)
	withinLimit := reportLength <= o.config.CharacterLimit

	slog.InfoContext(ctx, "Report synthesis completed",
		slog.String("request_id", requestID),
		slog.Int("report_length", reportLength),
		slog.Int("character_limit", o.config.CharacterLimit),
		slog.Bool("within_limit", withinLimit),
		slog.Duration("duration", duration))

	if !withinLimit {
		slog.WarnContext(ctx, "Report exceeds character limit",
			slog.String("request_id", requestID),
			slog.Int("report_length", reportLength),
			slog.Int("limit", o.config.CharacterLimit))
		o.metricsRecorder.RecordLimitExceeded()
	}

	o.metricsRecorder.RecordLength(reportLength)
	o.metricsRecorder.RecordDuration(duration)

	return reportText, nil
}
