// Package main provides a CLI command for report synthesis from search
// result documents, using the same provider adapters as the API server.
// Usage: searchgate-report "question" --docs documents.json [--output json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"searchgate/internal/infra/report"
)

// maxDocs caps how many documents one synthesis may consume, matching the
// API server's limit.
const maxDocs = 20

// ReportOutput represents the JSON output format for synthesis results.
type ReportOutput struct {
	Question  string `json:"question"`
	Provider  string `json:"provider"`
	DocCount  int    `json:"doc_count"`
	Report    string `json:"report"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

func main() {
	var (
		docsPath     string
		provider     string
		outputFormat string
		timeout      time.Duration
	)

	flag.StringVar(&docsPath, "docs", "-", "Path to a JSON array of documents, or '-' for stdin")
	flag.StringVar(&provider, "provider", os.Getenv("REPORT_PROVIDER"), "Synthesis provider: claude, openai or noop")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.DurationVar(&timeout, "timeout", 90*time.Second, "Synthesis timeout")
	flag.Parse()

	// Get question from positional argument
	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: Question is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: searchgate-report \"question\" --docs documents.json [--output json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Documents are a JSON array of {title, url, content} objects.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  searchgate-report \"What changed in Go 1.23?\" --docs results.json")
		fmt.Fprintln(os.Stderr, "  searchgate-query \"go 1.23\" --output json | jq '.payload.results' | searchgate-report \"What changed?\"")
		os.Exit(1)
	}
	question := args[0]

	logger := initLogger()

	docs, err := loadDocuments(docsPath)
	if err != nil {
		logger.Error("failed to load documents", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Failed to load documents: %v\n", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: At least one document is required")
		os.Exit(1)
	}
	if len(docs) > maxDocs {
		fmt.Fprintf(os.Stderr, "Warning: %d documents exceed maximum %d, using the first %d\n", len(docs), maxDocs, maxDocs)
		docs = docs[:maxDocs]
	}

	synthesizer, providerName, err := newSynthesizer(provider)
	if err != nil {
		logger.Error("failed to create synthesizer", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("synthesizing report",
		slog.String("provider", providerName),
		slog.Int("docs", len(docs)))

	startTime := time.Now()
	result, err := synthesizer.Synthesize(ctx, question, docs)
	if err != nil {
		logger.Error("synthesis failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Synthesis failed: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(startTime)

	if outputFormat == "json" {
		outputJSON(question, providerName, len(docs), result, elapsed)
	} else {
		outputText(question, providerName, result, elapsed)
	}
}

// newSynthesizer selects the provider adapter. An empty provider means noop,
// which echoes the documents back without calling any API.
func newSynthesizer(provider string) (report.Synthesizer, string, error) {
	switch provider {
	case "claude":
		apiKey := os.Getenv("CLAUDE_API_KEY")
		if apiKey == "" {
			return nil, "", fmt.Errorf("CLAUDE_API_KEY environment variable is required for the claude provider")
		}
		return report.NewClaude(apiKey), "claude", nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, "", fmt.Errorf("OPENAI_API_KEY environment variable is required for the openai provider")
		}
		config, err := report.LoadOpenAIConfig()
		if err != nil {
			return nil, "", fmt.Errorf("invalid OpenAI configuration: %w", err)
		}
		return report.NewOpenAI(apiKey, config), "openai", nil
	case "", "noop":
		return report.NewNoOp(), "noop", nil
	default:
		return nil, "", fmt.Errorf("unknown provider %q (want claude, openai or noop)", provider)
	}
}

// loadDocuments reads a JSON array of documents from the path, or from
// stdin when the path is "-".
func loadDocuments(path string) ([]report.Document, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path) // #nosec G304 - operator-supplied path on a CLI
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var docs []report.Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("documents must be a JSON array of {title, url, content}: %w", err)
	}
	return docs, nil
}

// outputText prints the report in human-readable format.
func outputText(question, provider, result string, elapsed time.Duration) {
	fmt.Printf("Question: %s\n", question)
	fmt.Printf("Provider: %s (%.1fs)\n\n", provider, elapsed.Seconds())
	fmt.Println(result)
}

// outputJSON prints the result in JSON format.
func outputJSON(question, provider string, docCount int, result string, elapsed time.Duration) {
	output := ReportOutput{
		Question:  question,
		Provider:  provider,
		DocCount:  docCount,
		Report:    result,
		ElapsedMS: elapsed.Milliseconds(),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}

// initLogger initializes and returns a structured logger.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}
