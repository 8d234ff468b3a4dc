// Package main provides a CLI command for querying the upstream search API
// directly, bypassing the cache. Useful for inspecting raw provider output
// and debugging warmup configurations.
// Usage: searchgate-query "query" [--filter key=value] [--output json]
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"searchgate/internal/infra/upstream"
)

// QueryOutput represents the JSON output format for query results.
type QueryOutput struct {
	Query        string            `json:"query"`
	Filters      map[string]string `json:"filters,omitempty"`
	PayloadBytes int               `json:"payload_bytes"`
	Payload      json.RawMessage   `json:"payload"`
}

// filterFlags collects repeated --filter key=value arguments.
type filterFlags map[string]string

func (f filterFlags) String() string {
	pairs := make([]string, 0, len(f))
	for k, v := range f {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (f filterFlags) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || key == "" {
		return fmt.Errorf("filter must be key=value, got %q", value)
	}
	f[key] = val
	return nil
}

func main() {
	var (
		filters      = filterFlags{}
		outputFormat string
		timeout      time.Duration
	)

	flag.Var(&filters, "filter", "Filter as key=value (repeatable)")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	flag.Parse()

	// Get query from positional argument
	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: Search query is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: searchgate-query \"query\" [--filter key=value] [--output json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  searchgate-query \"Go concurrency patterns\"")
		fmt.Fprintln(os.Stderr, "  searchgate-query \"kubernetes\" --filter lang=en --filter region=us")
		fmt.Fprintln(os.Stderr, "  searchgate-query \"database\" --output json")
		os.Exit(1)
	}
	query := args[0]

	logger := initLogger()

	// Load upstream client configuration
	upstreamConfig, err := upstream.LoadConfig()
	if err != nil {
		logger.Error("failed to load upstream configuration", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Failed to load upstream configuration: %v\n", err)
		os.Exit(1)
	}

	client := upstream.NewClient(upstreamConfig)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("querying upstream",
		slog.String("query", query),
		slog.Int("filters", len(filters)))

	payload, err := client.Search(ctx, query, filters)
	if err != nil {
		logger.Error("query failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Query failed: %v\n", err)
		os.Exit(1)
	}

	if outputFormat == "json" {
		outputJSON(query, filters, payload)
	} else {
		outputText(query, filters, payload)
	}
}

// outputText prints the payload in human-readable format.
func outputText(query string, filters map[string]string, payload json.RawMessage) {
	fmt.Printf("Query: %q\n", query)
	if len(filters) > 0 {
		fmt.Printf("Filters: %s\n", filterFlags(filters).String())
	}
	fmt.Printf("Payload: %d bytes\n\n", len(payload))

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		// Upstream payload is validated as JSON by the client, but print
		// whatever arrived rather than failing the run.
		fmt.Println(string(payload))
		return
	}
	fmt.Println(pretty.String())
}

// outputJSON prints the result in JSON format.
func outputJSON(query string, filters map[string]string, payload json.RawMessage) {
	output := QueryOutput{
		Query:        query,
		Filters:      filters,
		PayloadBytes: len(payload),
		Payload:      payload,
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
