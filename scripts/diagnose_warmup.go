package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"searchgate/internal/config"
	"searchgate/internal/infra/upstream"
)

// QueryDiagnostic represents the diagnostic result for a single warmup query.
type QueryDiagnostic struct {
	Query        string            `json:"query"`
	Filters      map[string]string `json:"filters,omitempty"`
	Status       string            `json:"status"` // "OK", "UPSTREAM_ERROR", "TIMEOUT"
	PayloadBytes int               `json:"payload_bytes"`
	ErrorMessage string            `json:"error_message,omitempty"`
	ResponseTime int64             `json:"response_time_ms"`
}

func main() {
	warmupPath := os.Getenv("WARMUP_CONFIG_PATH")
	if warmupPath == "" {
		warmupPath = "warmup.yaml"
		log.Println("WARMUP_CONFIG_PATH not set, using warmup.yaml")
	}

	warmup, err := config.LoadWarmupConfig(warmupPath)
	if err != nil {
		log.Fatalf("Failed to load warmup config: %v", err)
	}

	upstreamCfg, err := upstream.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load upstream config: %v", err)
	}
	client := upstream.NewClient(upstreamCfg)

	log.Printf("Diagnosing %d warmup queries against %s...", len(warmup.Queries), upstreamCfg.BaseURL)

	diagnostics := make([]QueryDiagnostic, 0, len(warmup.Queries))
	for i, q := range warmup.Queries {
		log.Printf("[%d/%d] Diagnosing: %q", i+1, len(warmup.Queries), q.Query)
		diagnostics = append(diagnostics, diagnoseQuery(client, q, 30*time.Second))
	}

	generateReport(diagnostics)
	generateJSONReport(diagnostics)
}

func diagnoseQuery(client *upstream.Client, q config.WarmupQuery, timeout time.Duration) QueryDiagnostic {
	diag := QueryDiagnostic{
		Query:   q.Query,
		Filters: q.Filters,
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	payload, err := client.Search(ctx, q.Query, q.Filters)
	diag.ResponseTime = time.Since(start).Milliseconds()

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			diag.Status = "TIMEOUT"
		} else {
			diag.Status = "UPSTREAM_ERROR"
		}
		diag.ErrorMessage = err.Error()
		return diag
	}

	diag.PayloadBytes = len(payload)
	diag.Status = "OK"
	return diag
}

func generateReport(diagnostics []QueryDiagnostic) {
	f, err := os.Create("warmup_diagnostic_report.txt")
	if err != nil {
		log.Printf("Failed to create report file: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close report file: %v", err)
		}
	}()

	w := func(format string, args ...interface{}) {
		if _, err := fmt.Fprintf(f, format, args...); err != nil {
			log.Printf("Failed to write to report: %v", err)
		}
	}

	var okCount, errorCount int
	for _, d := range diagnostics {
		if d.Status == "OK" {
			okCount++
		} else {
			errorCount++
		}
	}

	w("===============================================\n")
	w("Warmup Query Diagnostic Report\n")
	w("Generated: %s\n", time.Now().Format(time.RFC3339))
	w("Total Queries: %d\n", len(diagnostics))
	w("===============================================\n\n")

	w("SUMMARY:\n")
	w("  Working: %d\n", okCount)
	w("  Failing: %d\n\n", errorCount)

	w("DETAILED RESULTS:\n")
	w("-----------------------------------------------\n")
	for _, d := range diagnostics {
		w("Query: %q\n", d.Query)
		if len(d.Filters) > 0 {
			w("  Filters: %v\n", d.Filters)
		}
		w("  Status: %s | Response: %dms | Payload: %d bytes\n",
			d.Status, d.ResponseTime, d.PayloadBytes)
		if d.ErrorMessage != "" {
			w("  Error: %s\n", d.ErrorMessage)
		}
		w("\n")
	}

	log.Println("Text report generated: warmup_diagnostic_report.txt")
}

func generateJSONReport(diagnostics []QueryDiagnostic) {
	f, err := os.Create("warmup_diagnostic_report.json")
	if err != nil {
		log.Printf("Failed to create JSON report: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close JSON report file: %v", err)
		}
	}()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(diagnostics); err != nil {
		log.Printf("Failed to write JSON report: %v", err)
		return
	}

	log.Println("JSON report generated: warmup_diagnostic_report.json")
}
