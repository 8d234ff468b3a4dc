package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WarmupConfig lists the queries the worker pre-fetches so popular searches
// are already cached when clients arrive.
type WarmupConfig struct {
	Queries []WarmupQuery `yaml:"queries"`
}

// WarmupQuery is one query to pre-warm, with optional filters.
type WarmupQuery struct {
	Query   string            `yaml:"query"`
	Filters map[string]string `yaml:"filters,omitempty"`
}

// LoadWarmupConfig loads the warmup query list from a YAML file.
// The path parameter is expected to come from a trusted source (command-line
// argument or hardcoded default).
func LoadWarmupConfig(path string) (*WarmupConfig, error) {
	// #nosec G304 -- path is provided by trusted source (CLI arg or config), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read warmup file: %w", err)
	}

	var config WarmupConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse warmup file: %w", err)
	}

	if err := validateWarmupConfig(&config); err != nil {
		return nil, fmt.Errorf("warmup validation failed: %w", err)
	}

	return &config, nil
}

// validateWarmupConfig checks the loaded warmup list.
func validateWarmupConfig(config *WarmupConfig) error {
	if len(config.Queries) == 0 {
		return fmt.Errorf("at least one query is required")
	}
	for i, q := range config.Queries {
		if q.Query == "" {
			return fmt.Errorf("query %d: query text is required", i)
		}
	}
	return nil
}
