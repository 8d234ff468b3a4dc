// Package config loads environment configuration with warn-and-default
// semantics: a value that is missing stays on its default silently, a value
// that is present but invalid falls back to the default and carries a
// warning the caller is expected to log. Loading never fails; the worker
// keeps its schedules running on defaults rather than refusing to start
// over a typo in an env var.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Field is the outcome of loading one environment value.
type Field[T any] struct {
	// Value is the loaded value, or the default when the variable was
	// absent or invalid.
	Value T

	// Warning describes why the default was substituted. Empty when the
	// environment value (or the silent default) was used.
	Warning string
}

// FellBack reports whether an invalid environment value was replaced by
// the default.
func (f Field[T]) FellBack() bool {
	return f.Warning != ""
}

func fallback[T any](key, raw string, def T, reason error) Field[T] {
	return Field[T]{
		Value:   def,
		Warning: fmt.Sprintf("invalid %s=%q: %v, using default %v", key, raw, reason, def),
	}
}

// String loads a string variable. A nil validate accepts any value.
func String(key, def string, validate func(string) error) Field[string] {
	raw := os.Getenv(key)
	if raw == "" {
		return Field[string]{Value: def}
	}
	if validate != nil {
		if err := validate(raw); err != nil {
			return fallback(key, raw, def, err)
		}
	}
	return Field[string]{Value: raw}
}

// Duration loads a Go duration string ("30s", "5m", "1h30m").
func Duration(key string, def time.Duration, validate func(time.Duration) error) Field[time.Duration] {
	raw := os.Getenv(key)
	if raw == "" {
		return Field[time.Duration]{Value: def}
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback(key, raw, def, err)
	}
	if validate != nil {
		if err := validate(d); err != nil {
			return fallback(key, raw, def, err)
		}
	}
	return Field[time.Duration]{Value: d}
}

// Int loads an integer variable.
func Int(key string, def int, validate func(int) error) Field[int] {
	raw := os.Getenv(key)
	if raw == "" {
		return Field[int]{Value: def}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback(key, raw, def, err)
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return fallback(key, raw, def, err)
		}
	}
	return Field[int]{Value: v}
}
