package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString_UnsetUsesDefaultSilently(t *testing.T) {
	f := String("SWEEP_CRON_SCHEDULE", "*/10 * * * *", CronSchedule)
	assert.Equal(t, "*/10 * * * *", f.Value)
	assert.False(t, f.FellBack())
}

func TestString_ValidValueWins(t *testing.T) {
	t.Setenv("SWEEP_CRON_SCHEDULE", "0 * * * *")
	f := String("SWEEP_CRON_SCHEDULE", "*/10 * * * *", CronSchedule)
	assert.Equal(t, "0 * * * *", f.Value)
	assert.False(t, f.FellBack())
}

func TestString_InvalidValueFallsBackWithWarning(t *testing.T) {
	t.Setenv("SWEEP_CRON_SCHEDULE", "whenever")
	f := String("SWEEP_CRON_SCHEDULE", "*/10 * * * *", CronSchedule)
	assert.Equal(t, "*/10 * * * *", f.Value)
	require.True(t, f.FellBack())
	assert.Contains(t, f.Warning, "SWEEP_CRON_SCHEDULE")
	assert.Contains(t, f.Warning, "whenever")
}

func TestDuration_ParsesAndValidates(t *testing.T) {
	t.Setenv("SWEEP_TIMEOUT", "90s")
	f := Duration("SWEEP_TIMEOUT", 5*time.Minute, DurationBetween(10*time.Second, time.Hour))
	assert.Equal(t, 90*time.Second, f.Value)
	assert.False(t, f.FellBack())
}

func TestDuration_UnparsableFallsBack(t *testing.T) {
	t.Setenv("SWEEP_TIMEOUT", "ninety seconds")
	f := Duration("SWEEP_TIMEOUT", 5*time.Minute, nil)
	assert.Equal(t, 5*time.Minute, f.Value)
	assert.True(t, f.FellBack())
}

func TestDuration_OutOfRangeFallsBack(t *testing.T) {
	t.Setenv("WARMUP_TIMEOUT", "24h")
	f := Duration("WARMUP_TIMEOUT", 10*time.Minute, DurationBetween(10*time.Second, 2*time.Hour))
	assert.Equal(t, 10*time.Minute, f.Value)
	assert.True(t, f.FellBack())
}

func TestInt_ParsesAndValidates(t *testing.T) {
	t.Setenv("WORKER_HEALTH_PORT", "9200")
	f := Int("WORKER_HEALTH_PORT", 9091, IntBetween(1024, 65535))
	assert.Equal(t, 9200, f.Value)
	assert.False(t, f.FellBack())
}

func TestInt_RejectsPortBelowRange(t *testing.T) {
	t.Setenv("WORKER_HEALTH_PORT", "80")
	f := Int("WORKER_HEALTH_PORT", 9091, IntBetween(1024, 65535))
	assert.Equal(t, 9091, f.Value)
	assert.True(t, f.FellBack())
}

func TestInt_UnparsableFallsBack(t *testing.T) {
	t.Setenv("WORKER_HEALTH_PORT", "ninety-ninety-one")
	f := Int("WORKER_HEALTH_PORT", 9091, nil)
	assert.Equal(t, 9091, f.Value)
	assert.True(t, f.FellBack())
}

func TestNilValidatorAcceptsAnything(t *testing.T) {
	t.Setenv("WARMUP_CONFIG_PATH", "/etc/searchgate/warmup.yaml")
	f := String("WARMUP_CONFIG_PATH", "warmup.yaml", nil)
	assert.Equal(t, "/etc/searchgate/warmup.yaml", f.Value)
	assert.False(t, f.FellBack())
}
