package config

import (
	"testing"
	"time"
)

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("TEST_STR", "")
	if got := getEnv("TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("getEnv empty = %q, want fallback", got)
	}

	t.Setenv("TEST_STR", "value")
	if got := getEnv("TEST_STR", "fallback"); got != "value" {
		t.Errorf("getEnv set = %q, want value", got)
	}

	t.Setenv("TEST_INT", "not-a-number")
	if got := getEnvInt("TEST_INT", 7); got != 7 {
		t.Errorf("getEnvInt invalid = %d, want 7", got)
	}

	t.Setenv("TEST_INT", "42")
	if got := getEnvInt("TEST_INT", 7); got != 42 {
		t.Errorf("getEnvInt set = %d, want 42", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PROCESSING_DAY_LIMIT", "")
	t.Setenv("SWEEP_MAX_DURATION_SECONDS", "")

	cfg := Load()
	if cfg.ProcessingDayLimit != 3 {
		t.Errorf("ProcessingDayLimit = %d, want 3", cfg.ProcessingDayLimit)
	}
	if cfg.SweepMaxDuration != 60*time.Second {
		t.Errorf("SweepMaxDuration = %v, want 60s", cfg.SweepMaxDuration)
	}
	if cfg.SweepBatchSize <= 0 {
		t.Errorf("SweepBatchSize = %d, want positive", cfg.SweepBatchSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PROCESSING_DAY_LIMIT", "5")
	t.Setenv("DISPUTE_WINDOW_DAYS", "14")

	cfg := Load()
	if cfg.ProcessingDayLimit != 5 {
		t.Errorf("ProcessingDayLimit = %d, want 5", cfg.ProcessingDayLimit)
	}
	if cfg.DisputeWindowDays != 14 {
		t.Errorf("DisputeWindowDays = %d, want 14", cfg.DisputeWindowDays)
	}
}
