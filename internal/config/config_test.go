package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EXSTEM_API_TOKEN", "tok")
	t.Setenv("EXSTEM_API_URL", "")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("TICK_INTERVAL_MS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8080/api/v1" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %v, want 15s", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "pretty" {
		t.Errorf("log defaults = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.TickInterval != time.Second {
		t.Errorf("TickInterval = %v, want 1s", cfg.TickInterval)
	}
	if cfg.HistoryDBPath == "" {
		t.Error("HistoryDBPath empty")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("EXSTEM_API_TOKEN", "tok")
	t.Setenv("EXSTEM_API_URL", "https://exams.school.test/api/v1")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "30")
	t.Setenv("TICK_INTERVAL_MS", "250")
	t.Setenv("HISTORY_DB_PATH", "/tmp/h.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "https://exams.school.test/api/v1" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("TickInterval = %v, want 250ms", cfg.TickInterval)
	}
	if cfg.HistoryDBPath != "/tmp/h.db" {
		t.Errorf("HistoryDBPath = %q", cfg.HistoryDBPath)
	}
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("EXSTEM_API_TOKEN", "")
	t.Setenv("EXSTEM_API_URL", "http://localhost:8080/api/v1")

	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without a token")
	}
}

func TestGetEnvInt_Garbage(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "not-a-number")
	if got := getEnvInt("HTTP_TIMEOUT_SECONDS", 15); got != 15 {
		t.Errorf("getEnvInt = %d, want fallback 15", got)
	}
}
