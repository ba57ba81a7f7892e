package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/stemsi/exstem-client/internal/validator"
)

// Config holds all client configuration.
type Config struct {
	// APIBaseURL is the exam service root, e.g. https://exstem.example/api/v1.
	APIBaseURL string `json:"api_base_url" validate:"required,url"`
	// APIToken is the bearer credential issued by the identity provider.
	// Refresh is the provider's concern; the client only attaches it.
	APIToken      string        `json:"api_token" validate:"required"`
	HTTPTimeout   time.Duration `json:"http_timeout"`
	LogLevel      string        `json:"log_level"`
	LogFormat     string        `json:"log_format"`
	HistoryDBPath string        `json:"history_db_path" validate:"required"`
	TickInterval  time.Duration `json:"tick_interval"`
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error — .env is optional

	cfg := &Config{
		APIBaseURL:    getEnv("EXSTEM_API_URL", "http://localhost:8080/api/v1"),
		APIToken:      getEnv("EXSTEM_API_TOKEN", ""),
		HTTPTimeout:   time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "pretty"),
		HistoryDBPath: getEnv("HISTORY_DB_PATH", defaultHistoryPath()),
		TickInterval:  time.Duration(getEnvInt("TICK_INTERVAL_MS", 1000)) * time.Millisecond,
	}

	if fields := validator.Struct(cfg); fields != nil {
		return nil, fmt.Errorf("invalid configuration: %v", fields)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// defaultHistoryPath places the attempt history DB under the user config
// directory, falling back to the working directory when it is unavailable.
func defaultHistoryPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "exstem-history.db"
	}
	return filepath.Join(base, "exstem", "history.db")
}
