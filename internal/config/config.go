// Package config provides environment-driven configuration for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ScorePolicy selects how a human challenge review combines with the
// machine-graded score.
type ScorePolicy string

const (
	// ScorePolicyOverride replaces the auto score with the human score.
	ScorePolicyOverride ScorePolicy = "override"
	// ScorePolicyBlend averages the auto and human scores.
	ScorePolicyBlend ScorePolicy = "blend"
)

// Config holds all runtime configuration. Values come from the environment,
// optionally seeded from a .env file.
type Config struct {
	Port        int
	DatabaseURL string
	RedisAddr   string // empty disables the fetch cache

	GeminiAPIKey string

	LogLevel  string
	LogFormat string

	SweepInterval time.Duration // periodic incremental match sweep

	FetchCacheTTL time.Duration
	UseBrowser    bool // headless browser fallback for SPA career pages

	ChallengeScorePolicy ScorePolicy
}

// Load reads configuration from the environment. If a .env file exists in
// the working directory it is loaded first; a missing file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 envInt("PORT", 8080),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		LogLevel:             envString("LOG_LEVEL", "info"),
		LogFormat:            envString("LOG_FORMAT", "json"),
		SweepInterval:        envDuration("SWEEP_INTERVAL", 30*time.Minute),
		FetchCacheTTL:        envDuration("FETCH_CACHE_TTL", 7*24*time.Hour),
		UseBrowser:           envBool("USE_BROWSER", false),
		ChallengeScorePolicy: ScorePolicy(envString("CHALLENGE_SCORE_POLICY", string(ScorePolicyOverride))),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config error: GEMINI_API_KEY is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT must be in (0, 65535], got %d", c.Port)
	}
	if c.SweepInterval < time.Minute {
		return fmt.Errorf("config error: SWEEP_INTERVAL must be at least 1m, got %s", c.SweepInterval)
	}
	switch c.ChallengeScorePolicy {
	case ScorePolicyOverride, ScorePolicyBlend:
	default:
		return fmt.Errorf("config error: CHALLENGE_SCORE_POLICY must be %q or %q, got %q",
			ScorePolicyOverride, ScorePolicyBlend, c.ChallengeScorePolicy)
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
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

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
