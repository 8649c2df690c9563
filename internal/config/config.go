package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config is read from the environment once at startup. godotenv loads a
// local .env first, so development setups need no shell exports.
type Config struct {
	APIBaseURL     string
	HTTPTimeout    time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	SessionFile    string
}

func Load() Config {
	cfg := Config{
		APIBaseURL:     getEnv("HR_API_URL", "http://localhost:3000"),
		HTTPTimeout:    time.Duration(getEnvInt("HR_HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		RateLimitRPS:   getEnvFloat("HR_RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("HR_RATE_LIMIT_BURST", 20),
		SessionFile:    os.Getenv("HR_SESSION_FILE"),
	}
	if cfg.SessionFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.SessionFile = filepath.Join(home, ".config", "hrportal", "session.json")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
