// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the application needs at startup.
type Config struct {
	// Server
	Port int

	// Store
	DatabaseDriver string // sqlite3 | postgres
	DatabaseDSN    string

	// Cache
	RedisURL string

	// Carrier (Sendblue-style message API)
	SendblueBaseURL   string
	SendblueAPIKey    string
	SendblueAPISecret string
	StatusCallbackURL string

	// Generation service
	AnthropicAPIKey string
	AnthropicModel  string

	// Admission control
	RateLimitWindow time.Duration
	RateLimitMax    int

	// External call bounds
	GenerationTimeout time.Duration
	CarrierTimeout    time.Duration
}

// Load reads configuration from a .env file (if present) and the
// environment. Missing values fall back to development defaults.
func Load() *Config {
	// Best effort: a missing .env file is fine in production.
	_ = godotenv.Load()

	return &Config{
		Port:              getEnvInt("PORT", 3000),
		DatabaseDriver:    getEnv("DB_DRIVER", "sqlite3"),
		DatabaseDSN:       getEnv("DATABASE_DSN", "data/holabot.db"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SendblueBaseURL:   getEnv("SENDBLUE_BASE_URL", "https://api.sendblue.co/api"),
		SendblueAPIKey:    getEnv("SENDBLUE_API_KEY", ""),
		SendblueAPISecret: getEnv("SENDBLUE_API_SECRET", ""),
		StatusCallbackURL: getEnv("STATUS_CALLBACK_URL", ""),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:    getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		RateLimitWindow:   time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MS", 1000)) * time.Millisecond,
		RateLimitMax:      getEnvInt("RATE_LIMIT_MAX", 1),
		GenerationTimeout: time.Duration(getEnvInt("GENERATION_TIMEOUT_MS", 30000)) * time.Millisecond,
		CarrierTimeout:    time.Duration(getEnvInt("CARRIER_TIMEOUT_MS", 10000)) * time.Millisecond,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
