package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Remote PSYCare API
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Client-side request throttling
	APIRateLimit float64
	APIRateBurst int

	// Break reminder
	BreakReminderEnabled   bool
	BreakReminderInterval  time.Duration
	BreakReminderCountdown int

	// Booking form defaults
	DefaultSessionTime     string
	DefaultSessionDuration int

	// Stub server (local development only)
	StubPort      string
	StubJWTSecret string
	StubTokenTTL  time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:8080"),
		HTTPTimeout: getEnvAsDuration("HTTP_TIMEOUT", 20*time.Second),

		APIRateLimit: getEnvAsFloat("API_RATE_LIMIT", 10),
		APIRateBurst: getEnvAsInt("API_RATE_BURST", 5),

		BreakReminderEnabled:   getEnvAsBool("BREAK_REMINDER_ENABLED", true),
		BreakReminderInterval:  getEnvAsDuration("BREAK_REMINDER_INTERVAL", 3*time.Minute),
		BreakReminderCountdown: getEnvAsInt("BREAK_REMINDER_COUNTDOWN", 10),

		DefaultSessionTime:     getEnv("DEFAULT_SESSION_TIME", "10:00"),
		DefaultSessionDuration: getEnvAsInt("DEFAULT_SESSION_DURATION", 60),

		StubPort:      getEnv("STUB_PORT", "8080"),
		StubJWTSecret: getEnv("STUB_JWT_SECRET", "dev-only-secret"),
		StubTokenTTL:  getEnvAsDuration("STUB_TOKEN_TTL", 30*time.Minute),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
