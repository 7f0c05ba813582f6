// Package config provides configuration for the immobyte service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	Addr string

	// Storage settings
	SQLiteDSN string

	// OpenAI settings
	OpenAIAPIKey          string
	AssistantName         string
	AssistantModel        string
	AssistantInstructions string

	// Run polling settings
	MaxRetries        int
	BaseInterval      time.Duration
	BackoffMultiplier int
	BackoffCap        time.Duration

	// Auth settings
	AuthTokens string // "token=user_id[,token=user_id]" pairs for the relay

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Addr:                  getEnv("ADDR", ":8080"),
		SQLiteDSN:             getEnv("SQLITE_DSN", "file:immobyte.db?_fk=1"),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		AssistantName:         getEnv("ASSISTANT_NAME", "Immobyte Assistant"),
		AssistantModel:        getEnv("ASSISTANT_MODEL", "gpt-4-1106-preview"),
		AssistantInstructions: getEnv("ASSISTANT_INSTRUCTIONS", "You are a real estate agent. Write and run code to sell real estate property."),
		MaxRetries:            getEnvInt("RUN_MAX_RETRIES", 10),
		BaseInterval:          time.Duration(getEnvInt("RUN_BASE_INTERVAL_S", 1)) * time.Second,
		BackoffMultiplier:     getEnvInt("RUN_BACKOFF_MULTIPLIER", 2),
		BackoffCap:            time.Duration(getEnvInt("RUN_BACKOFF_CAP_S", 60)) * time.Second,
		AuthTokens:            getEnv("AUTH_TOKENS", ""),
		PingInterval:          time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:          time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:           time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 300000)) * time.Millisecond,
		MaxMessageSize:        int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
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
