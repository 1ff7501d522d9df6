package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the letter simplify service
type Config struct {
	// Server configuration
	Port string

	// OpenAI configuration (simplification)
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Gemini configuration (OCR + illustrations)
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	GeminiBaseURL    string

	// Request handling
	RequestTimeout     time.Duration
	MaxIllustrations   int
	DefaultLanguage    string
	RateLimitPerMinute int
	AllowedOrigins     string

	// Database configuration (optional; in-memory store is used when unset)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// RabbitMQ configuration (optional)
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// Load loads configuration from environment variables.
// Provider API keys are intentionally not validated here: a missing key
// surfaces as a configuration error on first use, not at process start.
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),

		RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", 60*time.Second),
		MaxIllustrations:   getIntEnv("MAX_ILLUSTRATIONS", 3),
		DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "en"),
		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:     getEnv("ALLOWED_ORIGINS", "*"),

		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "letters"),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "letter_simplify"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "explanation.created"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
