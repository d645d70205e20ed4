package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default values applied when the corresponding environment variable is unset.
const (
	DefaultProxyURL        = "http://localhost:8000"
	DefaultLLMURL          = "http://localhost:8080/v1/chat/completions"
	DefaultLLMModel        = "qwen/qwen3-14b"
	DefaultPageSize        = 100
	DefaultProxyTimeout    = 30 * time.Second
	DefaultLLMTimeout      = 120 * time.Second
	DefaultBulkConcurrency = 1
	DefaultWorkingStart    = 9
	DefaultWorkingEnd      = 17
)

// Config holds the process configuration for the calendar agent.
// It is loaded once at startup and threaded explicitly into the
// constructors that need it; nothing reads the environment ad hoc.
type Config struct {
	// ProxyURL is the base URL of the calendar API proxy.
	ProxyURL string

	// ProxyAPIKey is the bearer credential for the proxy. Required.
	ProxyAPIKey string

	// ProxyTimeout bounds each outbound proxy call.
	ProxyTimeout time.Duration

	// LLMURL is the chat-completions endpoint of the generation backend.
	LLMURL string

	// LLMModel is the model identifier sent to the generation backend.
	LLMModel string

	// LLMTimeout bounds each generation call. Generation is slow on
	// local hardware, so this defaults much higher than ProxyTimeout.
	LLMTimeout time.Duration

	// LLMPromptPrivate marks the generation backend as one whose prompt
	// logs never leave the machine. Sensitive event fields (description,
	// location) are only embedded in prompts when this is true.
	LLMPromptPrivate bool

	// PageSize is the default maximum number of results per list call.
	PageSize int

	// BulkConcurrency is the number of bulk operations dispatched in
	// parallel. 1 means strictly sequential execution.
	BulkConcurrency int

	// WorkingStartHour and WorkingEndHour bound the working day used by
	// the free-slot finder when workingHoursOnly is requested.
	WorkingStartHour int
	WorkingEndHour   int
}

// Load reads configuration from a .env file (if present) and the
// environment. A missing .env file is not an error; a missing proxy
// credential is.
func Load() (Config, error) {
	// Ignore the error: .env is optional, the environment is authoritative.
	_ = godotenv.Load()

	cfg := Config{
		ProxyURL:         getEnvOrDefault("PROXY_URL", DefaultProxyURL),
		ProxyAPIKey:      os.Getenv("PROXY_API_KEY"),
		ProxyTimeout:     getEnvDurationOrDefault("PROXY_TIMEOUT", DefaultProxyTimeout),
		LLMURL:           getEnvOrDefault("LLM_URL", DefaultLLMURL),
		LLMModel:         getEnvOrDefault("LLM_MODEL", DefaultLLMModel),
		LLMTimeout:       getEnvDurationOrDefault("LLM_TIMEOUT", DefaultLLMTimeout),
		LLMPromptPrivate: getEnvBoolOrDefault("LLM_PROMPT_PRIVATE", true),
		PageSize:         getEnvIntOrDefault("DEFAULT_PAGE_SIZE", DefaultPageSize),
		BulkConcurrency:  getEnvIntOrDefault("BULK_CONCURRENCY", DefaultBulkConcurrency),
		WorkingStartHour: getEnvIntOrDefault("WORKING_START_HOUR", DefaultWorkingStart),
		WorkingEndHour:   getEnvIntOrDefault("WORKING_END_HOUR", DefaultWorkingEnd),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for values that would make the
// agent misbehave at runtime rather than fail fast at startup.
func (c Config) Validate() error {
	if c.ProxyAPIKey == "" {
		return fmt.Errorf("PROXY_API_KEY environment variable is not set")
	}
	if c.ProxyURL == "" {
		return fmt.Errorf("proxy URL cannot be empty")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.BulkConcurrency <= 0 {
		return fmt.Errorf("bulk concurrency must be positive, got %d", c.BulkConcurrency)
	}
	if c.WorkingStartHour < 0 || c.WorkingStartHour > 23 {
		return fmt.Errorf("working start hour must be 0-23, got %d", c.WorkingStartHour)
	}
	if c.WorkingEndHour < 1 || c.WorkingEndHour > 24 {
		return fmt.Errorf("working end hour must be 1-24, got %d", c.WorkingEndHour)
	}
	if c.WorkingStartHour >= c.WorkingEndHour {
		return fmt.Errorf("working hours are empty: start %d >= end %d", c.WorkingStartHour, c.WorkingEndHour)
	}
	return nil
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns the integer value of an environment variable or a default value.
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// getEnvBoolOrDefault returns the boolean value of an environment variable or a default value.
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// getEnvDurationOrDefault returns the duration value of an environment
// variable or a default value. Accepts Go duration syntax ("30s", "2m").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
