package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort              = "8080"
	defaultMockDelay         = 150 * time.Millisecond
	defaultLiveSessionMaxAge = 30 * time.Minute
)

// Config holds the server configuration. Provider credentials are optional;
// every capability without one falls back to its mock.
type Config struct {
	Port string

	// GeminiAPIKey enables the real generation adapters. Empty means mocks.
	GeminiAPIKey string

	// ElevenLabsAPIKey enables voice cloning and cloned-voice synthesis.
	ElevenLabsAPIKey string

	// GoogleCredentials is the path to the service account used for
	// transcription. Empty means the mock transcriber.
	GoogleCredentials string

	// MockDelay is the artificial latency of mock responses.
	MockDelay time.Duration

	// LiveSessionMaxAge caps how long one live voice session may run.
	LiveSessionMaxAge time.Duration
}

// NewConfigFromEnv creates a Config from environment variables
func NewConfigFromEnv() Config {
	cfg := Config{
		Port:              os.Getenv("PORT"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		ElevenLabsAPIKey:  os.Getenv("ELEVEN_LABS_API_KEY"),
		GoogleCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		MockDelay:         defaultMockDelay,
		LiveSessionMaxAge: defaultLiveSessionMaxAge,
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if delayStr := os.Getenv("MOCK_DELAY_MS"); delayStr != "" {
		if delay, err := strconv.Atoi(delayStr); err == nil && delay >= 0 {
			cfg.MockDelay = time.Duration(delay) * time.Millisecond
		}
	}
	if ageStr := os.Getenv("LIVE_SESSION_MAX_AGE_MINUTES"); ageStr != "" {
		if age, err := strconv.Atoi(ageStr); err == nil && age > 0 {
			cfg.LiveSessionMaxAge = time.Duration(age) * time.Minute
		}
	}

	return cfg
}

// ValidateConfig validates the Config
func ValidateConfig(cfg Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("port is required")
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return fmt.Errorf("port must be numeric, got %q", cfg.Port)
	}
	if cfg.LiveSessionMaxAge <= 0 {
		return fmt.Errorf("live session max age must be positive")
	}
	return nil
}
