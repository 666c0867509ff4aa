package config

import (
	"os"
	"testing"
	"time"
)

func TestNewConfigFromEnvDefaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("MOCK_DELAY_MS")
	os.Unsetenv("LIVE_SESSION_MAX_AGE_MINUTES")

	cfg := NewConfigFromEnv()
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.MockDelay != 150*time.Millisecond {
		t.Errorf("Expected default mock delay 150ms, got %s", cfg.MockDelay)
	}
	if cfg.LiveSessionMaxAge != 30*time.Minute {
		t.Errorf("Expected default session max age 30m, got %s", cfg.LiveSessionMaxAge)
	}
}

func TestNewConfigFromEnvOverrides(t *testing.T) {
	os.Setenv("PORT", "9999")
	os.Setenv("MOCK_DELAY_MS", "0")
	os.Setenv("LIVE_SESSION_MAX_AGE_MINUTES", "5")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("MOCK_DELAY_MS")
		os.Unsetenv("LIVE_SESSION_MAX_AGE_MINUTES")
	}()

	cfg := NewConfigFromEnv()
	if cfg.Port != "9999" {
		t.Errorf("Expected port 9999, got %s", cfg.Port)
	}
	if cfg.MockDelay != 0 {
		t.Errorf("Expected zero mock delay, got %s", cfg.MockDelay)
	}
	if cfg.LiveSessionMaxAge != 5*time.Minute {
		t.Errorf("Expected session max age 5m, got %s", cfg.LiveSessionMaxAge)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(Config{Port: "8080", LiveSessionMaxAge: time.Minute}); err != nil {
		t.Errorf("Expected valid config to pass, got %v", err)
	}
	if err := ValidateConfig(Config{Port: "", LiveSessionMaxAge: time.Minute}); err == nil {
		t.Error("Expected error for missing port")
	}
	if err := ValidateConfig(Config{Port: "abc", LiveSessionMaxAge: time.Minute}); err == nil {
		t.Error("Expected error for non-numeric port")
	}
	if err := ValidateConfig(Config{Port: "8080"}); err == nil {
		t.Error("Expected error for zero session max age")
	}
}
