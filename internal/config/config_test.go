package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("SERVER_PORT", "")

	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("Expected file backend by default, got %s", cfg.Storage.Backend)
	}
	if cfg.Notifier != NotifierLog {
		t.Errorf("Expected log notifier by default, got %s", cfg.Notifier)
	}
	if cfg.RateLimit.Window != time.Minute {
		t.Errorf("Expected one minute rate limit window, got %v", cfg.RateLimit.Window)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("NOTIFIER", "redis")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example ,")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "30")

	cfg := Load()

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Storage.Backend != BackendRedis {
		t.Errorf("Expected redis backend, got %s", cfg.Storage.Backend)
	}
	if !cfg.NeedsRedis() {
		t.Error("Expected redis to be required")
	}
	if len(cfg.CORS.Origins) != 2 || cfg.CORS.Origins[1] != "http://b.example" {
		t.Errorf("Unexpected CORS origins: %v", cfg.CORS.Origins)
	}
	if cfg.RateLimit.Window != 30*time.Second {
		t.Errorf("Expected 30s window, got %v", cfg.RateLimit.Window)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := &Config{
		Storage:   StorageConfig{Backend: "sqlite", DataDir: "data"},
		Notifier:  NotifierLog,
		RateLimit: RateLimitConfig{Requests: 1, Window: time.Second},
	}

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}

	cfg.Storage.Backend = BackendFile
	cfg.Notifier = "push"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for notifier, got %v", err)
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "hk",
		Password: "p@ss",
		Database: "homekeeper",
		SSLMode:  "disable",
	}

	want := "postgres://hk:p%40ss@db:5432/homekeeper?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestCSVLocationFallsBackToLocal(t *testing.T) {
	cfg := CSVConfig{Timezone: "Not/AZone"}
	if cfg.Location() != time.Local {
		t.Error("Expected invalid timezone to fall back to time.Local")
	}

	cfg.Timezone = "UTC"
	if cfg.Location().String() != "UTC" {
		t.Errorf("Expected UTC, got %s", cfg.Location())
	}
}
