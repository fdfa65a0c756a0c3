package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("POLYWATCH_SERVER_URL")
	os.Unsetenv("POLYWATCH_POLL_SECONDS")
	os.Unsetenv("POLYWATCH_LOG_LEVEL")
	os.Unsetenv("POLYWATCH_LOG_FILE")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.BaseURL != "http://localhost:5000" {
		t.Errorf("Server.BaseURL = %q, want %q", cfg.Server.BaseURL, "http://localhost:5000")
	}
	if cfg.Poll.IntervalSeconds != 5 {
		t.Errorf("Poll.IntervalSeconds = %d, want 5", cfg.Poll.IntervalSeconds)
	}
	if cfg.Interval() != 5*time.Second {
		t.Errorf("Interval() = %v, want 5s", cfg.Interval())
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoadFile(t *testing.T) {
	yamlContent := []byte(`
server:
  base_url: "http://bot.internal:5000"
poll:
  interval_seconds: 10
logging:
  level: "debug"
  file: "/tmp/polywatch.log"
`)

	tmpFile, err := os.CreateTemp("", "polywatch-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	os.Unsetenv("POLYWATCH_SERVER_URL")
	os.Unsetenv("POLYWATCH_POLL_SECONDS")
	os.Unsetenv("POLYWATCH_LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.BaseURL != "http://bot.internal:5000" {
		t.Errorf("Server.BaseURL = %q, want %q", cfg.Server.BaseURL, "http://bot.internal:5000")
	}
	if cfg.Poll.IntervalSeconds != 10 {
		t.Errorf("Poll.IntervalSeconds = %d, want 10", cfg.Poll.IntervalSeconds)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.File != "/tmp/polywatch.log" {
		t.Errorf("Logging.File = %q, want %q", cfg.Logging.File, "/tmp/polywatch.log")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
server:
  base_url: "http://yaml-host:5000"
logging:
  level: "info"
`)

	tmpFile, err := os.CreateTemp("", "polywatch-config-env-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	os.Setenv("POLYWATCH_SERVER_URL", "http://env-host:5000")
	os.Setenv("POLYWATCH_POLL_SECONDS", "2")
	defer os.Unsetenv("POLYWATCH_SERVER_URL")
	defer os.Unsetenv("POLYWATCH_POLL_SECONDS")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.BaseURL != "http://env-host:5000" {
		t.Errorf("Server.BaseURL = %q, want %q (env override)", cfg.Server.BaseURL, "http://env-host:5000")
	}
	if cfg.Poll.IntervalSeconds != 2 {
		t.Errorf("Poll.IntervalSeconds = %d, want 2 (env override)", cfg.Poll.IntervalSeconds)
	}
	// Level comes from YAML since no env override was set.
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q (from YAML)", cfg.Logging.Level, "info")
	}
}

func TestLoadRejectsBadInterval(t *testing.T) {
	yamlContent := []byte(`
poll:
  interval_seconds: -1
`)
	tmpFile, err := os.CreateTemp("", "polywatch-config-bad-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	os.Unsetenv("POLYWATCH_POLL_SECONDS")

	if _, err := Load(tmpFile.Name()); err == nil {
		t.Fatal("Load() should reject a non-positive interval")
	}
}
