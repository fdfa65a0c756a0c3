package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the polywatch clients.
type Config struct {
	Server  Server  `yaml:"server"`
	Poll    Poll    `yaml:"poll"`
	Logging Logging `yaml:"logging"`
}

// Server points at the trading bot's HTTP API.
type Server struct {
	BaseURL string `yaml:"base_url"`
}

// Poll controls the status polling cadence.
type Poll struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

// Logging configures the application logger. The terminal owns stdout, so
// log records go to File.
type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Interval returns the polling interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the built-in configuration: a local bot server, five
// second polling, info-level logs.
func Default() *Config {
	return &Config{
		Server:  Server{BaseURL: "http://localhost:5000"},
		Poll:    Poll{IntervalSeconds: 5},
		Logging: Logging{Level: "info", File: "polywatch.log"},
	}
}

// Load reads the YAML configuration file at the given path, fills unset
// fields from the defaults, and then applies environment variable
// overrides. An empty path skips the file and uses defaults plus env.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Poll.IntervalSeconds <= 0 {
		return nil, fmt.Errorf("poll.interval_seconds must be positive, got %d", cfg.Poll.IntervalSeconds)
	}
	if cfg.Server.BaseURL == "" {
		return nil, fmt.Errorf("server.base_url must not be empty")
	}

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POLYWATCH_SERVER_URL"); v != "" {
		cfg.Server.BaseURL = v
	}

	if v := os.Getenv("POLYWATCH_POLL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Poll.IntervalSeconds = n
		}
	}

	if v := os.Getenv("POLYWATCH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("POLYWATCH_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
}
