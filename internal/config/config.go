package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	ListenAddr string `yaml:"listen_addr"`

	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	AdvisorURL     string        `yaml:"advisor_url"`
	AdvisorModel   string        `yaml:"advisor_model"`
	AdvisorTimeout time.Duration `yaml:"advisor_timeout"`

	ClockSeconds  int           `yaml:"clock_seconds"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	FinishedGrace time.Duration `yaml:"finished_grace"`
	IdleTTL       time.Duration `yaml:"idle_ttl"`
}

// Load reads an optional YAML file named by CONFIG_FILE, then applies
// environment overrides on top. Only the listen address is required; redis,
// postgres and the advisor are all optional features.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:     ":8080",
		AdvisorModel:   "gemini-2.0-flash",
		AdvisorTimeout: 25 * time.Second,
		ClockSeconds:   600,
		SweepInterval:  2 * time.Second,
		FinishedGrace:  5 * time.Minute,
		IdleTTL:        time.Hour,
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ADVISOR_URL")); v != "" {
		cfg.AdvisorURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ADVISOR_MODEL")); v != "" {
		cfg.AdvisorModel = v
	}
	if v := strings.TrimSpace(os.Getenv("ADVISOR_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.AdvisorTimeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("CLOCK_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ClockSeconds = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("SWEEP_INTERVAL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SweepInterval = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("FINISHED_GRACE")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.FinishedGrace = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("IDLE_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.IdleTTL = d
		}
	}

	if cfg.ListenAddr == "" {
		return nil, errors.New("LISTEN_ADDR is required")
	}
	if cfg.ClockSeconds <= 0 {
		return nil, errors.New("clock_seconds must be positive")
	}
	return cfg, nil
}
