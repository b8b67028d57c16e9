// Package config loads engine configuration from a YAML file with
// defaults and environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all arrival-card engine configuration.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Submission SubmissionConfig `yaml:"submission"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// APIConfig configures the remote arrival-card service client.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout is the per-step request deadline, as a duration string.
	Timeout string `yaml:"timeout"`
}

// SubmissionConfig configures retry and date-window policy.
type SubmissionConfig struct {
	// MaxAttempts bounds the total number of full nine-step attempts.
	MaxAttempts int `yaml:"max_attempts"`
	// MaxArrivalLeadHours is how far ahead of arrival a submission is
	// accepted; the window is a government constraint, not ours.
	MaxArrivalLeadHours int `yaml:"max_arrival_lead_hours"`
	// ArrivalGraceHours is how long after the arrival date a late
	// submission is still attempted.
	ArrivalGraceHours int `yaml:"arrival_grace_hours"`
}

// LoggingConfig configures log verbosity.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg
}

// Load reads a YAML config file, then applies defaults and env overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://arrivalcard.example.gov/api/v1"
	}
	if c.API.Timeout == "" {
		c.API.Timeout = "30s"
	}
	if c.Submission.MaxAttempts <= 0 {
		c.Submission.MaxAttempts = 3
	}
	if c.Submission.MaxArrivalLeadHours <= 0 {
		c.Submission.MaxArrivalLeadHours = 72
	}
	if c.Submission.ArrivalGraceHours <= 0 {
		c.Submission.ArrivalGraceHours = 24
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ARRIVALCARD_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("ARRIVALCARD_TIMEOUT"); v != "" {
		c.API.Timeout = v
	}
	if v := os.Getenv("ARRIVALCARD_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Submission.MaxAttempts = n
		}
	}
	if v := os.Getenv("ARRIVALCARD_DEBUG"); v == "1" || v == "true" {
		c.Logging.Debug = true
	}
}

// StepTimeout parses the per-step deadline, falling back to 30s on a
// malformed value.
func (c *Config) StepTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ArrivalWindow returns the lead/grace window as durations.
func (c *Config) ArrivalWindow() (lead, grace time.Duration) {
	return time.Duration(c.Submission.MaxArrivalLeadHours) * time.Hour,
		time.Duration(c.Submission.ArrivalGraceHours) * time.Hour
}
