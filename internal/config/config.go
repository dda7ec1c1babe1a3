// Package config provides configuration types and helpers for vitalstory.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Backend names accepted by the "backend" setting.
const (
	BackendEndpoint = "endpoint"
	BackendOllama   = "ollama"
)

// Config holds the application-wide configuration.
type Config struct {
	Format           string          `mapstructure:"format"`
	Verbose          bool            `mapstructure:"verbose"`
	Debug            bool            `mapstructure:"debug"`
	Backend          string          `mapstructure:"backend"`
	TimestampFormats []string        `mapstructure:"timestamp_formats"`
	Endpoint         EndpointConfig  `mapstructure:"endpoint"`
	LLM              LLMConfig       `mapstructure:"llm"`
	Redaction        RedactionConfig `mapstructure:"redaction"`
	Session          SessionConfig   `mapstructure:"session"`
	Watch            WatchConfig     `mapstructure:"watch"`
	Log              LogConfig       `mapstructure:"log"`
}

// EndpointConfig describes the remote inference endpoint.
type EndpointConfig struct {
	URL string `mapstructure:"url"`

	// Timeout is a duration string ("30s", "2m"). Empty means the HTTP
	// client's default behaviour, i.e. no explicit timeout.
	Timeout string `mapstructure:"timeout"`
}

// TimeoutDuration parses Timeout. An empty value yields zero.
func (e EndpointConfig) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(e.Timeout) == "" {
		return 0, nil
	}
	d, err := ParseDuration(e.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid endpoint.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid endpoint.timeout: must not be negative")
	}
	return d, nil
}

// LLMConfig holds configuration for the local model backend.
type LLMConfig struct {
	Temperature float32      `mapstructure:"temperature"`
	MaxTokens   int          `mapstructure:"max_tokens"`
	Ollama      OllamaConfig `mapstructure:"ollama"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host  string `mapstructure:"host"`  // API endpoint
	Model string `mapstructure:"model"` // Default model name
}

// RedactionConfig controls scrubbing of personal data before a log entry
// leaves the machine.
type RedactionConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Available: email, phone, ssn, ipv4, credit_card, dob, mrn
	Patterns []string `mapstructure:"patterns"`
}

// SessionConfig holds where answered sessions are stored.
type SessionConfig struct {
	Dir string `mapstructure:"dir"`
}

// WatchConfig paces outbound requests made by the watch command.
type WatchConfig struct {
	Rate  float64 `mapstructure:"rate"` // requests per second
	Burst int     `mapstructure:"burst"`
}

// LogConfig configures the optional rotating log file.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case BackendEndpoint:
		if strings.TrimSpace(c.Endpoint.URL) == "" {
			return fmt.Errorf("endpoint.url is not configured (set it in ~/.vitalstory.yaml or VITALSTORY_ENDPOINT_URL)")
		}
	case BackendOllama:
	case "":
		return fmt.Errorf("backend not specified in configuration")
	default:
		return fmt.Errorf("unknown backend: %s (supported: endpoint, ollama)", c.Backend)
	}

	if _, err := c.Endpoint.TimeoutDuration(); err != nil {
		return err
	}
	if c.Watch.Rate < 0 {
		return fmt.Errorf("watch.rate must not be negative")
	}
	return nil
}
