// Package config holds the MedFront application configuration. Defaults
// live in the root command's viper layer; environment variables with the
// MEDFRONT_ prefix and an optional YAML file override them.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Auth    AuthConfig    `mapstructure:"auth"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso.
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// AuthConfig contains token signing configuration.
type AuthConfig struct {
	// Secret signs access tokens. Must be overridden outside development.
	Secret string `mapstructure:"secret"`

	// TokenTTL is the access token lifetime.
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// LLMConfig points the chat endpoint at an OpenAI-compatible backend.
type LLMConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level.
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level.
	// Valid values: SIMPLE, STRUCTURED, ENTERPRISE
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HealthConfig contains health check configuration.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DefaultStorePath returns the default on-disk database location,
// ~/.local/share/medfront/medfront.db, falling back to the working
// directory when the home directory cannot be resolved.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "medfront.db"
	}
	return filepath.Join(home, ".local", "share", "medfront", "medfront.db")
}
