package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// FromViper unmarshals the global viper state into a typed Config. The root
// command registers defaults, reads the optional YAML file, and binds
// MEDFRONT_* environment variables before this runs.
func FromViper() (*Config, error) {
	return decode(viper.GetViper())
}

// decode converts a viper instance into a typed Config.
func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics port %d out of range", c.Metrics.Port)
	}
	if c.Auth.TokenTTL < 0 {
		return fmt.Errorf("auth token ttl must not be negative")
	}
	return nil
}
