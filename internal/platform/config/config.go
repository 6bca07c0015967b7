// Package config loads server configuration from an optional YAML file with
// ${VAR} environment expansion. Secrets (API keys, DSNs) stay in the
// environment; the file carries only tunables.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig is the top-level configuration for cmd/server.
type ServerConfig struct {
	Server struct {
		// Addr is the listen address, e.g. ":8080".
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Cache struct {
		// TTL is how long list/detail responses stay cached.
		TTL time.Duration `yaml:"ttl"`
		// Namespace prefixes every cache key.
		Namespace string `yaml:"namespace"`
	} `yaml:"cache"`

	Provider struct {
		// RatePerMinute throttles upstream calls; 0 disables the throttle.
		RatePerMinute int `yaml:"rate_per_minute"`
	} `yaml:"provider"`
}

// Default returns the configuration used when no file is given.
func Default() *ServerConfig {
	cfg := &ServerConfig{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg ServerConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return &cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*ServerConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = time.Minute
	}
	if c.Cache.Namespace == "" {
		c.Cache.Namespace = "coins"
	}
	if c.Provider.RatePerMinute < 0 {
		c.Provider.RatePerMinute = 0
	}
}

// Validate rejects configurations the server could not run with.
func (c *ServerConfig) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
	}
	return nil
}
