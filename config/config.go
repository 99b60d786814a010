// Package config resolves client configuration from the environment, with
// an optional YAML file override for tooling.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config is the client configuration.
type Config struct {
	// BaseURL is the API origin. Required.
	BaseURL string `env:"ERP_BASE_URL" yaml:"base_url"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `env:"ERP_TIMEOUT,default=10s" yaml:"timeout"`
	// LoginRoute is the navigation target on forced logout.
	LoginRoute string `env:"ERP_LOGIN_ROUTE,default=/login" yaml:"login_route"`
	// TokenFile is where credentials persist between runs. Empty means
	// in-memory only.
	TokenFile string `env:"ERP_TOKEN_FILE" yaml:"token_file"`
	// LogLevel sets client log verbosity.
	LogLevel string `env:"ERP_LOG_LEVEL,default=info" yaml:"log_level"`
	// RateLimit throttles outgoing requests (requests per second, 0 = off).
	RateLimit float64 `env:"ERP_RATE_LIMIT,default=0" yaml:"rate_limit"`
}

// FromEnv decodes configuration from ERP_-prefixed environment variables.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromPath reads a YAML config file, then applies environment variables
// on top (the environment wins).
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	var env Config
	if err := envdecode.Decode(&env); err == nil {
		if env.BaseURL != "" {
			cfg.BaseURL = env.BaseURL
		}
		if env.TokenFile != "" {
			cfg.TokenFile = env.TokenFile
		}
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault tries the given path and falls back to the environment.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if cfg, err := LoadFromPath(path); err == nil {
			return cfg, nil
		}
	}
	return FromEnv()
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required (set ERP_BASE_URL)")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL: %q", c.BaseURL)
	}
	return nil
}

func applyDefaults(c *Config) {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.LoginRoute == "" {
		c.LoginRoute = "/login"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
