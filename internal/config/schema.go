package config

import (
	"time"

	"github.com/fieldlens/fieldlens/internal/providers"
)

// Config holds fieldlens configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Providers map[string]ProviderCfg `mapstructure:"providers" yaml:"providers"`
	Defaults  DefaultsCfg            `mapstructure:"defaults" yaml:"defaults"`
	Server    ServerCfg              `mapstructure:"server" yaml:"server"`
}

// ProviderCfg configures a vision model provider.
type ProviderCfg struct {
	Type       string  `mapstructure:"type" yaml:"type"`                 // "openai", "openrouter", "mock"
	Model      string  `mapstructure:"model" yaml:"model"`               // Model name
	APIKey     string  `mapstructure:"api_key" yaml:"api_key"`           // API key (supports ${ENV_VAR} syntax)
	BaseURL    string  `mapstructure:"base_url" yaml:"base_url"`         // Optional endpoint override
	RateLimit  float64 `mapstructure:"rate_limit" yaml:"rate_limit"`     // Requests per second
	MaxRetries int     `mapstructure:"max_retries" yaml:"max_retries"`   // Transport retries
	TimeoutSec int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default selections for a run.
type DefaultsCfg struct {
	Provider   string `mapstructure:"provider" yaml:"provider"`       // Default vision provider name
	Preset     string `mapstructure:"preset" yaml:"preset"`           // Default schema preset ("" = all fields)
	WatchInbox bool   `mapstructure:"watch_inbox" yaml:"watch_inbox"` // Auto-process inbox drops
}

// ServerCfg holds HTTP server settings.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Providers: map[string]ProviderCfg{
			"openai": {
				Type:       "openai",
				Model:      "gpt-4o",
				APIKey:     "${OPENAI_API_KEY}",
				RateLimit:  2.0,
				MaxRetries: 2,
				TimeoutSec: 120,
				Enabled:    true,
			},
			"openrouter": {
				Type:       "openrouter",
				Model:      "anthropic/claude-3.5-sonnet",
				APIKey:     "${OPENROUTER_API_KEY}",
				RateLimit:  2.0,
				TimeoutSec: 120,
				Enabled:    false,
			},
		},
		Defaults: DefaultsCfg{
			Provider: "openai",
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}

// ToProviderRegistryConfig converts the config for providers.Registry.
// It resolves all ${ENV_VAR} references in API keys.
func (c *Config) ToProviderRegistryConfig() providers.RegistryConfig {
	cfg := providers.RegistryConfig{
		Providers: make(map[string]providers.ClientConfig, len(c.Providers)),
	}

	for name, p := range c.Providers {
		cfg.Providers[name] = providers.ClientConfig{
			Type:       p.Type,
			Model:      p.Model,
			APIKey:     ResolveEnvVars(p.APIKey),
			BaseURL:    p.BaseURL,
			RateLimit:  p.RateLimit,
			MaxRetries: p.MaxRetries,
			Timeout:    time.Duration(p.TimeoutSec) * time.Second,
			Enabled:    p.Enabled,
		}
	}

	return cfg
}
