// Package config provides gateway configuration management with multi-source
// priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Default values (sensible defaults for quick start)
//
// A .env file, if present, is loaded into the environment by the command
// entrypoint before Load runs.
//
// Security: sensitive values (API keys) are masked when the configuration is
// logged.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentgate/logging"
	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates no backend API key is configured.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidServerPort indicates the server port is out of range.
	ErrInvalidServerPort = errors.New("invalid server port")

	// ErrInvalidTimeout indicates the backend request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid backend request timeout")
)

// Config aggregates the parameters for connecting to the model backend and
// configuring the gateway server.
type Config struct {
	// Backend configuration.
	OpenAIAPIKey          string        `mapstructure:"openai_api_key"`
	AnthropicAPIKey       string        `mapstructure:"anthropic_api_key"`
	BackendURL            string        `mapstructure:"backend_url"`
	BackendRequestTimeout time.Duration `mapstructure:"backend_request_timeout"`
	DefaultLLM            string        `mapstructure:"default_llm"`

	// Server configuration.
	ServerHost string `mapstructure:"server_host"`
	ServerPort int    `mapstructure:"server_port"`

	// DebugLog enables debug level logging for the gateway.
	DebugLog bool `mapstructure:"debug_log"`
}

// setDefaults registers the default values mirroring a plain OpenAI setup.
func setDefaults(v *viper.Viper) {
	v.SetDefault("backend_url", "https://api.openai.com/v1")
	v.SetDefault("backend_request_timeout", 60*time.Second)
	v.SetDefault("default_llm", "gpt-4o-mini")
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 11435)
	v.SetDefault("debug_log", false)
}

// Load reads the configuration from the environment and validates it.
// Environment variables use upper snake case (OPENAI_API_KEY, BACKEND_URL,
// BACKEND_REQUEST_TIMEOUT, DEFAULT_LLM, SERVER_HOST, SERVER_PORT, DEBUG_LOG).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{
		"openai_api_key",
		"anthropic_api_key",
		"backend_url",
		"backend_request_timeout",
		"default_llm",
		"server_host",
		"server_port",
		"debug_log",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for completeness and value ranges.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" && c.AnthropicAPIKey == "" {
		return fmt.Errorf("%w: set OPENAI_API_KEY or ANTHROPIC_API_KEY", ErrMissingAPIKey)
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidServerPort, c.ServerPort)
	}
	if c.BackendRequestTimeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.BackendRequestTimeout)
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// LogConfig logs all configuration values with API keys masked.
func (c *Config) LogConfig(logger logging.Logger) {
	logger.Info("loaded configuration",
		"openai_api_key", maskKey(c.OpenAIAPIKey),
		"anthropic_api_key", maskKey(c.AnthropicAPIKey),
		"backend_url", c.BackendURL,
		"backend_request_timeout", c.BackendRequestTimeout.String(),
		"default_llm", c.DefaultLLM,
		"server_host", c.ServerHost,
		"server_port", c.ServerPort,
		"debug_log", c.DebugLog,
	)
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	return "****"
}
