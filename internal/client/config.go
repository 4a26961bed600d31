package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the connection and breaker settings.
type Config struct {
	BaseURL string        `mapstructure:"api_url" validate:"required,url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`

	// BreakerTimeout is how long the breaker stays open before letting a
	// probe request through.
	BreakerTimeout time.Duration `mapstructure:"breaker_timeout" validate:"gt=0"`
	// MaxFailures consecutive failures open the breaker.
	MaxFailures uint32 `mapstructure:"max_failures" validate:"gt=0"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:8080",
		Timeout:        10 * time.Second,
		BreakerTimeout: 5 * time.Second,
		MaxFailures:    3,
	}
}

// Validate checks the config and trims a trailing slash off BaseURL.
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid client config: %w", err)
	}
	return nil
}
