package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TASKHUB_SERVER_PORT.
const EnvPrefix = "TASKHUB"

var defaults = map[string]any{
	"server.port":                         8080,
	"server.log_level":                    "info",
	"server.shutdown_timeout":             10 * time.Second,
	"database.max_open_conns":             10,
	"database.max_idle_conns":             5,
	"database.conn_max_lifetime":          5 * time.Minute,
	"auth.token_lifetime_minutes":         60,
	"auth.refresh_token_lifetime_minutes": 10080,
	"auth.bcrypt_cost":                    10,
}

// keys without defaults that can still be set from the environment.
var envOnlyKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"auth.bootstrap_admin_email",
}

// Load reads configuration from, in increasing precedence: defaults, an
// optional config.yaml in the working directory, an optional .env file, and
// TASKHUB_* environment variables. The result is validated.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with an explicit directory for config.yaml and .env.
func LoadFrom(dir string) (*Config, error) {
	// .env never overrides variables that are already set.
	if err := godotenv.Load(dir + "/.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &cfg, nil
}
