// Package config loads and validates application configuration using viper.
// Values come from defaults, an optional config.yaml, an optional .env file
// and TASKHUB_-prefixed environment variables.
package config
