// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from an
// optional YAML file and environment variables. It provides a centralized
// Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Env      string `mapstructure:"env"` // "development", "production", "testing"
	LogLevel string `mapstructure:"log_level"`

	// PostgreSQL connection
	DBHost     string `mapstructure:"db_host"`
	DBPort     string `mapstructure:"db_port"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name"`

	// Valkey (Redis-compatible cache)
	ValkeyHost     string `mapstructure:"valkey_host"`
	ValkeyPort     string `mapstructure:"valkey_port"`
	ValkeyPassword string `mapstructure:"valkey_password"`

	// Stats response cache and write rate limiting, both backed by Valkey.
	CacheEnabled      bool          `mapstructure:"cache_enabled"`
	StatsCacheTTL     time.Duration `mapstructure:"stats_cache_ttl"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`

	// TrustActorHeader honours X-Actor-ID for case attribution. Only enable
	// behind a proxy that authenticates callers.
	TrustActorHeader bool `mapstructure:"trust_actor_header"`

	// TrustProxyHeaders keys rate limiting on X-Forwarded-For/X-Real-IP
	// instead of the peer address. Only enable behind a proxy that sets them.
	TrustProxyHeaders bool `mapstructure:"trust_proxy_headers"`

	// NotesRetention is the default age for clear-old-notes.
	NotesRetention time.Duration `mapstructure:"notes_retention"`
}

// envNames maps config keys to the environment variables that set them.
var envNames = map[string]string{
	"host":                "APP_HOST",
	"port":                "APP_PORT",
	"env":                 "APP_ENV",
	"log_level":           "LOG_LEVEL",
	"db_host":             "POSTGRES_HOST",
	"db_port":             "POSTGRES_PORT",
	"db_user":             "POSTGRES_USER",
	"db_password":         "POSTGRES_PASSWORD",
	"db_name":             "POSTGRES_DB",
	"valkey_host":         "VALKEY_HOST",
	"valkey_port":         "VALKEY_PORT",
	"valkey_password":     "VALKEY_PASSWORD",
	"cache_enabled":       "CACHE_ENABLED",
	"stats_cache_ttl":     "STATS_CACHE_TTL",
	"rate_limit_requests": "RATE_LIMIT_REQUESTS",
	"rate_limit_window":   "RATE_LIMIT_WINDOW",
	"trust_actor_header":  "TRUST_ACTOR_HEADER",
	"trust_proxy_headers": "TRUST_PROXY_HEADERS",
	"notes_retention":     "NOTES_RETENTION",
}

// Load reads configuration from configPath (if non-empty) and the
// environment, applying defaults for development where appropriate.
// Environment variables take precedence over the file. Returns an error if
// critical values are missing in production mode.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "casetracker")
	v.SetDefault("db_password", "changeme")
	v.SetDefault("db_name", "casetracker")
	v.SetDefault("valkey_host", "localhost")
	v.SetDefault("valkey_port", "6379")
	v.SetDefault("valkey_password", "")
	v.SetDefault("cache_enabled", true)
	v.SetDefault("stats_cache_ttl", "1m")
	v.SetDefault("rate_limit_requests", 120)
	v.SetDefault("rate_limit_window", "1m")
	v.SetDefault("trust_actor_header", false)
	v.SetDefault("trust_proxy_headers", false)
	v.SetDefault("notes_retention", "2160h")

	for key, env := range envNames {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Env == "production" && c.DBPassword == "changeme" {
		return errors.New("POSTGRES_PASSWORD must be set in production")
	}
	if c.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative, got %d", c.RateLimitRequests)
	}
	if c.RateLimitRequests > 0 && c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	if c.NotesRetention <= 0 {
		return errors.New("NOTES_RETENTION must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
