// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv sets every variable Load reads to empty, which Load treats the
// same as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envNames {
		t.Setenv(env, "")
	}
}

// TestLoad_Defaults verifies that Load returns sensible development defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	check := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}

	check("Host", cfg.Host, "0.0.0.0")
	check("Port", cfg.Port, "8080")
	check("Env", cfg.Env, "development")
	check("LogLevel", cfg.LogLevel, "info")
	check("DBHost", cfg.DBHost, "localhost")
	check("DBPort", cfg.DBPort, "5432")
	check("DBUser", cfg.DBUser, "casetracker")
	check("DBPassword", cfg.DBPassword, "changeme")
	check("DBName", cfg.DBName, "casetracker")
	check("ValkeyHost", cfg.ValkeyHost, "localhost")
	check("ValkeyPort", cfg.ValkeyPort, "6379")
	check("ValkeyPassword", cfg.ValkeyPassword, "")

	if !cfg.CacheEnabled {
		t.Error("CacheEnabled should default to true")
	}
	if cfg.StatsCacheTTL != time.Minute {
		t.Errorf("StatsCacheTTL = %v, want 1m", cfg.StatsCacheTTL)
	}
	if cfg.RateLimitRequests != 120 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("rate limit = %d per %v, want 120 per 1m", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	if cfg.TrustActorHeader {
		t.Error("TrustActorHeader should default to false")
	}
	if cfg.TrustProxyHeaders {
		t.Error("TrustProxyHeaders should default to false")
	}
	if cfg.NotesRetention != 90*24*time.Hour {
		t.Errorf("NotesRetention = %v, want 2160h", cfg.NotesRetention)
	}
}

// TestLoad_EnvOverrides verifies that every environment variable properly
// overrides the default value.
func TestLoad_EnvOverrides(t *testing.T) {
	overrides := map[string]string{
		"APP_HOST":            "127.0.0.1",
		"APP_PORT":            "9090",
		"APP_ENV":             "testing",
		"LOG_LEVEL":           "debug",
		"POSTGRES_HOST":       "db.example.com",
		"POSTGRES_PORT":       "5433",
		"POSTGRES_USER":       "testuser",
		"POSTGRES_PASSWORD":   "testpass",
		"POSTGRES_DB":         "testdb",
		"VALKEY_HOST":         "cache.example.com",
		"VALKEY_PORT":         "6380",
		"VALKEY_PASSWORD":     "cachepass",
		"CACHE_ENABLED":       "false",
		"STATS_CACHE_TTL":     "30s",
		"RATE_LIMIT_REQUESTS": "10",
		"RATE_LIMIT_WINDOW":   "5s",
		"TRUST_ACTOR_HEADER":  "true",
		"TRUST_PROXY_HEADERS": "true",
		"NOTES_RETENTION":     "720h",
	}
	for key, val := range overrides {
		t.Setenv(key, val)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	check := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}

	check("Host", cfg.Host, "127.0.0.1")
	check("Port", cfg.Port, "9090")
	check("Env", cfg.Env, "testing")
	check("LogLevel", cfg.LogLevel, "debug")
	check("DBHost", cfg.DBHost, "db.example.com")
	check("DBPort", cfg.DBPort, "5433")
	check("DBUser", cfg.DBUser, "testuser")
	check("DBPassword", cfg.DBPassword, "testpass")
	check("DBName", cfg.DBName, "testdb")
	check("ValkeyHost", cfg.ValkeyHost, "cache.example.com")
	check("ValkeyPort", cfg.ValkeyPort, "6380")
	check("ValkeyPassword", cfg.ValkeyPassword, "cachepass")

	if cfg.CacheEnabled {
		t.Error("CacheEnabled should be false")
	}
	if cfg.StatsCacheTTL != 30*time.Second {
		t.Errorf("StatsCacheTTL = %v, want 30s", cfg.StatsCacheTTL)
	}
	if cfg.RateLimitRequests != 10 || cfg.RateLimitWindow != 5*time.Second {
		t.Errorf("rate limit = %d per %v, want 10 per 5s", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	if !cfg.TrustActorHeader {
		t.Error("TrustActorHeader should be true")
	}
	if !cfg.TrustProxyHeaders {
		t.Error("TrustProxyHeaders should be true")
	}
	if cfg.NotesRetention != 720*time.Hour {
		t.Errorf("NotesRetention = %v, want 720h", cfg.NotesRetention)
	}
}

// TestLoad_File verifies that a YAML file is read and that the environment
// still wins over it.
func TestLoad_File(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "7000")

	path := filepath.Join(t.TempDir(), "casetracker.yaml")
	yaml := "port: \"6000\"\ndb_name: fromfile\nstats_cache_ttl: 2m\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) returned unexpected error: %v", path, err)
	}
	if cfg.DBName != "fromfile" {
		t.Errorf("DBName = %q, want %q", cfg.DBName, "fromfile")
	}
	if cfg.StatsCacheTTL != 2*time.Minute {
		t.Errorf("StatsCacheTTL = %v, want 2m", cfg.StatsCacheTTL)
	}
	if cfg.Port != "7000" {
		t.Errorf("Port = %q, want env value %q", cfg.Port, "7000")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() should fail when the named config file does not exist")
	}
}

// TestLoad_ProductionRequiresPassword verifies that production mode rejects
// the default "changeme" password and accepts a real one.
func TestLoad_ProductionRequiresPassword(t *testing.T) {
	t.Run("rejects default password", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")

		_, err := Load("")
		if err == nil {
			t.Fatal("Load() should return an error when production uses default password")
		}
		if !strings.Contains(err.Error(), "POSTGRES_PASSWORD") {
			t.Errorf("error should mention POSTGRES_PASSWORD, got: %v", err)
		}
	})

	t.Run("accepts real password", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("POSTGRES_PASSWORD", "s3cure")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if cfg.IsDev() {
			t.Error("IsDev() should be false in production")
		}
	})
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"LOG_LEVEL":           "verbose",
		"RATE_LIMIT_REQUESTS": "-1",
		"NOTES_RETENTION":     "-5h",
	}
	for env, val := range tests {
		t.Run(env, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(env, val)
			if _, err := Load(""); err == nil {
				t.Errorf("Load() should reject %s=%q", env, val)
			}
		})
	}
}

func TestDSNAndAddr(t *testing.T) {
	cfg := &Config{
		Host: "127.0.0.1", Port: "8080",
		DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5432", DBName: "cases",
	}
	if got, want := cfg.DSN(), "postgres://u:p@db:5432/cases?sslmode=disable"; got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	if got, want := cfg.Addr(), "127.0.0.1:8080"; got != want {
		t.Errorf("Addr() = %q, want %q", got, want)
	}
}
