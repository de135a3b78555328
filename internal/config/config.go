// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for Echotrace.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Webhook  WebhookConfig  `koanf:"webhook"`
	Sweep    SweepConfig    `koanf:"sweep"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Required; there is no default
	// because silently creating a database in the working directory
	// hides deployment mistakes. Use ":memory:" for tests.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// WebhookConfig controls ingest behaviour.
type WebhookConfig struct {
	// FingerprintFields names the payload fields combined into the
	// duplicate-detection fingerprint. Field names match the webhook
	// storage columns, e.g. "media_url" or "tweet_url".
	FingerprintFields []string `koanf:"fingerprint_fields"`
	MaxBodyBytes      int64    `koanf:"max_body_bytes"`
	MaxBatchItems     int      `koanf:"max_batch_items"`
}

// SweepConfig controls the periodic deduplication sweep.
type SweepConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Interval   time.Duration `koanf:"interval"`
	RunOnStart bool          `koanf:"run_on_start"`
}

// APIConfig holds read-side paging limits.
type APIConfig struct {
	FeedPageSize   int `koanf:"feed_page_size"`
	ActiveUserDays int `koanf:"active_user_days"`
}

// SecurityConfig holds CORS and rate-limit settings.
type SecurityConfig struct {
	CORSOrigins      []string      `koanf:"cors_origins"`
	RateLimitEnabled bool          `koanf:"rate_limit_enabled"`
	RateLimitReqs    int           `koanf:"rate_limit_reqs"`
	RateLimitWindow  time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}
