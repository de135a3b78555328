// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AllowedFingerprintFields lists every payload field that may take part
// in the duplicate fingerprint. Names match the stored columns.
var AllowedFingerprintFields = map[string]bool{
	"user_id":    true,
	"media_url":  true,
	"media_type": true,
	"space_name": true,
	"tweet_url":  true,
	"city":       true,
	"region":     true,
	"country":    true,
}

// Validate checks that required configuration is present and valid.
// It fails fast: the process must not start with a broken config.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateWebhook(); err != nil {
		return err
	}

	if err := c.validateSweep(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DATABASE_THREADS must be >= 0 (0 means auto)")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("SERVER_ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateWebhook() error {
	if len(c.Webhook.FingerprintFields) == 0 {
		return fmt.Errorf("WEBHOOK_FINGERPRINT_FIELDS must name at least one field")
	}
	seen := make(map[string]bool, len(c.Webhook.FingerprintFields))
	for _, f := range c.Webhook.FingerprintFields {
		if !AllowedFingerprintFields[f] {
			return fmt.Errorf("WEBHOOK_FINGERPRINT_FIELDS contains unknown field %q (allowed: %s)",
				f, strings.Join(allowedFingerprintFieldNames(), ", "))
		}
		if seen[f] {
			return fmt.Errorf("WEBHOOK_FINGERPRINT_FIELDS contains %q twice", f)
		}
		seen[f] = true
	}
	if c.Webhook.MaxBodyBytes < 1024 {
		return fmt.Errorf("WEBHOOK_MAX_BODY_BYTES must be at least 1024")
	}
	if c.Webhook.MaxBatchItems < 1 {
		return fmt.Errorf("WEBHOOK_MAX_BATCH_ITEMS must be at least 1")
	}
	return nil
}

func (c *Config) validateSweep() error {
	if !c.Sweep.Enabled {
		return nil
	}
	if c.Sweep.Interval < time.Minute {
		return fmt.Errorf("SWEEP_INTERVAL must be at least 1m, got %s", c.Sweep.Interval)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if !c.Security.RateLimitEnabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func allowedFingerprintFieldNames() []string {
	names := make([]string, 0, len(AllowedFingerprintFields))
	for name := range AllowedFingerprintFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
