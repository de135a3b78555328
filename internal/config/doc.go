// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

// Package config loads and validates Echotrace configuration.
//
// Configuration is layered with koanf: built-in defaults, then an
// optional YAML config file, then environment variables. Environment
// variables always win, which keeps container deployments simple
// (DATABASE_PATH, HTTP_PORT and friends) while still allowing a full
// config.yaml for everything else.
package config
