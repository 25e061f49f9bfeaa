// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package config

import (
	"fmt"
	"strings"
)

const minJWTSecretLength = 32

// Validate checks the assembled configuration for values the service
// cannot start with. It collects every problem instead of stopping at
// the first.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range [1, 65535]", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		problems = append(problems, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		problems = append(problems, "server.write_timeout must be positive")
	}

	if _, err := c.Rotation.LaunchTime(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Rotation.CycleLength < 1 {
		problems = append(problems, fmt.Sprintf("rotation.cycle_length must be positive, got %d", c.Rotation.CycleLength))
	}

	switch c.Bank.Backend {
	case "fs", "badger":
	default:
		problems = append(problems, fmt.Sprintf("bank.backend %q not one of fs, badger", c.Bank.Backend))
	}
	if c.Bank.Path == "" {
		problems = append(problems, "bank.path is required")
	}

	switch c.Audit.Backend {
	case "memory":
	case "duckdb":
		if c.Audit.Path == "" {
			problems = append(problems, "audit.path is required for the duckdb backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("audit.backend %q not one of memory, duckdb", c.Audit.Backend))
	}

	if c.Backup.Dir == "" {
		problems = append(problems, "backup.dir is required")
	}
	if c.Backup.Scheduled && c.Backup.Interval <= 0 {
		problems = append(problems, "backup.interval must be positive when the scheduler is enabled")
	}

	if c.Injection.RatePerHour < 0 {
		problems = append(problems, "injection.rate_per_hour must not be negative")
	}

	if c.Security.AuthEnabled {
		if c.Security.JWTSecret == "" && c.Security.AdminTokenHash == "" {
			problems = append(problems, "security.jwt_secret or security.admin_token_hash is required when auth is enabled")
		}
		if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < minJWTSecretLength {
			problems = append(problems, fmt.Sprintf("security.jwt_secret must be at least %d bytes", minJWTSecretLength))
		}
	}
	if c.Security.RateLimit < 0 {
		problems = append(problems, "security.rate_limit must not be negative")
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q not recognized", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q not one of json, console", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
