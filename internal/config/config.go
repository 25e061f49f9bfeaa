// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

// Package config holds all application configuration loaded from defaults,
// an optional YAML file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every setting
//  2. Config File: optional YAML file (config.yaml) for persistent settings
//  3. Environment Variables: PUZZLEBANK_* overrides any setting
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the puzzlebank service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Rotation  RotationConfig  `koanf:"rotation"`
	Bank      BankConfig      `koanf:"bank"`
	Audit     AuditConfig     `koanf:"audit"`
	Backup    BackupConfig    `koanf:"backup"`
	Injection InjectionConfig `koanf:"injection"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds the HTTP server settings.
//
// Environment Variables:
//   - PUZZLEBANK_SERVER_HOST: bind address (default: 0.0.0.0)
//   - PUZZLEBANK_SERVER_PORT: listen port (default: 8080)
//   - PUZZLEBANK_SERVER_READ_TIMEOUT / WRITE_TIMEOUT / SHUTDOWN_TIMEOUT
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// RotationConfig pins the rotation clock. LaunchDate is the first day of
// cycle 1 and never changes once content is live; moving it re-maps every
// slot on the site.
//
// Environment Variables:
//   - PUZZLEBANK_ROTATION_LAUNCH_DATE: YYYY-MM-DD (default: 2025-08-19)
//   - PUZZLEBANK_ROTATION_CYCLE_LENGTH: slots per cycle (default: 30)
type RotationConfig struct {
	LaunchDate  string `koanf:"launch_date"`
	CycleLength int    `koanf:"cycle_length"`
}

// BankConfig selects and locates the content bank backend.
//
// Environment Variables:
//   - PUZZLEBANK_BANK_BACKEND: fs or badger (default: fs)
//   - PUZZLEBANK_BANK_PATH: storage root (default: /data/bank)
type BankConfig struct {
	Backend string `koanf:"backend"` // fs | badger
	Path    string `koanf:"path"`
}

// AuditConfig selects the injection audit log backend.
//
// Environment Variables:
//   - PUZZLEBANK_AUDIT_BACKEND: memory or duckdb (default: duckdb)
//   - PUZZLEBANK_AUDIT_PATH: DuckDB database path (default: /data/audit.duckdb)
//   - PUZZLEBANK_AUDIT_MEMORY_LIMIT: max in-memory records (default: 10000)
type AuditConfig struct {
	Backend     string `koanf:"backend"` // memory | duckdb
	Path        string `koanf:"path"`
	MemoryLimit int    `koanf:"memory_limit"`
}

// BackupConfig controls snapshot storage and the automatic schedule.
//
// Environment Variables:
//   - PUZZLEBANK_BACKUP_DIR: snapshot directory (default: /data/backups)
//   - PUZZLEBANK_BACKUP_INTERVAL: automatic snapshot interval (default: 24h)
//   - PUZZLEBANK_BACKUP_SCHEDULED: enable the scheduler (default: true)
type BackupConfig struct {
	Dir       string        `koanf:"dir"`
	Interval  time.Duration `koanf:"interval"`
	Scheduled bool          `koanf:"scheduled"`
}

// InjectionConfig throttles mutation endpoints.
//
// Environment Variables:
//   - PUZZLEBANK_INJECTION_RATE_PER_HOUR: injections per hour, 0 disables
//     the throttle (default: 30)
//   - PUZZLEBANK_INJECTION_DEFAULT_ACTOR: injected_by when the request
//     omits one (default: automation)
type InjectionConfig struct {
	RatePerHour  int    `koanf:"rate_per_hour"`
	DefaultActor string `koanf:"default_actor"`
}

// SecurityConfig holds authentication and HTTP protection settings.
// Admin endpoints accept either a bearer JWT signed with JWTSecret or a
// static token checked against AdminTokenHash (bcrypt).
//
// Environment Variables:
//   - PUZZLEBANK_SECURITY_AUTH_ENABLED: require auth on mutation endpoints
//   - PUZZLEBANK_SECURITY_JWT_SECRET: HMAC signing secret (min 32 bytes)
//   - PUZZLEBANK_SECURITY_ADMIN_TOKEN_HASH: bcrypt hash of the admin token
//   - PUZZLEBANK_SECURITY_RATE_LIMIT: requests per minute per IP (default: 120)
//   - PUZZLEBANK_SECURITY_CORS_ORIGINS: comma-separated allowed origins
type SecurityConfig struct {
	AuthEnabled    bool     `koanf:"auth_enabled"`
	JWTSecret      string   `koanf:"jwt_secret"`
	AdminTokenHash string   `koanf:"admin_token_hash"`
	RateLimit      int      `koanf:"rate_limit"`
	CORSOrigins    []string `koanf:"cors_origins"`
}

// LoggingConfig controls zerolog output.
//
// Environment Variables:
//   - PUZZLEBANK_LOGGING_LEVEL: trace|debug|info|warn|error (default: info)
//   - PUZZLEBANK_LOGGING_FORMAT: json or console (default: json)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LaunchTime parses the configured launch date.
func (r RotationConfig) LaunchTime() (time.Time, error) {
	t, err := time.Parse("2006-01-02", r.LaunchDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid rotation launch date %q: %w", r.LaunchDate, err)
	}
	return t, nil
}
