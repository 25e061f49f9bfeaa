// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Rotation.LaunchDate != "2025-08-19" {
		t.Errorf("launch date = %q", cfg.Rotation.LaunchDate)
	}
	if cfg.Rotation.CycleLength != 30 {
		t.Errorf("cycle length = %d, want 30", cfg.Rotation.CycleLength)
	}
	if cfg.Bank.Backend != "fs" {
		t.Errorf("bank backend = %q, want fs", cfg.Bank.Backend)
	}
	if cfg.Backup.Interval != 24*time.Hour {
		t.Errorf("backup interval = %v, want 24h", cfg.Backup.Interval)
	}
	if cfg.Injection.RatePerHour != 30 {
		t.Errorf("injection rate = %d, want 30", cfg.Injection.RatePerHour)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PUZZLEBANK_SERVER_PORT", "9191")
	t.Setenv("PUZZLEBANK_BANK_BACKEND", "badger")
	t.Setenv("PUZZLEBANK_BANK_PATH", "/tmp/bank")
	t.Setenv("PUZZLEBANK_ROTATION_CYCLE_LENGTH", "14")
	t.Setenv("PUZZLEBANK_SECURITY_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("server port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Bank.Backend != "badger" {
		t.Errorf("bank backend = %q, want badger", cfg.Bank.Backend)
	}
	if cfg.Rotation.CycleLength != 14 {
		t.Errorf("cycle length = %d, want 14", cfg.Rotation.CycleLength)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("cors origins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Security.CORSOrigins[i] != want[i] {
			t.Errorf("cors origin %d = %q, want %q", i, cfg.Security.CORSOrigins[i], want[i])
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 7070
rotation:
  launch_date: "2025-01-01"
logging:
  level: debug
  format: console
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("server port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Rotation.LaunchDate != "2025-01-01" {
		t.Errorf("launch date = %q", cfg.Rotation.LaunchDate)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
	// Unset keys keep their defaults.
	if cfg.Bank.Path != "/data/bank" {
		t.Errorf("bank path = %q, want default", cfg.Bank.Path)
	}
}

func TestEnvBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("PUZZLEBANK_SERVER_PORT", "6060")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 6060 {
		t.Errorf("server port = %d, want env override 6060", cfg.Server.Port)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	cfg.Rotation.LaunchDate = "August 19"
	cfg.Rotation.CycleLength = 0
	cfg.Bank.Backend = "postgres"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, fragment := range []string{"server.port", "launch date", "cycle_length", "bank.backend"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q missing %q", err.Error(), fragment)
		}
	}
}

func TestValidateAuthRequiresCredentials(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.AuthEnabled = true

	if err := cfg.Validate(); err == nil {
		t.Error("auth without credentials should fail validation")
	}

	cfg.Security.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Error("short JWT secret should fail validation")
	}

	cfg.Security.JWTSecret = strings.Repeat("s", 48)
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid auth config rejected: %v", err)
	}
}

func TestLaunchTime(t *testing.T) {
	r := RotationConfig{LaunchDate: "2025-08-19"}
	got, err := r.LaunchTime()
	if err != nil {
		t.Fatalf("LaunchTime: %v", err)
	}
	want := time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("launch time = %v, want %v", got, want)
	}
}

func TestEnvTransform(t *testing.T) {
	cases := map[string]string{
		"PUZZLEBANK_SERVER_PORT":               "server.port",
		"PUZZLEBANK_ROTATION_CYCLE_LENGTH":     "rotation.cycle_length",
		"PUZZLEBANK_SECURITY_ADMIN_TOKEN_HASH": "security.admin_token_hash",
	}
	for in, want := range cases {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
