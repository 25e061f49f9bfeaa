// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

// Package main is the entry point for the puzzlebank server.
//
// Puzzlebank schedules daily puzzle content for the Daily Puzzle Post:
// each puzzle type rotates through a fixed bank of slots on a 30-day
// cycle, and admin endpoints inject new content into the bank with
// validation, pre-injection backups, and a full audit trail.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered load (defaults, config.yaml, PUZZLEBANK_* env)
//  2. Logging: zerolog, JSON or console format
//  3. Bank Store: filesystem (one JSON file per slot) or BadgerDB
//  4. Audit Store: DuckDB or in-memory, wrapped in a circuit breaker
//  5. Backup Manager: gzip snapshots with checksums and restore support
//  6. Rotation Clocks: one per puzzle type, anchored at the launch date
//  7. Injection Engine: validation, slot selection, commit, audit
//  8. Serving Facade: date resolution with an event-invalidated pointer cache
//  9. HTTP server and backup scheduler under a suture supervisor tree
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the server stops
// accepting connections, in-flight requests drain within the configured
// timeout, then the stores close in reverse initialization order.
//
// # Example Usage
//
// Development with defaults (filesystem bank, DuckDB audit, no auth):
//
//	export PUZZLEBANK_BANK_PATH=./data/bank
//	export PUZZLEBANK_AUDIT_PATH=./data/audit.duckdb
//	export PUZZLEBANK_BACKUP_DIR=./data/backups
//	./puzzlebank
//
// Production with auth and BadgerDB:
//
//	export PUZZLEBANK_BANK_BACKEND=badger
//	export PUZZLEBANK_SECURITY_AUTH_ENABLED=true
//	export PUZZLEBANK_SECURITY_JWT_SECRET=$(openssl rand -base64 48)
//	./puzzlebank
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dailypuzzlepost/puzzlebank/internal/api"
	"github.com/dailypuzzlepost/puzzlebank/internal/audit"
	"github.com/dailypuzzlepost/puzzlebank/internal/backup"
	"github.com/dailypuzzlepost/puzzlebank/internal/bank"
	"github.com/dailypuzzlepost/puzzlebank/internal/config"
	"github.com/dailypuzzlepost/puzzlebank/internal/events"
	"github.com/dailypuzzlepost/puzzlebank/internal/injection"
	"github.com/dailypuzzlepost/puzzlebank/internal/logging"
	"github.com/dailypuzzlepost/puzzlebank/internal/middleware"
	"github.com/dailypuzzlepost/puzzlebank/internal/models"
	"github.com/dailypuzzlepost/puzzlebank/internal/rotation"
	"github.com/dailypuzzlepost/puzzlebank/internal/serving"
	"github.com/dailypuzzlepost/puzzlebank/internal/supervisor"
	"github.com/dailypuzzlepost/puzzlebank/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.Info().
		Str("bank_backend", cfg.Bank.Backend).
		Str("audit_backend", cfg.Audit.Backend).
		Str("launch_date", cfg.Rotation.LaunchDate).
		Int("cycle_length", cfg.Rotation.CycleLength).
		Msg("Starting puzzlebank")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bank store.
	var store bank.Store
	switch cfg.Bank.Backend {
	case "badger":
		store, err = bank.NewBadgerStore(cfg.Bank.Path)
	default:
		store, err = bank.NewFSStore(cfg.Bank.Path)
	}
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Bank.Path).Msg("Failed to open bank store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Closing bank store")
		}
	}()

	// Audit store behind a circuit breaker so a sick backend cannot
	// stall injections.
	var auditBackend audit.Store
	switch cfg.Audit.Backend {
	case "memory":
		auditBackend = audit.NewMemoryStore(cfg.Audit.MemoryLimit)
	default:
		duck, err := audit.OpenDuckDB(ctx, cfg.Audit.Path)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Audit.Path).Msg("Failed to open audit database")
		}
		auditBackend = duck
	}
	auditLog := audit.NewBreakerStore(auditBackend)
	defer func() {
		if err := auditLog.Close(); err != nil {
			logging.Error().Err(err).Msg("Closing audit store")
		}
	}()

	// Rotation clocks, one per type; all types share one schedule.
	launch, err := cfg.Rotation.LaunchTime()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid launch date")
	}
	clocks := make(map[models.PuzzleType]*rotation.Clock, len(models.AllPuzzleTypes))
	cycles := make(map[models.PuzzleType]int, len(models.AllPuzzleTypes))
	for _, pt := range models.AllPuzzleTypes {
		clock, err := rotation.New(launch, cfg.Rotation.CycleLength)
		if err != nil {
			logging.Fatal().Err(err).Msg("Invalid rotation configuration")
		}
		clocks[pt] = clock
		cycles[pt] = cfg.Rotation.CycleLength
	}

	pubsub := events.NewPubSub()
	defer func() {
		if err := pubsub.Close(); err != nil {
			logging.Error().Err(err).Msg("Closing pub/sub")
		}
	}()

	backups, err := backup.NewManager(cfg.Backup.Dir, store, cycles, pubsub)
	if err != nil {
		logging.Fatal().Err(err).Str("dir", cfg.Backup.Dir).Msg("Failed to initialize backup manager")
	}

	engine, err := injection.NewEngine(injection.Config{
		Store:             store,
		Backups:           backups,
		AuditLog:          auditLog,
		Publisher:         pubsub,
		Clocks:            clocks,
		InjectionsPerHour: cfg.Injection.RatePerHour,
		DefaultActor:      cfg.Injection.DefaultActor,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build injection engine")
	}

	facade, err := serving.NewFacade(store, clocks, nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build serving facade")
	}

	health := serving.NewHealthChecker(store, auditLog, cycles)
	auth := middleware.NewAuthenticator(cfg.Security)

	router := api.NewRouter(facade, engine, backups, auditLog, health, auth, cfg.Security)
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(slog.Default(), supervisor.DefaultTreeConfig())
	tree.AddServingService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddServingService(services.NewSlotUpdateConsumerService(facade, pubsub))
	if cfg.Backup.Scheduled {
		tree.AddMaintenanceService(backup.NewScheduler(backups, models.AllPuzzleTypes, cfg.Backup.Interval))
	}

	logging.Info().Str("addr", server.Addr).Msg("Serving")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor stopped with error")
		os.Exit(1)
	}
	logging.Info().Msg("Shutdown complete")
}
