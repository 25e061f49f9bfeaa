// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package backup

import (
	"context"
	"time"

	"github.com/dailypuzzlepost/puzzlebank/internal/logging"
	"github.com/dailypuzzlepost/puzzlebank/internal/models"
)

// Scheduler takes automatic full-bank snapshots of every puzzle type on
// a fixed interval. It implements suture.Service.
type Scheduler struct {
	manager  *Manager
	types    []models.PuzzleType
	interval time.Duration
}

// NewScheduler creates a scheduler snapshotting the given puzzle types
// every interval.
func NewScheduler(manager *Manager, types []models.PuzzleType, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{manager: manager, types: types, interval: interval}
}

// Serve runs the snapshot loop until ctx is canceled.
func (s *Scheduler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logging.Info().
		Str("component", "backup").
		Dur("interval", s.interval).
		Msg("backup scheduler started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce snapshots every configured type; one failure does not stop
// the others.
func (s *Scheduler) runOnce(ctx context.Context) {
	for _, pt := range s.types {
		if _, err := s.manager.SnapshotBank(ctx, pt, TypeAutomatic, "Scheduled automatic backup"); err != nil {
			logging.Error().
				Err(err).
				Str("puzzle_type", string(pt)).
				Msg("scheduled backup failed")
		}
	}
}

// String names the service in supervisor logs.
func (s *Scheduler) String() string {
	return "backup-scheduler"
}
