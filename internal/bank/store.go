// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

// Package bank persists the fixed-size rotating banks of puzzle records,
// one record per slot, keyed by (puzzle type, slot id).
//
// Two backends are provided:
//
//   - FSStore: one JSON file per slot, matching the historical bank layout
//     (puzzles/bank/puzzle_07.json). Writes go to a temp file in the same
//     directory and are renamed into place so readers never observe a
//     partial record.
//   - BadgerStore: records in an embedded BadgerDB, for deployments that
//     prefer a single data directory over loose files.
//
// A missing slot is a normal condition (bank not yet fully seeded) and is
// surfaced as ErrNotFound, never as a logged storage error.
package bank

import (
	"context"
	"errors"

	"github.com/dailypuzzlepost/puzzlebank/internal/models"
)

// ErrNotFound indicates the requested slot has never been seeded.
var ErrNotFound = errors.New("record not found")

// ErrInvalidSlot indicates a slot id outside [1, cycle length].
var ErrInvalidSlot = errors.New("invalid slot id")

// Store is the persistence contract for puzzle banks. Implementations
// must make Put atomic from the reader's perspective: a concurrent Get
// sees either the old record or the new one, never a torn write.
type Store interface {
	// Get returns the record in a slot, or ErrNotFound.
	Get(ctx context.Context, pt models.PuzzleType, slotID int) (*models.PuzzleRecord, error)

	// Put overwrites a slot with a full record.
	Put(ctx context.Context, pt models.PuzzleType, slotID int, rec *models.PuzzleRecord) error

	// ListAll returns the seeded records for slots 1..cycleLength in slot
	// order. Unseeded slots are omitted, not errored.
	ListAll(ctx context.Context, pt models.PuzzleType, cycleLength int) ([]*models.PuzzleRecord, error)

	// Ping verifies storage connectivity for health reporting.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// checkSlot validates a slot id against the bank bounds used by callers
// that know the cycle length; stores themselves only reject non-positive
// ids since the cycle length is engine configuration.
func checkSlot(slotID int) error {
	if slotID < 1 {
		return ErrInvalidSlot
	}
	return nil
}
