// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package bank

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/dailypuzzlepost/puzzlebank/internal/logging"
	"github.com/dailypuzzlepost/puzzlebank/internal/models"
)

// BadgerStore persists bank records in an embedded BadgerDB. Keys are
// "bank/{puzzle_type}/{slot:02d}"; values are JSON-encoded records.
// Badger transactions give Put the required atomicity for free.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database at dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil) // badger's own logger is noisy; we log open/close ourselves

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger bank at %s: %w", dir, err)
	}

	logging.Info().Str("component", "bank").Str("path", dir).Msg("badger bank store opened")
	return &BadgerStore{db: db}, nil
}

func badgerKey(pt models.PuzzleType, slotID int) []byte {
	return []byte(fmt.Sprintf("bank/%s/%02d", pt, slotID))
}

// Get returns the record in a slot, or ErrNotFound.
func (s *BadgerStore) Get(ctx context.Context, pt models.PuzzleType, slotID int) (*models.PuzzleRecord, error) {
	if err := checkSlot(slotID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec models.PuzzleRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(pt, slotID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s slot %d", ErrNotFound, pt, slotID)
		}
		return nil, fmt.Errorf("reading %s slot %d: %w", pt, slotID, err)
	}
	return &rec, nil
}

// Put overwrites a slot in a single transaction.
func (s *BadgerStore) Put(ctx context.Context, pt models.PuzzleType, slotID int, rec *models.PuzzleRecord) error {
	if err := checkSlot(slotID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding %s slot %d: %w", pt, slotID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(pt, slotID), data)
	})
	if err != nil {
		return fmt.Errorf("writing %s slot %d: %w", pt, slotID, err)
	}
	return nil
}

// ListAll returns seeded records for slots 1..cycleLength in slot order.
// The bank is small (cycle length 30), so a per-slot point read is
// simpler than a prefix scan and still bounded.
func (s *BadgerStore) ListAll(ctx context.Context, pt models.PuzzleType, cycleLength int) ([]*models.PuzzleRecord, error) {
	records := make([]*models.PuzzleRecord, 0, cycleLength)
	for slot := 1; slot <= cycleLength; slot++ {
		rec, err := s.Get(ctx, pt, slot)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Ping verifies the database is open.
func (s *BadgerStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return fmt.Errorf("badger bank store is closed")
	}
	return nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
