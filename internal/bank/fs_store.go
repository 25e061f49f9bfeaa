// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package bank

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/dailypuzzlepost/puzzlebank/internal/models"
)

// FSStore persists each slot as a pretty-printed JSON file under
// {root}/{puzzle_type}/bank/{prefix}_{slot:02d}.json.
type FSStore struct {
	root string

	// slotMu serializes writers per (type, slot) so interleaved Puts
	// cannot race on the same temp file.
	slotMu sync.Map // string -> *sync.Mutex
}

// NewFSStore creates a file-backed bank store rooted at dir. The root is
// created if missing; per-type subdirectories are created lazily on
// first write.
func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("bank root directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating bank root %s: %w", dir, err)
	}
	return &FSStore{root: dir}, nil
}

// slotPath returns the bank file path for one slot.
func (s *FSStore) slotPath(pt models.PuzzleType, slotID int) string {
	name := fmt.Sprintf("%s_%02d.json", pt.Prefix(), slotID)
	return filepath.Join(s.root, string(pt), "bank", name)
}

// lockSlot returns the mutex guarding one (type, slot) pair.
func (s *FSStore) lockSlot(pt models.PuzzleType, slotID int) *sync.Mutex {
	key := fmt.Sprintf("%s/%d", pt, slotID)
	mu, _ := s.slotMu.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Get returns the record in a slot, or ErrNotFound if the slot file does
// not exist.
func (s *FSStore) Get(ctx context.Context, pt models.PuzzleType, slotID int) (*models.PuzzleRecord, error) {
	if err := checkSlot(slotID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.slotPath(pt, slotID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s slot %d", ErrNotFound, pt, slotID)
		}
		return nil, fmt.Errorf("reading %s slot %d: %w", pt, slotID, err)
	}

	var rec models.PuzzleRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding %s slot %d: %w", pt, slotID, err)
	}
	return &rec, nil
}

// Put atomically replaces the record in a slot: the record is written to
// a temp file in the bank directory and renamed over the destination.
func (s *FSStore) Put(ctx context.Context, pt models.PuzzleType, slotID int, rec *models.PuzzleRecord) error {
	if err := checkSlot(slotID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	mu := s.lockSlot(pt, slotID)
	mu.Lock()
	defer mu.Unlock()

	path := s.slotPath(pt, slotID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating bank dir for %s: %w", pt, err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s slot %d: %w", pt, slotID, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".slot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s slot %d: %w", pt, slotID, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s slot %d: %w", pt, slotID, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing %s slot %d: %w", pt, slotID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file for %s slot %d: %w", pt, slotID, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("committing %s slot %d: %w", pt, slotID, err)
	}
	return nil
}

// ListAll returns seeded records for slots 1..cycleLength in slot order.
func (s *FSStore) ListAll(ctx context.Context, pt models.PuzzleType, cycleLength int) ([]*models.PuzzleRecord, error) {
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

// Ping verifies the bank root is accessible.
func (s *FSStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(s.root); err != nil {
		return fmt.Errorf("bank root %s: %w", s.root, err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (s *FSStore) Close() error {
	return nil
}

// IsNotFound reports whether err indicates an unseeded slot.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
