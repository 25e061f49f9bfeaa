// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package backup

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/dailypuzzlepost/puzzlebank/internal/events"
	"github.com/dailypuzzlepost/puzzlebank/internal/logging"
)

// RestoreResult reports what a restore wrote back.
type RestoreResult struct {
	SnapshotID      string `json:"snapshot_id"`
	RecordsRestored int    `json:"records_restored"`
}

// Restore writes every record in a restorable snapshot back into the
// bank, overwriting current slot contents. Slots not present in the
// snapshot are left untouched (records are never deleted, only
// superseded). A pre-restore snapshot of the current bank is taken
// first so the restore itself is reversible.
func (m *Manager) Restore(ctx context.Context, snapshotID string) (*RestoreResult, error) {
	snap, err := m.Get(snapshotID)
	if err != nil {
		return nil, err
	}
	if !snap.IsRestorable {
		return nil, fmt.Errorf("%w: %s", ErrNotRestorable, snapshotID)
	}

	payload, err := m.readSnapshot(snap)
	if err != nil {
		return nil, err
	}

	if _, err := m.SnapshotBank(ctx, snap.PuzzleType, TypePreRestore,
		fmt.Sprintf("Before restoring snapshot %s", snapshotID)); err != nil {
		logging.Warn().Err(err).Str("snapshot_id", snapshotID).Msg("pre-restore snapshot failed, continuing")
	}

	restored := 0
	for _, rec := range payload.Records {
		if err := m.store.Put(ctx, snap.PuzzleType, rec.SlotID, rec); err != nil {
			return nil, fmt.Errorf("restoring %s slot %d: %w", snap.PuzzleType, rec.SlotID, err)
		}
		restored++

		// The serving facade drops its cached pointer on this event, so
		// restored content is visible on the next read.
		if m.pub != nil {
			ev := events.SlotUpdated{
				PuzzleType: snap.PuzzleType,
				SlotID:     rec.SlotID,
				ContentID:  rec.ContentID,
				OccurredAt: time.Now().UTC(),
			}
			if err := events.PublishSlotUpdated(m.pub, ev); err != nil {
				logging.Warn().Err(err).
					Str("snapshot_id", snapshotID).
					Int("slot_id", rec.SlotID).
					Msg("slot-updated event publish failed")
			}
		}
	}

	logging.Info().
		Str("component", "backup").
		Str("snapshot_id", snapshotID).
		Int("records_restored", restored).
		Msg("bank restored from snapshot")
	return &RestoreResult{SnapshotID: snapshotID, RecordsRestored: restored}, nil
}

// readSnapshot loads, checksums, and decodes one snapshot file.
func (m *Manager) readSnapshot(snap *Snapshot) (*snapshotPayload, error) {
	compressed, err := os.ReadFile(snap.FilePath)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file %s: %w", snap.FilePath, err)
	}

	sum := sha256.Sum256(compressed)
	if hex.EncodeToString(sum[:]) != snap.Checksum {
		return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, snap.ID)
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot %s: %w", snap.ID, err)
	}
	defer gz.Close()

	raw, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot %s: %w", snap.ID, err)
	}

	var payload snapshotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", snap.ID, err)
	}
	return &payload, nil
}
