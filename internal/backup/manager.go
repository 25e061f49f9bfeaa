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
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/dailypuzzlepost/puzzlebank/internal/bank"
	"github.com/dailypuzzlepost/puzzlebank/internal/logging"
	"github.com/dailypuzzlepost/puzzlebank/internal/models"
)

// Manager creates and restores bank snapshots. All metadata operations
// are serialized by an internal mutex; snapshot files themselves are
// written once and never modified.
type Manager struct {
	dir    string
	store  bank.Store
	cycles map[models.PuzzleType]int
	pub    message.Publisher

	metadataFile string
	mu           sync.Mutex
	metadata     *metadataStore
}

// metadataStore is the persisted content of metadata.json.
type metadataStore struct {
	Snapshots []*Snapshot `json:"snapshots"`
}

// NewManager creates a backup manager writing snapshots under dir.
// cycles maps each puzzle type to its cycle length (bank size). pub
// receives a SlotUpdated event per slot a restore overwrites; nil
// disables publication.
func NewManager(dir string, store bank.Store, cycles map[models.PuzzleType]int, pub message.Publisher) (*Manager, error) {
	if dir == "" {
		return nil, fmt.Errorf("backup directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup dir %s: %w", dir, err)
	}

	m := &Manager{
		dir:          dir,
		store:        store,
		cycles:       cycles,
		pub:          pub,
		metadataFile: filepath.Join(dir, "metadata.json"),
		metadata:     &metadataStore{Snapshots: []*Snapshot{}},
	}
	if err := m.loadMetadata(); err != nil {
		logging.Warn().Err(err).Msg("backup metadata unreadable, starting empty")
		m.metadata = &metadataStore{Snapshots: []*Snapshot{}}
	}
	return m, nil
}

// loadMetadata reads metadata.json if present.
func (m *Manager) loadMetadata() error {
	data, err := os.ReadFile(m.metadataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, m.metadata)
}

// saveMetadata persists the metadata store (must be called with mu held).
func (m *Manager) saveMetadata() error {
	data, err := json.MarshalIndent(m.metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup metadata: %w", err)
	}
	tmp := m.metadataFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing backup metadata: %w", err)
	}
	return os.Rename(tmp, m.metadataFile)
}

// cycleLength returns the configured bank size for a puzzle type.
func (m *Manager) cycleLength(pt models.PuzzleType) int {
	if n, ok := m.cycles[pt]; ok {
		return n
	}
	return 30
}

// SnapshotBank snapshots the entire bank for one puzzle type.
func (m *Manager) SnapshotBank(ctx context.Context, pt models.PuzzleType, snapType SnapshotType, description string) (*Snapshot, error) {
	records, err := m.store.ListAll(ctx, pt, m.cycleLength(pt))
	if err != nil {
		return nil, fmt.Errorf("collecting %s bank for snapshot: %w", pt, err)
	}
	return m.writeSnapshot(pt, ScopeFullBank, 0, snapType, description, records)
}

// SnapshotSlot snapshots a single slot. An unseeded slot yields an empty
// snapshot (record count zero) rather than an error, so pre-injection
// snapshots of fresh banks still leave an audit trail.
func (m *Manager) SnapshotSlot(ctx context.Context, pt models.PuzzleType, slotID int, snapType SnapshotType, description string) (*Snapshot, error) {
	var records []*models.PuzzleRecord
	rec, err := m.store.Get(ctx, pt, slotID)
	switch {
	case err == nil:
		records = append(records, rec)
	case bank.IsNotFound(err):
		// empty slot, snapshot records nothing
	default:
		return nil, fmt.Errorf("reading %s slot %d for snapshot: %w", pt, slotID, err)
	}
	return m.writeSnapshot(pt, ScopeSingleSlot, slotID, snapType, description, records)
}

// writeSnapshot serializes, compresses, checksums, and registers one
// snapshot.
func (m *Manager) writeSnapshot(pt models.PuzzleType, scope Scope, slotID int, snapType SnapshotType, description string, records []*models.PuzzleRecord) (*Snapshot, error) {
	now := time.Now().UTC()
	id := uuid.New().String()

	payload := snapshotPayload{
		SnapshotID:  id,
		CreatedAt:   now,
		BackupType:  snapType,
		PuzzleType:  pt,
		Scope:       scope,
		Description: description,
		CycleLength: m.cycleLength(pt),
		RecordCount: len(records),
		Records:     records,
	}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(raw); err != nil {
		return nil, fmt.Errorf("compressing snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("compressing snapshot: %w", err)
	}
	compressed := buf.Bytes()

	sum := sha256.Sum256(compressed)
	name := fmt.Sprintf("%s_%s_%s_%s.json.gz", pt, scope, now.Format("20060102_150405"), id[:8])
	path := filepath.Join(m.dir, name)

	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		return nil, fmt.Errorf("writing snapshot file: %w", err)
	}

	snap := &Snapshot{
		ID:           id,
		PuzzleType:   pt,
		Scope:        scope,
		Type:         snapType,
		CreatedAt:    now,
		Description:  description,
		RecordCount:  len(records),
		SlotID:       slotID,
		FilePath:     path,
		FileSize:     int64(len(compressed)),
		Checksum:     hex.EncodeToString(sum[:]),
		IsRestorable: scope == ScopeFullBank,
	}

	m.mu.Lock()
	m.metadata.Snapshots = append(m.metadata.Snapshots, snap)
	err = m.saveMetadata()
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("component", "backup").
		Str("snapshot_id", id).
		Str("puzzle_type", string(pt)).
		Str("scope", string(scope)).
		Int("record_count", len(records)).
		Msg("snapshot created")
	return snap, nil
}

// Get returns snapshot metadata by ID.
func (m *Manager) Get(id string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.metadata.Snapshots {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
}

// List returns snapshot metadata, newest first, optionally filtered by
// puzzle type.
func (m *Manager) List(pt models.PuzzleType, limit int) []*Snapshot {
	if limit <= 0 {
		limit = 100
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Snapshot, 0, limit)
	for _, s := range m.metadata.Snapshots {
		if pt != "" && s.PuzzleType != pt {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
