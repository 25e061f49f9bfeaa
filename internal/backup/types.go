// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

// Package backup snapshots puzzle banks to durable storage and restores
// them.
//
// A snapshot is a gzip-compressed JSON document holding either a full
// bank or a single slot, with a SHA-256 checksum and metadata recorded
// in a metadata.json sidecar next to the snapshot files. Snapshots are
// immutable once written.
//
// Restore is a full overwrite of every slot present in the snapshot,
// not a merge, and is gated on the snapshot's is_restorable flag and a
// checksum match.
package backup

import (
	"errors"
	"time"

	"github.com/dailypuzzlepost/puzzlebank/internal/models"
)

// SnapshotType indicates what initiated a snapshot.
type SnapshotType string

const (
	TypeAutomatic    SnapshotType = "automatic"
	TypeManual       SnapshotType = "manual"
	TypePreInjection SnapshotType = "pre_injection"
	TypePreRestore   SnapshotType = "pre_restore"
)

// Valid reports whether t is a known snapshot type.
func (t SnapshotType) Valid() bool {
	switch t {
	case TypeAutomatic, TypeManual, TypePreInjection, TypePreRestore:
		return true
	}
	return false
}

// Scope indicates how much of a bank a snapshot covers.
type Scope string

const (
	ScopeFullBank   Scope = "full_bank"
	ScopeSingleSlot Scope = "single_slot"
)

// Snapshot is the metadata for one snapshot file.
type Snapshot struct {
	ID           string            `json:"id"`
	PuzzleType   models.PuzzleType `json:"puzzle_type"`
	Scope        Scope             `json:"scope"`
	Type         SnapshotType      `json:"backup_type"`
	CreatedAt    time.Time         `json:"created_at"`
	Description  string            `json:"description,omitempty"`
	RecordCount  int               `json:"record_count"`
	SlotID       int               `json:"slot_id,omitempty"`
	FilePath     string            `json:"file_path"`
	FileSize     int64             `json:"file_size"`
	Checksum     string            `json:"checksum"`
	IsRestorable bool              `json:"is_restorable"`
}

// snapshotPayload is the on-disk document inside a snapshot file.
type snapshotPayload struct {
	SnapshotID  string                 `json:"snapshot_id"`
	CreatedAt   time.Time              `json:"created_at"`
	BackupType  SnapshotType           `json:"backup_type"`
	PuzzleType  models.PuzzleType      `json:"puzzle_type"`
	Scope       Scope                  `json:"scope"`
	Description string                 `json:"description,omitempty"`
	CycleLength int                    `json:"cycle_length"`
	RecordCount int                    `json:"record_count"`
	Records     []*models.PuzzleRecord `json:"records"`
}

// Sentinel errors for snapshot lookup and restore.
var (
	// ErrSnapshotNotFound indicates no snapshot exists with the given ID.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrNotRestorable indicates the snapshot is not eligible for restore
	// (single-slot snapshots are audit artifacts, not restore points).
	ErrNotRestorable = errors.New("snapshot is not restorable")

	// ErrChecksumMismatch indicates the snapshot file is corrupted.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")
)
