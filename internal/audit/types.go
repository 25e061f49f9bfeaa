// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

// Package audit provides the append-only injection log. Every injection
// attempt, successful or not, produces exactly one record, so the audit
// trail never has gaps.
package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/dailypuzzlepost/puzzlebank/internal/models"
)

// Strategy names the slot-selection policy used for an injection.
type Strategy string

const (
	StrategyReplaceOldest   Strategy = "replace_oldest"
	StrategyReplaceSpecific Strategy = "replace_specific"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyReplaceOldest || s == StrategyReplaceSpecific
}

// InjectionRecord is one audit log entry for an injection attempt.
type InjectionRecord struct {
	ID                string            `json:"id"`
	CreatedAt         time.Time         `json:"created_at"`
	PuzzleType        models.PuzzleType `json:"puzzle_type"`
	ContentID         string            `json:"content_id"`
	ReplacedContentID string            `json:"replaced_content_id,omitempty"`
	SlotID            int               `json:"slot_id"`
	Strategy          Strategy          `json:"strategy"`
	QualityScore      *float64          `json:"quality_score,omitempty"`
	Reason            string            `json:"reason,omitempty"`
	InjectedBy        string            `json:"injected_by,omitempty"`
	ValidationResult  json.RawMessage   `json:"validation_result,omitempty"`
	BackupID          string            `json:"backup_id,omitempty"`
	Success           bool              `json:"success"`
	ErrorMessage      string            `json:"error_message,omitempty"`
}

// ListOptions filters audit queries. Records are returned newest first.
type ListOptions struct {
	PuzzleType models.PuzzleType // empty = all types
	Success    *bool             // nil = both outcomes
	Limit      int               // <=0 = default 100
}

// Store is the persistence contract for injection records.
type Store interface {
	// Save appends one record.
	Save(ctx context.Context, rec *InjectionRecord) error

	// List returns records matching opts, newest first.
	List(ctx context.Context, opts ListOptions) ([]*InjectionRecord, error)

	// Ping verifies store connectivity for health reporting.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
