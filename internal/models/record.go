// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

// Package models defines the shared data types for the rotation service:
// puzzle records, rotation state, and the API response envelope.
package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// PuzzleType identifies one of the rotating puzzle banks.
type PuzzleType string

const (
	TypeCrossword  PuzzleType = "crossword"
	TypeHangman    PuzzleType = "hangman"
	TypeSudoku     PuzzleType = "sudoku"
	TypeWordSearch PuzzleType = "wordsearch"
	TypeAnagram    PuzzleType = "anagram"
)

// AllPuzzleTypes lists every supported puzzle type in serving order.
var AllPuzzleTypes = []PuzzleType{
	TypeCrossword,
	TypeHangman,
	TypeSudoku,
	TypeWordSearch,
	TypeAnagram,
}

// Valid reports whether pt is a known puzzle type.
func (pt PuzzleType) Valid() bool {
	switch pt {
	case TypeCrossword, TypeHangman, TypeSudoku, TypeWordSearch, TypeAnagram:
		return true
	}
	return false
}

// Prefix returns the content ID prefix for the puzzle type. The prefixes
// match the historical bank file naming (puzzle_07.json, word_07.json, ...)
// so existing banks remain addressable.
func (pt PuzzleType) Prefix() string {
	switch pt {
	case TypeCrossword:
		return "puzzle"
	case TypeHangman:
		return "word"
	case TypeSudoku:
		return "sudoku"
	case TypeWordSearch:
		return "wordsearch"
	case TypeAnagram:
		return "anagram"
	default:
		return string(pt)
	}
}

// ContentID derives the business identifier for a slot, e.g. "puzzle_07".
func ContentID(pt PuzzleType, slotID int) string {
	return fmt.Sprintf("%s_%02d", pt.Prefix(), slotID)
}

// RecordMetadata carries provenance for a puzzle record.
//
// CreatedAt is kept as the raw string written by whichever tool seeded or
// injected the record. External automation has historically written a mix
// of RFC 3339 and date-only values; the oldest-slot selection parses it
// leniently and treats unparsable values as infinitely old.
type RecordMetadata struct {
	CreatedAt         string   `json:"created_at,omitempty"`
	InjectedBy        string   `json:"injected_by,omitempty"`
	InjectionReason   string   `json:"injection_reason,omitempty"`
	InjectionStrategy string   `json:"injection_strategy,omitempty"`
	QualityScore      *float64 `json:"quality_score,omitempty"`
	ReplacedContentID string   `json:"replaced_content_id,omitempty"`
}

// createdAtFormats are tried in order when parsing CreatedAt.
var createdAtFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CreatedAtTime parses CreatedAt. The second return is false when the
// field is empty or unparsable.
func (m RecordMetadata) CreatedAtTime() (time.Time, bool) {
	if m.CreatedAt == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtFormats {
		if t, err := time.Parse(layout, m.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PuzzleRecord is one slot's content in a rotating bank. The payload is
// opaque to the rotation engine; only the Content Validator interprets it.
type PuzzleRecord struct {
	SlotID     int             `json:"slot_id"`
	ContentID  string          `json:"content_id"`
	PuzzleType PuzzleType      `json:"puzzle_type"`
	Payload    json.RawMessage `json:"payload"`
	Metadata   RecordMetadata  `json:"metadata"`
}

// RotationState is the derived rotation position for a date. It is
// computed on demand and never persisted.
type RotationState struct {
	SlotIndex        int    `json:"slot_index"`
	DaysSinceLaunch  int    `json:"days_since_launch"`
	CycleNumber      int    `json:"cycle_number"`
	DayInCycle       int    `json:"day_in_cycle"`
	CycleLength      int    `json:"cycle_length"`
	LaunchDate       string `json:"launch_date"`
	Date             string `json:"date"`
	IsToday          bool   `json:"is_today"`
	NextRotationDate string `json:"next_rotation_date,omitempty"`
}
