// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package models

import (
	"testing"
	"time"
)

func TestContentID(t *testing.T) {
	tests := []struct {
		pt   PuzzleType
		slot int
		want string
	}{
		{TypeCrossword, 7, "puzzle_07"},
		{TypeHangman, 1, "word_01"},
		{TypeSudoku, 30, "sudoku_30"},
		{TypeWordSearch, 12, "wordsearch_12"},
		{TypeAnagram, 5, "anagram_05"},
	}

	for _, tt := range tests {
		if got := ContentID(tt.pt, tt.slot); got != tt.want {
			t.Errorf("ContentID(%s, %d) = %q, want %q", tt.pt, tt.slot, got, tt.want)
		}
	}
}

func TestPuzzleTypeValid(t *testing.T) {
	for _, pt := range AllPuzzleTypes {
		if !pt.Valid() {
			t.Errorf("%s should be valid", pt)
		}
	}
	if PuzzleType("chess").Valid() {
		t.Error("chess should not be a valid puzzle type")
	}
}

func TestCreatedAtTime(t *testing.T) {
	tests := []struct {
		name    string
		created string
		wantOK  bool
		want    time.Time
	}{
		{"rfc3339", "2025-08-19T10:30:00Z", true, time.Date(2025, 8, 19, 10, 30, 0, 0, time.UTC)},
		{"date only", "2025-08-19", true, time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)},
		{"no zone", "2025-08-19T10:30:00", true, time.Date(2025, 8, 19, 10, 30, 0, 0, time.UTC)},
		{"empty", "", false, time.Time{}},
		{"garbage", "last tuesday", false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RecordMetadata{CreatedAt: tt.created}.CreatedAtTime()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
