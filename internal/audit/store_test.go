// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dailypuzzlepost/puzzlebank/internal/models"
)

func testInjection(pt models.PuzzleType, slot int, success bool, at time.Time) *InjectionRecord {
	return &InjectionRecord{
		ID:         uuid.New().String(),
		CreatedAt:  at,
		PuzzleType: pt,
		ContentID:  models.ContentID(pt, slot),
		SlotID:     slot,
		Strategy:   StrategyReplaceOldest,
		Success:    success,
	}
}

func TestMemoryStore_SaveAndList(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		rec := testInjection(models.TypeHangman, i+1, i%2 == 0, base.Add(time.Duration(i)*time.Hour))
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if err := store.Save(ctx, testInjection(models.TypeSudoku, 1, true, base)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Run("newest first", func(t *testing.T) {
		records, err := store.List(ctx, ListOptions{PuzzleType: models.TypeHangman})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(records) != 5 {
			t.Fatalf("expected 5 hangman records, got %d", len(records))
		}
		if records[0].SlotID != 5 {
			t.Errorf("expected newest record first, got slot %d", records[0].SlotID)
		}
	})

	t.Run("success filter", func(t *testing.T) {
		success := false
		records, err := store.List(ctx, ListOptions{PuzzleType: models.TypeHangman, Success: &success})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("expected 2 failed records, got %d", len(records))
		}
	})

	t.Run("limit", func(t *testing.T) {
		records, err := store.List(ctx, ListOptions{Limit: 3})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("expected 3 records, got %d", len(records))
		}
	})
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	store := NewMemoryStore(10)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		rec := testInjection(models.TypeAnagram, i%30+1, true, time.Now())
		rec.Reason = fmt.Sprintf("injection %d", i)
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	records, err := store.List(ctx, ListOptions{Limit: 100})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) > 10 {
		t.Errorf("store exceeded max length: %d records", len(records))
	}
	if records[0].Reason != "injection 14" {
		t.Errorf("newest record should survive eviction, got %q", records[0].Reason)
	}
}

// failingStore always errors on Save.
type failingStore struct {
	MemoryStore
	calls int
}

func (f *failingStore) Save(ctx context.Context, rec *InjectionRecord) error {
	f.calls++
	return errors.New("backend down")
}

func TestBreakerStore_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &failingStore{}
	store := NewBreakerStore(inner)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_ = store.Save(ctx, testInjection(models.TypeHangman, 1, true, time.Now()))
	}

	if store.State() != "open" {
		t.Errorf("breaker state = %s, want open", store.State())
	}
	// Once open, calls fail fast without reaching the backend.
	if inner.calls >= 10 {
		t.Errorf("expected fast-fail after breaker opened, backend saw %d calls", inner.calls)
	}
}

func TestBreakerStore_PassesThroughWhenHealthy(t *testing.T) {
	store := NewBreakerStore(NewMemoryStore(10))
	ctx := context.Background()

	if err := store.Save(ctx, testInjection(models.TypeSudoku, 3, true, time.Now())); err != nil {
		t.Fatalf("Save: %v", err)
	}

	records, err := store.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}
	if store.State() != "closed" {
		t.Errorf("breaker state = %s, want closed", store.State())
	}
}
