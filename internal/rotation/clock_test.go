// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package rotation

import (
	"errors"
	"testing"
	"time"
)

var launch = time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)

func newTestClock(t *testing.T) *Clock {
	t.Helper()
	c, err := New(launch, 30)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsBadCycleLength(t *testing.T) {
	for _, n := range []int{0, -1, -30} {
		if _, err := New(launch, n); err == nil {
			t.Errorf("New(launch, %d) should fail", n)
		}
	}
}

func TestResolve_CycleBoundaries(t *testing.T) {
	c := newTestClock(t)

	tests := []struct {
		name      string
		date      time.Time
		wantSlot  int
		wantCycle int
	}{
		{"launch day is slot 1", launch, 1, 1},
		{"second day", launch.AddDate(0, 0, 1), 2, 1},
		{"last day of first cycle", launch.AddDate(0, 0, 29), 30, 1},
		{"first day of second cycle", launch.AddDate(0, 0, 30), 1, 2},
		{"deep into rotation", launch.AddDate(0, 0, 365), 6, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := c.Resolve(tt.date)
			if state.SlotIndex != tt.wantSlot {
				t.Errorf("slot = %d, want %d", state.SlotIndex, tt.wantSlot)
			}
			if state.CycleNumber != tt.wantCycle {
				t.Errorf("cycle = %d, want %d", state.CycleNumber, tt.wantCycle)
			}
			if state.DayInCycle != state.SlotIndex {
				t.Errorf("day_in_cycle = %d, want %d", state.DayInCycle, state.SlotIndex)
			}
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	c := newTestClock(t)
	date := launch.AddDate(0, 0, 100)

	first := c.Resolve(date)
	second := c.Resolve(date)
	if first != second {
		t.Errorf("Resolve not deterministic: %+v vs %+v", first, second)
	}
}

func TestResolve_CoversFullRange(t *testing.T) {
	c := newTestClock(t)

	seen := make(map[int]bool)
	for d := 0; d < 90; d++ {
		state := c.Resolve(launch.AddDate(0, 0, d))
		if state.SlotIndex < 1 || state.SlotIndex > 30 {
			t.Fatalf("day %d: slot %d out of range", d, state.SlotIndex)
		}
		seen[state.SlotIndex] = true
	}
	if len(seen) != 30 {
		t.Errorf("expected all 30 slots hit over 90 days, got %d", len(seen))
	}
}

func TestResolve_ClampsBeforeLaunch(t *testing.T) {
	c := newTestClock(t)

	state := c.Resolve(launch.AddDate(0, 0, -10))
	if state.SlotIndex != 1 || state.DaysSinceLaunch != 0 || state.CycleNumber != 1 {
		t.Errorf("pre-launch date should clamp to day zero, got %+v", state)
	}
}

func TestResolve_TimeOfDayIrrelevant(t *testing.T) {
	c := newTestClock(t)

	morning := time.Date(2025, 9, 1, 0, 1, 0, 0, time.UTC)
	night := time.Date(2025, 9, 1, 23, 59, 0, 0, time.UTC)
	if c.Resolve(morning) != c.Resolve(night) {
		t.Error("same calendar day resolved differently at different times")
	}
}

func TestResolveStrict_RejectsBeforeLaunch(t *testing.T) {
	c := newTestClock(t)

	_, err := c.ResolveStrict(launch.AddDate(0, 0, -1))
	if !errors.Is(err, ErrDateBeforeLaunch) {
		t.Errorf("expected ErrDateBeforeLaunch, got %v", err)
	}

	if _, err := c.ResolveStrict(launch); err != nil {
		t.Errorf("launch date should be allowed, got %v", err)
	}
}

func TestStatus_NextRotationDate(t *testing.T) {
	c := newTestClock(t)

	// Day 5 of the first cycle: 25 days until the cycle wraps.
	state := c.Status(launch.AddDate(0, 0, 4))
	if state.NextRotationDate != "2025-09-18" {
		t.Errorf("next rotation = %s, want 2025-09-18", state.NextRotationDate)
	}

	// Last day of the cycle wraps tomorrow.
	state = c.Status(launch.AddDate(0, 0, 29))
	if state.NextRotationDate != "2025-09-18" {
		t.Errorf("next rotation = %s, want 2025-09-18", state.NextRotationDate)
	}
}
