// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

// Package rotation implements the deterministic rotation clock mapping a
// calendar date to a slot index and cycle number. Resolution is a pure
// function of (date, launch date, cycle length); no state is persisted.
package rotation

import (
	"errors"
	"fmt"
	"time"

	"github.com/dailypuzzlepost/puzzlebank/internal/models"
)

// ErrDateBeforeLaunch is returned by ResolveStrict for explicit date
// queries preceding the launch date. Internal "current rotation"
// computation clamps instead (see Resolve).
var ErrDateBeforeLaunch = errors.New("date precedes launch date")

// DateLayout is the wire format for dates.
const DateLayout = "2006-01-02"

// Clock resolves dates into rotation positions for one puzzle bank.
// The zero value is not usable; construct with New.
type Clock struct {
	launch      time.Time
	cycleLength int
}

// New creates a Clock. The launch date is truncated to a UTC calendar day.
// cycleLength must be positive.
func New(launch time.Time, cycleLength int) (*Clock, error) {
	if cycleLength <= 0 {
		return nil, fmt.Errorf("cycle length must be positive, got %d", cycleLength)
	}
	return &Clock{launch: truncateToDay(launch), cycleLength: cycleLength}, nil
}

// CycleLength returns the number of slots in the rotation.
func (c *Clock) CycleLength() int {
	return c.cycleLength
}

// LaunchDate returns the launch date at UTC midnight.
func (c *Clock) LaunchDate() time.Time {
	return c.launch
}

// Resolve maps a date to its rotation state. Dates before launch clamp
// days-since-launch to zero, resolving to slot 1 of cycle 1; callers that
// need the pre-launch case surfaced use ResolveStrict.
func (c *Clock) Resolve(date time.Time) models.RotationState {
	day := truncateToDay(date)
	days := daysBetween(c.launch, day)
	if days < 0 {
		days = 0
	}
	return models.RotationState{
		SlotIndex:       (days % c.cycleLength) + 1,
		DaysSinceLaunch: days,
		CycleNumber:     (days / c.cycleLength) + 1,
		DayInCycle:      (days % c.cycleLength) + 1,
		CycleLength:     c.cycleLength,
		LaunchDate:      c.launch.Format(DateLayout),
		Date:            day.Format(DateLayout),
	}
}

// ResolveStrict is Resolve with explicit rejection of pre-launch dates.
func (c *Clock) ResolveStrict(date time.Time) (models.RotationState, error) {
	if truncateToDay(date).Before(c.launch) {
		return models.RotationState{}, fmt.Errorf("%w: %s is before %s",
			ErrDateBeforeLaunch, date.Format(DateLayout), c.launch.Format(DateLayout))
	}
	return c.Resolve(date), nil
}

// Status resolves the current rotation position and adds the date on
// which the cycle next wraps back to slot 1.
func (c *Clock) Status(now time.Time) models.RotationState {
	state := c.Resolve(now)
	daysUntilWrap := c.cycleLength - (state.DaysSinceLaunch % c.cycleLength)
	next := truncateToDay(now).AddDate(0, 0, daysUntilWrap)
	state.NextRotationDate = next.Format(DateLayout)
	return state
}

// truncateToDay normalizes t to midnight UTC of its calendar day.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns whole calendar days from a to b. Both arguments
// must already be UTC midnights.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
