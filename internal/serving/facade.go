// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

// Package serving resolves calendar dates to bank slots and returns the
// content stored there. It is the read path of the service: every
// player-facing puzzle request goes through the facade.
package serving

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/dailypuzzlepost/puzzlebank/internal/bank"
	"github.com/dailypuzzlepost/puzzlebank/internal/events"
	"github.com/dailypuzzlepost/puzzlebank/internal/logging"
	"github.com/dailypuzzlepost/puzzlebank/internal/metrics"
	"github.com/dailypuzzlepost/puzzlebank/internal/models"
	"github.com/dailypuzzlepost/puzzlebank/internal/rotation"
)

// ErrInvalidDate indicates a date string outside the YYYY-MM-DD wire
// format.
var ErrInvalidDate = errors.New("invalid date format, want YYYY-MM-DD")

// ServeResult is one resolved puzzle: the record plus the rotation state
// that selected it.
type ServeResult struct {
	Record   *models.PuzzleRecord `json:"record"`
	Rotation models.RotationState `json:"rotation"`

	// Cached marks a result answered from the pointer cache. It feeds
	// the response envelope metadata, not the payload itself.
	Cached bool `json:"-"`
}

// cacheEntry pins the record served for one type on one calendar day.
// The entry dies at midnight or when an injection touches its slot.
type cacheEntry struct {
	date   string
	slotID int
	result *ServeResult
}

// Facade serves puzzles by date. Today's lookups are answered from a
// per-type pointer cache kept coherent by slot-updated events.
type Facade struct {
	store  bank.Store
	clocks map[models.PuzzleType]*rotation.Clock
	now    func() time.Time

	mu    sync.RWMutex
	cache map[models.PuzzleType]*cacheEntry
}

// NewFacade constructs the read facade.
func NewFacade(store bank.Store, clocks map[models.PuzzleType]*rotation.Clock, now func() time.Time) (*Facade, error) {
	if store == nil {
		return nil, fmt.Errorf("bank store is required")
	}
	if len(clocks) == 0 {
		return nil, fmt.Errorf("at least one rotation clock is required")
	}
	if now == nil {
		now = time.Now
	}
	return &Facade{
		store:  store,
		clocks: clocks,
		now:    now,
		cache:  make(map[models.PuzzleType]*cacheEntry),
	}, nil
}

// GetToday returns the puzzle rotated in for the current day. Repeat
// calls within the same day hit the pointer cache.
func (f *Facade) GetToday(ctx context.Context, pt models.PuzzleType) (*ServeResult, error) {
	clock, ok := f.clocks[pt]
	if !ok {
		return nil, fmt.Errorf("no rotation configured for puzzle type %q", pt)
	}

	state := clock.Resolve(f.now())
	state.IsToday = true

	f.mu.RLock()
	entry := f.cache[pt]
	f.mu.RUnlock()
	if entry != nil && entry.date == state.Date && entry.slotID == state.SlotIndex {
		metrics.PointerCacheHits.Inc()
		metrics.ServesTotal.WithLabelValues(string(pt), "hit").Inc()
		res := *entry.result
		res.Cached = true
		return &res, nil
	}

	res, err := f.fetch(ctx, pt, state)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.cache[pt] = &cacheEntry{date: state.Date, slotID: state.SlotIndex, result: res}
	f.mu.Unlock()
	return res, nil
}

// GetForDate returns the puzzle for an explicit calendar date. Dates
// before launch are rejected rather than clamped so callers see the real
// schedule, not a silent fallback to slot 1.
func (f *Facade) GetForDate(ctx context.Context, pt models.PuzzleType, date string) (*ServeResult, error) {
	clock, ok := f.clocks[pt]
	if !ok {
		return nil, fmt.Errorf("no rotation configured for puzzle type %q", pt)
	}

	parsed, err := time.Parse(rotation.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	state, err := clock.ResolveStrict(parsed)
	if err != nil {
		return nil, err
	}
	today := clock.Resolve(f.now())
	state.IsToday = state.Date == today.Date

	return f.fetch(ctx, pt, state)
}

// ListBank returns every seeded record in slot order.
func (f *Facade) ListBank(ctx context.Context, pt models.PuzzleType) ([]*models.PuzzleRecord, error) {
	clock, ok := f.clocks[pt]
	if !ok {
		return nil, fmt.Errorf("no rotation configured for puzzle type %q", pt)
	}
	return f.store.ListAll(ctx, pt, clock.CycleLength())
}

// RotationStatus reports the clock position without touching the bank.
func (f *Facade) RotationStatus(pt models.PuzzleType) (models.RotationState, error) {
	clock, ok := f.clocks[pt]
	if !ok {
		return models.RotationState{}, fmt.Errorf("no rotation configured for puzzle type %q", pt)
	}
	return clock.Status(f.now()), nil
}

// fetch reads the slot the rotation state points at.
func (f *Facade) fetch(ctx context.Context, pt models.PuzzleType, state models.RotationState) (*ServeResult, error) {
	start := time.Now()
	rec, err := f.store.Get(ctx, pt, state.SlotIndex)
	if err != nil {
		if bank.IsNotFound(err) {
			metrics.ServesTotal.WithLabelValues(string(pt), "not_found").Inc()
		} else {
			metrics.ServesTotal.WithLabelValues(string(pt), "error").Inc()
		}
		return nil, err
	}
	metrics.ObserveStoreOperation("get", start)
	metrics.ServesTotal.WithLabelValues(string(pt), "hit").Inc()
	return &ServeResult{Record: rec, Rotation: state}, nil
}

// Invalidate drops the cached pointer for one type if the updated slot
// is the one being served. Updates to other slots leave the cache alone.
func (f *Facade) Invalidate(pt models.PuzzleType, slotID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := f.cache[pt]
	if entry != nil && entry.slotID == slotID {
		delete(f.cache, pt)
	}
}

// ConsumeSlotUpdates drains slot-updated events into cache
// invalidations until the subscription closes or ctx is done.
func (f *Facade) ConsumeSlotUpdates(ctx context.Context, sub message.Subscriber) error {
	msgs, err := sub.Subscribe(ctx, events.TopicSlotUpdated)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", events.TopicSlotUpdated, err)
	}
	for msg := range msgs {
		ev, err := events.DecodeSlotUpdated(msg)
		if err != nil {
			logger := logging.Ctx(ctx)
			logger.Warn().Err(err).Msg("discarding undecodable slot-updated event")
			msg.Ack()
			continue
		}
		f.Invalidate(ev.PuzzleType, ev.SlotID)
		msg.Ack()
	}
	return nil
}
