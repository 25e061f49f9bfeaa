// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package audit

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/dailypuzzlepost/puzzlebank/internal/logging"
)

// BreakerStore wraps a Store with a circuit breaker on the write path.
// Audit persistence is non-fatal for the injection pipeline, but a sick
// backend must not stall every injection on a slow failing write; once
// the breaker opens, Save fails fast until the backend recovers.
type BreakerStore struct {
	inner Store
	cb    *gobreaker.CircuitBreaker[interface{}]
}

// NewBreakerStore wraps inner with a breaker that opens after
// consecutive write failures.
func NewBreakerStore(inner Store) *BreakerStore {
	settings := gobreaker.Settings{
		Name:        "audit-store",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("audit store breaker state changed")
		},
	}
	return &BreakerStore{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[interface{}](settings),
	}
}

// Save appends one record through the breaker.
func (s *BreakerStore) Save(ctx context.Context, rec *InjectionRecord) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.inner.Save(ctx, rec)
	})
	return err
}

// List reads bypass the breaker; a degraded listing is better than none
// and reads don't stall the injection pipeline.
func (s *BreakerStore) List(ctx context.Context, opts ListOptions) ([]*InjectionRecord, error) {
	return s.inner.List(ctx, opts)
}

// Ping reports the inner store's connectivity.
func (s *BreakerStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the inner store.
func (s *BreakerStore) Close() error {
	return s.inner.Close()
}

// State returns the current breaker state for health reporting.
func (s *BreakerStore) State() string {
	return s.cb.State().String()
}
