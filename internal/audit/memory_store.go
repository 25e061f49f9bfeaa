// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package audit

import (
	"context"
	"sync"
)

// MemoryStore implements Store with in-memory storage. Suitable for
// development and testing; records are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records []InjectionRecord
	maxLen  int
}

// NewMemoryStore creates an in-memory audit store holding at most maxLen
// records (oldest evicted first).
func NewMemoryStore(maxLen int) *MemoryStore {
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &MemoryStore{
		records: make([]InjectionRecord, 0, maxLen),
		maxLen:  maxLen,
	}
}

// Save appends one record, evicting the oldest tenth when full.
func (s *MemoryStore) Save(ctx context.Context, rec *InjectionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) >= s.maxLen {
		remove := s.maxLen / 10
		if remove < 1 {
			remove = 1
		}
		s.records = s.records[remove:]
	}
	s.records = append(s.records, *rec)
	return nil
}

// List returns matching records, newest first.
func (s *MemoryStore) List(ctx context.Context, opts ListOptions) ([]*InjectionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*InjectionRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		rec := s.records[i]
		if opts.PuzzleType != "" && rec.PuzzleType != opts.PuzzleType {
			continue
		}
		if opts.Success != nil && rec.Success != *opts.Success {
			continue
		}
		out = append(out, &rec)
	}
	return out, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
