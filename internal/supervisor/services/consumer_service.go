// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package services

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/dailypuzzlepost/puzzlebank/internal/serving"
)

// SlotUpdateConsumerService keeps the facade's pointer cache coherent
// by draining slot-updated events for as long as the service runs.
type SlotUpdateConsumerService struct {
	facade     *serving.Facade
	subscriber message.Subscriber
}

// NewSlotUpdateConsumerService wraps the cache-invalidation consumer.
func NewSlotUpdateConsumerService(facade *serving.Facade, subscriber message.Subscriber) *SlotUpdateConsumerService {
	return &SlotUpdateConsumerService{facade: facade, subscriber: subscriber}
}

// Serve implements suture.Service.
func (s *SlotUpdateConsumerService) Serve(ctx context.Context) error {
	if err := s.facade.ConsumeSlotUpdates(ctx, s.subscriber); err != nil {
		return err
	}
	// The subscription channel closed. During shutdown that is normal;
	// otherwise suture restarts us to resubscribe.
	return ctx.Err()
}

func (s *SlotUpdateConsumerService) String() string {
	return "slot-update-consumer"
}
