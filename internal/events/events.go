// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

// Package events carries in-process notifications between the injection
// engine and the serving facade over a Watermill gochannel Pub/Sub.
// The service is single-process, so no external broker is involved; the
// pub/sub exists to decouple the writer from the reader's pointer cache.
package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/dailypuzzlepost/puzzlebank/internal/models"
)

// TopicSlotUpdated carries SlotUpdated events after a successful
// injection or restore write.
const TopicSlotUpdated = "puzzle.slot.updated"

// SlotUpdated announces that a bank slot has new content.
type SlotUpdated struct {
	PuzzleType models.PuzzleType `json:"puzzle_type"`
	SlotID     int               `json:"slot_id"`
	ContentID  string            `json:"content_id"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewPubSub creates the in-process pub/sub with persistent subscriber
// channels.
func NewPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, NewLoggerAdapter())
}

// PublishSlotUpdated publishes one SlotUpdated event.
func PublishSlotUpdated(pub message.Publisher, ev SlotUpdated) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding slot-updated event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := pub.Publish(TopicSlotUpdated, msg); err != nil {
		return fmt.Errorf("publishing slot-updated event: %w", err)
	}
	return nil
}

// DecodeSlotUpdated decodes one SlotUpdated event from a message.
func DecodeSlotUpdated(msg *message.Message) (SlotUpdated, error) {
	var ev SlotUpdated
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return SlotUpdated{}, fmt.Errorf("decoding slot-updated event: %w", err)
	}
	return ev, nil
}
