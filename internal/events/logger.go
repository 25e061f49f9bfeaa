// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"

	"github.com/dailypuzzlepost/puzzlebank/internal/logging"
)

// LoggerAdapter bridges Watermill's logger interface onto zerolog.
type LoggerAdapter struct {
	logger zerolog.Logger
}

// NewLoggerAdapter creates an adapter over the global logger.
func NewLoggerAdapter() *LoggerAdapter {
	return &LoggerAdapter{logger: logging.With().Str("component", "events").Logger()}
}

func (a *LoggerAdapter) withFields(ev *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	return ev
}

// Error logs an error message.
func (a *LoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.withFields(a.logger.Error().Err(err), fields).Msg(msg)
}

// Info logs an info message.
func (a *LoggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.withFields(a.logger.Info(), fields).Msg(msg)
}

// Debug logs a debug message.
func (a *LoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.withFields(a.logger.Debug(), fields).Msg(msg)
}

// Trace logs a trace message.
func (a *LoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.withFields(a.logger.Trace(), fields).Msg(msg)
}

// With returns a logger with persistent fields attached.
func (a *LoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	l := a.logger.With()
	for k, v := range fields {
		l = l.Interface(k, v)
	}
	return &LoggerAdapter{logger: l.Logger()}
}
