// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package validation

import (
	"fmt"

	"github.com/goccy/go-json"
)

// HangmanPayload is the expected shape of a hangman word candidate.
type HangmanPayload struct {
	ID         string `json:"id" validate:"required"`
	Word       string `json:"word" validate:"required"`
	Hint       string `json:"hint" validate:"required"`
	Category   string `json:"category" validate:"required"`
	Length     int    `json:"length" validate:"required"`
	Difficulty int    `json:"difficulty" validate:"required,min=1,max=5"`
}

// ValidateHangman requires an uppercase alphabetic word whose declared
// length matches its actual length.
func ValidateHangman(payload json.RawMessage) Result {
	var p HangmanPayload
	if errs := decode(payload, &p); errs != nil {
		return resultFrom(errs)
	}

	errs := structErrors(&p)
	if p.Word != "" {
		if !isUpperAlpha(p.Word) {
			errs = append(errs, "Word must contain only uppercase letters")
		}
		if p.Length != 0 && len(p.Word) != p.Length {
			errs = append(errs, fmt.Sprintf("Word length mismatch: expected %d, got %d", p.Length, len(p.Word)))
		}
	}
	return resultFrom(errs)
}
