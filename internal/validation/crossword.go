// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package validation

import (
	"fmt"

	"github.com/goccy/go-json"
)

// CrosswordPayload is the expected shape of a crossword candidate.
// Canonical size is 15; the declared size governs the geometry checks.
type CrosswordPayload struct {
	ID         string          `json:"id" validate:"required"`
	Title      string          `json:"title" validate:"required"`
	Grid       [][]string      `json:"grid" validate:"required"`
	Solution   [][]string      `json:"solution" validate:"required"`
	Clues      json.RawMessage `json:"clues" validate:"required"`
	Size       int             `json:"size" validate:"required,gte=1"`
	Difficulty int             `json:"difficulty" validate:"omitempty,min=1,max=5"`
}

// ValidateCrossword checks grid/solution geometry against the declared
// size and requires both across and down clue sections.
func ValidateCrossword(payload json.RawMessage) Result {
	var p CrosswordPayload
	if errs := decode(payload, &p); errs != nil {
		return resultFrom(errs)
	}

	errs := structErrors(&p)
	errs = append(errs, matrixErrors("grid", p.Grid, p.Size)...)
	errs = append(errs, matrixErrors("solution", p.Solution, p.Size)...)
	errs = append(errs, clueErrors(p.Clues)...)
	return resultFrom(errs)
}

// matrixErrors verifies a matrix is size x size.
func matrixErrors(name string, matrix [][]string, size int) []string {
	if matrix == nil || size < 1 {
		return nil // absence and bad size already reported by tags
	}
	var errs []string
	if len(matrix) != size {
		errs = append(errs, fmt.Sprintf("Field %s height %d doesn't match size %d", name, len(matrix), size))
	}
	for i, row := range matrix {
		if len(row) != size {
			errs = append(errs, fmt.Sprintf("Field %s row %d has length %d, expected %d", name, i, len(row), size))
		}
	}
	return errs
}

// clueErrors requires the clues object to carry across and down sections.
func clueErrors(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var clues map[string]json.RawMessage
	if err := json.Unmarshal(raw, &clues); err != nil {
		return []string{"Field clues must be an object"}
	}
	var errs []string
	if _, ok := clues["across"]; !ok {
		errs = append(errs, "Clues must have an 'across' section")
	}
	if _, ok := clues["down"]; !ok {
		errs = append(errs, "Clues must have a 'down' section")
	}
	return errs
}
