// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package validation

import (
	"fmt"

	"github.com/goccy/go-json"
)

// wordSearchSize is the fixed grid dimension for word search puzzles.
const wordSearchSize = 15

// WordPosition locates one placed word in the grid.
type WordPosition struct {
	Word      string  `json:"word" validate:"required"`
	Start     []int   `json:"start" validate:"required"`
	End       []int   `json:"end" validate:"required"`
	Positions [][]int `json:"positions" validate:"required"`
}

// WordSearchPayload is the expected shape of a word search candidate.
type WordSearchPayload struct {
	ID        string         `json:"id" validate:"required"`
	Theme     string         `json:"theme" validate:"required"`
	Words     []string       `json:"words" validate:"required,min=1"`
	Grid      [][]string     `json:"grid" validate:"required"`
	Positions []WordPosition `json:"positions" validate:"required"`
}

// ValidateWordSearch checks the 15x15 grid geometry and that the
// positions array matches the word list one-to-one.
func ValidateWordSearch(payload json.RawMessage) Result {
	var p WordSearchPayload
	if errs := decode(payload, &p); errs != nil {
		return resultFrom(errs)
	}

	errs := structErrors(&p)

	if p.Grid != nil {
		if len(p.Grid) != wordSearchSize {
			errs = append(errs, fmt.Sprintf("Grid must be %dx%d, got %d rows", wordSearchSize, wordSearchSize, len(p.Grid)))
		}
		for i, row := range p.Grid {
			if len(row) != wordSearchSize {
				errs = append(errs, fmt.Sprintf("Grid row %d must have %d columns, got %d", i, wordSearchSize, len(row)))
			}
		}
	}

	if p.Positions != nil && p.Words != nil {
		if len(p.Positions) != len(p.Words) {
			errs = append(errs, fmt.Sprintf("Positions array length %d must match words array length %d", len(p.Positions), len(p.Words)))
		}

		known := make(map[string]bool, len(p.Words))
		for _, w := range p.Words {
			known[w] = true
		}
		for _, pos := range p.Positions {
			if pos.Word != "" && !known[pos.Word] {
				errs = append(errs, fmt.Sprintf("Position word %q not in words array", pos.Word))
			}
		}
	}

	return resultFrom(errs)
}
