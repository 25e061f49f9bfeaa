// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package validation

import (
	"fmt"

	"github.com/goccy/go-json"
)

// SudokuPayload is the expected shape of a sudoku candidate: the given
// clues and the complete solution, both 9x9. Given cells use 0 for
// blanks.
type SudokuPayload struct {
	ID         string  `json:"id" validate:"required"`
	Given      [][]int `json:"given" validate:"required"`
	Solution   [][]int `json:"solution" validate:"required"`
	Difficulty int     `json:"difficulty" validate:"omitempty,min=1,max=5"`
}

// ValidateSudoku checks both grids are 9x9 and that the solution is a
// correct complete Sudoku: every row, column, and 3x3 box a permutation
// of 1-9. Fixed-size constraint verification, not a solver.
func ValidateSudoku(payload json.RawMessage) Result {
	var p SudokuPayload
	if errs := decode(payload, &p); errs != nil {
		return resultFrom(errs)
	}

	errs := structErrors(&p)
	errs = append(errs, gridShapeErrors("given", p.Given)...)

	shapeErrs := gridShapeErrors("solution", p.Solution)
	errs = append(errs, shapeErrs...)
	if p.Solution != nil && len(shapeErrs) == 0 {
		errs = append(errs, solutionErrors(p.Solution)...)
	}
	return resultFrom(errs)
}

// gridShapeErrors verifies a 9x9 grid shape.
func gridShapeErrors(name string, grid [][]int) []string {
	if grid == nil {
		return nil
	}
	if len(grid) != 9 {
		return []string{fmt.Sprintf("Field %s must have 9 rows, got %d", name, len(grid))}
	}
	var errs []string
	for i, row := range grid {
		if len(row) != 9 {
			errs = append(errs, fmt.Sprintf("Field %s row %d must have 9 cells, got %d", name, i, len(row)))
		}
	}
	return errs
}

// solutionErrors verifies every row, column, and box is a permutation of
// 1-9. The grid shape must already be valid.
func solutionErrors(grid [][]int) []string {
	var errs []string

	for r := 0; r < 9; r++ {
		if !isPermutation(grid[r]) {
			errs = append(errs, fmt.Sprintf("Solution row %d is not a permutation of 1-9", r))
		}
	}

	for c := 0; c < 9; c++ {
		col := make([]int, 9)
		for r := 0; r < 9; r++ {
			col[r] = grid[r][c]
		}
		if !isPermutation(col) {
			errs = append(errs, fmt.Sprintf("Solution column %d is not a permutation of 1-9", c))
		}
	}

	for boxRow := 0; boxRow < 3; boxRow++ {
		for boxCol := 0; boxCol < 3; boxCol++ {
			box := make([]int, 0, 9)
			for r := boxRow * 3; r < boxRow*3+3; r++ {
				for c := boxCol * 3; c < boxCol*3+3; c++ {
					box = append(box, grid[r][c])
				}
			}
			if !isPermutation(box) {
				errs = append(errs, fmt.Sprintf("Solution box (%d,%d) is not a permutation of 1-9", boxRow, boxCol))
			}
		}
	}
	return errs
}

// isPermutation reports whether cells contains each of 1..9 exactly once.
func isPermutation(cells []int) bool {
	var seen [10]bool
	for _, v := range cells {
		if v < 1 || v > 9 || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
