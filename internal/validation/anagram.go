// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package validation

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

const (
	anagramMinLength     = 3
	anagramMaxLength     = 15
	anagramMinDefinition = 10
)

// AnagramPayload is the expected shape of an anagram candidate.
type AnagramPayload struct {
	ID            string `json:"id" validate:"required"`
	OriginalWord  string `json:"originalWord" validate:"required"`
	ScrambledWord string `json:"scrambledWord" validate:"required"`
	Definition    string `json:"definition" validate:"required"`
	Category      string `json:"category"`
	Difficulty    int    `json:"difficulty" validate:"omitempty,min=1,max=5"`
}

// ValidateAnagram requires the scrambled word to be a true anagram of
// the original: same letters, same length, different string.
func ValidateAnagram(payload json.RawMessage) Result {
	var p AnagramPayload
	if errs := decode(payload, &p); errs != nil {
		return resultFrom(errs)
	}

	errs := structErrors(&p)

	if p.OriginalWord != "" && !isAlpha(p.OriginalWord) {
		errs = append(errs, "Original word must contain only letters")
	}
	if p.ScrambledWord != "" && !isAlpha(p.ScrambledWord) {
		errs = append(errs, "Scrambled word must contain only letters")
	}

	if p.OriginalWord != "" {
		if n := len(p.OriginalWord); n < anagramMinLength || n > anagramMaxLength {
			errs = append(errs, fmt.Sprintf("Word length must be between %d and %d, got %d", anagramMinLength, anagramMaxLength, n))
		}
	}

	if p.OriginalWord != "" && p.ScrambledWord != "" {
		if len(p.OriginalWord) != len(p.ScrambledWord) {
			errs = append(errs, "Original and scrambled words must be the same length")
		} else if !sameLetterMultiset(p.OriginalWord, p.ScrambledWord) {
			errs = append(errs, "Scrambled word must use exactly the letters of the original word")
		}
		if strings.EqualFold(p.OriginalWord, p.ScrambledWord) {
			errs = append(errs, "Scrambled word must differ from the original word")
		}
	}

	if p.Definition != "" && len(p.Definition) < anagramMinDefinition {
		errs = append(errs, fmt.Sprintf("Definition must be at least %d characters", anagramMinDefinition))
	}

	return resultFrom(errs)
}

// sameLetterMultiset reports whether a and b contain the same letters
// with the same multiplicities, ignoring case. Both must already be
// alphabetic and equal length.
func sameLetterMultiset(a, b string) bool {
	var counts [26]int
	for _, r := range strings.ToUpper(a) {
		if r >= 'A' && r <= 'Z' {
			counts[r-'A']++
		}
	}
	for _, r := range strings.ToUpper(b) {
		if r < 'A' || r > 'Z' {
			return false
		}
		counts[r-'A']--
		if counts[r-'A'] < 0 {
			return false
		}
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}
