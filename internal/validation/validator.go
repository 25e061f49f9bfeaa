// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

// Package validation implements the per-type content validators for
// candidate puzzle payloads.
//
// Validation is purely structural and combinatorial: no I/O, no
// randomness. Every rule is checked and every violation reported, so a
// content author or automation agent can fix all issues in one pass
// rather than resubmitting per error.
//
// Field-level envelope rules (required fields, numeric ranges) are
// expressed as go-playground/validator struct tags; the combinatorial
// rules the tag language cannot express (grid geometry, Sudoku
// permutations, anagram multisets) are checked by hand afterwards.
package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/dailypuzzlepost/puzzlebank/internal/models"
)

// Result is the outcome of validating one payload. Errors lists every
// violated rule; IsValid is true iff Errors is empty.
type Result struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// resultFrom builds a Result from a collected error list.
func resultFrom(errs []string) Result {
	if errs == nil {
		errs = []string{}
	}
	return Result{IsValid: len(errs) == 0, Errors: errs}
}

// singleton validator instance (thread-safe, caches struct info)
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// structErrors runs tag validation on v and translates each field error
// into a human-readable message.
func structErrors(v interface{}) []string {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{fmt.Sprintf("payload validation failed: %v", err)}
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, translateFieldError(fe))
	}
	return msgs
}

// translateFieldError renders one tag failure in the message style the
// content authors are used to.
func translateFieldError(fe validator.FieldError) string {
	field := jsonFieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Missing required field: %s", field)
	case "min":
		return fmt.Sprintf("Field %s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("Field %s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("Field %s must be >= %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("Field %s must be <= %s", field, fe.Param())
	default:
		return fmt.Sprintf("Field %s failed %s validation", field, fe.Tag())
	}
}

// jsonFieldName lower-cases the first rune of a Go field name so error
// messages reference the JSON field authors actually write.
func jsonFieldName(goName string) string {
	if goName == "" {
		return goName
	}
	return strings.ToLower(goName[:1]) + goName[1:]
}

// Validate dispatches a candidate payload to the validator for its
// puzzle type. Unknown types fail validation rather than erroring; the
// caller already treats an invalid Result as a complete answer.
func Validate(pt models.PuzzleType, payload json.RawMessage) Result {
	if len(payload) == 0 {
		return resultFrom([]string{"No payload provided"})
	}

	switch pt {
	case models.TypeCrossword:
		return ValidateCrossword(payload)
	case models.TypeHangman:
		return ValidateHangman(payload)
	case models.TypeSudoku:
		return ValidateSudoku(payload)
	case models.TypeWordSearch:
		return ValidateWordSearch(payload)
	case models.TypeAnagram:
		return ValidateAnagram(payload)
	default:
		return resultFrom([]string{fmt.Sprintf("Unknown puzzle type: %s", pt)})
	}
}

// decode unmarshals payload into v, returning a one-element error list
// on malformed JSON.
func decode(payload json.RawMessage, v interface{}) []string {
	if err := json.Unmarshal(payload, v); err != nil {
		return []string{fmt.Sprintf("Invalid JSON payload: %v", err)}
	}
	return nil
}

// isUpperAlpha reports whether s is non-empty and contains only A-Z.
func isUpperAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// isAlpha reports whether s is non-empty and contains only ASCII letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
