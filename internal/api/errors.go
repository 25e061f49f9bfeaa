// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package api

import (
	"errors"
	"net/http"

	"github.com/dailypuzzlepost/puzzlebank/internal/backup"
	"github.com/dailypuzzlepost/puzzlebank/internal/bank"
	"github.com/dailypuzzlepost/puzzlebank/internal/injection"
	"github.com/dailypuzzlepost/puzzlebank/internal/rotation"
	"github.com/dailypuzzlepost/puzzlebank/internal/serving"
)

// API error codes.
const (
	CodeValidationError   = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidSlot       = "INVALID_SLOT"
	CodeInvalidDate       = "INVALID_DATE"
	CodeDateBeforeLaunch  = "DATE_BEFORE_LAUNCH"
	CodeStorageError      = "STORAGE_ERROR"
	CodeBackupFailed      = "BACKUP_FAILED"
	CodeRestoreFailed     = "RESTORE_FAILED"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeInvalidRequest    = "INVALID_REQUEST"
)

// respondDomainError translates domain sentinels into the error
// envelope. Unknown errors become opaque storage errors so internals
// never leak to callers.
func respondDomainError(w http.ResponseWriter, err error) {
	var verr *injection.ValidationError
	switch {
	case errors.As(err, &verr):
		respondErrorDetails(w, http.StatusBadRequest, CodeValidationError,
			"content failed validation", map[string]interface{}{
				"errors": verr.Result.Errors,
			})
	case errors.Is(err, bank.ErrNotFound):
		respondError(w, http.StatusNotFound, CodeNotFound,
			"no content exists for the requested slot", nil)
	case errors.Is(err, backup.ErrSnapshotNotFound):
		respondError(w, http.StatusNotFound, CodeNotFound,
			"snapshot not found", nil)
	case errors.Is(err, bank.ErrInvalidSlot):
		respondError(w, http.StatusBadRequest, CodeInvalidSlot,
			"slot id outside the bank range", err)
	case errors.Is(err, rotation.ErrDateBeforeLaunch):
		respondError(w, http.StatusBadRequest, CodeDateBeforeLaunch,
			"requested date precedes the rotation launch date", nil)
	case errors.Is(err, serving.ErrInvalidDate):
		respondError(w, http.StatusBadRequest, CodeInvalidDate,
			"date must be formatted YYYY-MM-DD", nil)
	case errors.Is(err, injection.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, CodeRateLimitExceeded,
			"injection rate limit exceeded, retry later", nil)
	case errors.Is(err, injection.ErrUnknownStrategy):
		respondError(w, http.StatusBadRequest, CodeInvalidRequest,
			"unknown injection strategy", err)
	case errors.Is(err, backup.ErrNotRestorable):
		respondError(w, http.StatusBadRequest, CodeRestoreFailed,
			"snapshot is not restorable", err)
	case errors.Is(err, backup.ErrChecksumMismatch):
		respondError(w, http.StatusConflict, CodeRestoreFailed,
			"snapshot failed integrity verification", err)
	default:
		respondError(w, http.StatusInternalServerError, CodeStorageError,
			"internal storage error", err)
	}
}
