// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dailypuzzlepost/puzzlebank/internal/models"
	"github.com/dailypuzzlepost/puzzlebank/internal/validation"
)

// maxPayloadBytes bounds uploaded puzzle payloads.
const maxPayloadBytes = 1 << 20

// puzzleTypeParam resolves and validates the {puzzleType} URL segment.
// A false return means the response has already been written.
func puzzleTypeParam(w http.ResponseWriter, r *http.Request) (models.PuzzleType, bool) {
	pt := models.PuzzleType(chi.URLParam(r, "puzzleType"))
	if !pt.Valid() {
		respondErrorDetails(w, http.StatusNotFound, CodeNotFound,
			"unknown puzzle type", map[string]interface{}{
				"known_types": models.AllPuzzleTypes,
			})
		return "", false
	}
	return pt, true
}

// handleToday serves the puzzle rotated in for the current day.
func (router *Router) handleToday(w http.ResponseWriter, r *http.Request) {
	pt, ok := puzzleTypeParam(w, r)
	if !ok {
		return
	}

	res, err := router.facade.GetToday(r.Context(), pt)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if res.Cached {
		respondCached(w, res)
		return
	}
	respondSuccess(w, http.StatusOK, res)
}

// handleForDate serves the puzzle scheduled for an explicit date.
func (router *Router) handleForDate(w http.ResponseWriter, r *http.Request) {
	pt, ok := puzzleTypeParam(w, r)
	if !ok {
		return
	}

	res, err := router.facade.GetForDate(r.Context(), pt, chi.URLParam(r, "date"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, res)
}

// bankListing summarizes one puzzle type's bank.
type bankListing struct {
	PuzzleType  models.PuzzleType      `json:"puzzle_type"`
	SeededSlots int                    `json:"seeded_slots"`
	TotalSlots  int                    `json:"total_slots"`
	Records     []*models.PuzzleRecord `json:"records"`
}

// handleListBank returns every seeded record in slot order.
func (router *Router) handleListBank(w http.ResponseWriter, r *http.Request) {
	pt, ok := puzzleTypeParam(w, r)
	if !ok {
		return
	}

	state, err := router.facade.RotationStatus(pt)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	records, err := router.facade.ListBank(r.Context(), pt)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, bankListing{
		PuzzleType:  pt,
		SeededSlots: len(records),
		TotalSlots:  state.CycleLength,
		Records:     records,
	})
}

// handleRotationStatus reports the clock position for one puzzle type.
func (router *Router) handleRotationStatus(w http.ResponseWriter, r *http.Request) {
	pt, ok := puzzleTypeParam(w, r)
	if !ok {
		return
	}

	state, err := router.facade.RotationStatus(pt)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, state)
}

// handleValidate dry-runs content validation without touching the bank.
func (router *Router) handleValidate(w http.ResponseWriter, r *http.Request) {
	pt, ok := puzzleTypeParam(w, r)
	if !ok {
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "unreadable request body", err)
		return
	}

	respondSuccess(w, http.StatusOK, validation.Validate(pt, payload))
}

// handleHealth reports aggregate service health. Degraded still returns
// 200 because the read path is up; only unhealthy flips to 503.
func (router *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := router.health.Check(r.Context())
	status := http.StatusOK
	if report.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	respondSuccess(w, status, report)
}
