// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/dailypuzzlepost/puzzlebank/internal/audit"
	"github.com/dailypuzzlepost/puzzlebank/internal/backup"
	"github.com/dailypuzzlepost/puzzlebank/internal/injection"
	"github.com/dailypuzzlepost/puzzlebank/internal/models"
)

// injectRequest is the wire form of an injection call.
type injectRequest struct {
	Payload      json.RawMessage `json:"payload"`
	Strategy     string          `json:"strategy,omitempty"`
	SlotID       int             `json:"slot_id,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	QualityScore *float64        `json:"quality_score,omitempty"`
	InjectedBy   string          `json:"injected_by,omitempty"`
}

// handleInject validates and commits new content into the bank.
func (router *Router) handleInject(w http.ResponseWriter, r *http.Request) {
	pt, ok := puzzleTypeParam(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "unreadable request body", err)
		return
	}

	var req injectRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "malformed JSON request", err)
		return
	}
	if len(req.Payload) == 0 {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "payload is required", nil)
		return
	}

	res, err := router.engine.Inject(r.Context(), injection.Request{
		PuzzleType:   pt,
		Payload:      req.Payload,
		Strategy:     audit.Strategy(req.Strategy),
		SlotID:       req.SlotID,
		Reason:       req.Reason,
		QualityScore: req.QualityScore,
		InjectedBy:   req.InjectedBy,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, res)
}

// backupRequest is the wire form of a manual snapshot call.
type backupRequest struct {
	SlotID      int    `json:"slot_id,omitempty"` // 0 snapshots the whole bank
	Description string `json:"description,omitempty"`
}

// handleCreateBackup takes a manual snapshot of a bank or single slot.
func (router *Router) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	pt, ok := puzzleTypeParam(w, r)
	if !ok {
		return
	}

	var req backupRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxPayloadBytes)).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, CodeInvalidRequest, "malformed JSON request", err)
			return
		}
	}

	var (
		snap *backup.Snapshot
		err  error
	)
	if req.SlotID > 0 {
		snap, err = router.backups.SnapshotSlot(r.Context(), pt, req.SlotID, backup.TypeManual, req.Description)
	} else {
		snap, err = router.backups.SnapshotBank(r.Context(), pt, backup.TypeManual, req.Description)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeBackupFailed, "snapshot failed", err)
		return
	}
	respondSuccess(w, http.StatusCreated, snap)
}

// handleListBackups lists snapshots, optionally filtered by type.
func (router *Router) handleListBackups(w http.ResponseWriter, r *http.Request) {
	var pt models.PuzzleType
	if raw := r.URL.Query().Get("puzzle_type"); raw != "" {
		pt = models.PuzzleType(raw)
		if !pt.Valid() {
			respondError(w, http.StatusBadRequest, CodeInvalidRequest, "unknown puzzle type filter", nil)
			return
		}
	}

	snaps := router.backups.List(pt, getIntParam(r, "limit", 100))
	respondSuccess(w, http.StatusOK, snaps)
}

// handleRestore rolls a bank back to a snapshot.
func (router *Router) handleRestore(w http.ResponseWriter, r *http.Request) {
	res, err := router.backups.Restore(r.Context(), chi.URLParam(r, "snapshotID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, res)
}

// handleListAudit returns injection history, newest first.
func (router *Router) handleListAudit(w http.ResponseWriter, r *http.Request) {
	opts := audit.ListOptions{
		Limit: getIntParam(r, "limit", 100),
	}
	if raw := r.URL.Query().Get("puzzle_type"); raw != "" {
		pt := models.PuzzleType(raw)
		if !pt.Valid() {
			respondError(w, http.StatusBadRequest, CodeInvalidRequest, "unknown puzzle type filter", nil)
			return
		}
		opts.PuzzleType = pt
	}
	if raw := r.URL.Query().Get("success"); raw != "" {
		success := raw == "true"
		opts.Success = &success
	}

	recs, err := router.auditLog.List(r.Context(), opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeStorageError, "audit query failed", err)
		return
	}
	respondSuccess(w, http.StatusOK, recs)
}
