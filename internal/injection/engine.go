// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

// Package injection implements the content injection pipeline shared by
// every puzzle type: validate the candidate, pick a replacement slot,
// snapshot the outgoing state, commit the new record, and append an
// audit entry whatever the outcome.
package injection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dailypuzzlepost/puzzlebank/internal/audit"
	"github.com/dailypuzzlepost/puzzlebank/internal/backup"
	"github.com/dailypuzzlepost/puzzlebank/internal/bank"
	"github.com/dailypuzzlepost/puzzlebank/internal/events"
	"github.com/dailypuzzlepost/puzzlebank/internal/logging"
	"github.com/dailypuzzlepost/puzzlebank/internal/metrics"
	"github.com/dailypuzzlepost/puzzlebank/internal/models"
	"github.com/dailypuzzlepost/puzzlebank/internal/rotation"
	"github.com/dailypuzzlepost/puzzlebank/internal/validation"
)

// Sentinel errors for injection requests.
var (
	// ErrUnknownStrategy indicates an unrecognized slot-selection strategy.
	ErrUnknownStrategy = errors.New("unknown injection strategy")

	// ErrRateLimited indicates the injection throttle rejected the attempt.
	ErrRateLimited = errors.New("injection rate limit exceeded")
)

// ValidationError carries the complete list of violated rules for an
// invalid candidate. No state changes occur before it is returned.
type ValidationError struct {
	Result validation.Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("content validation failed: %s", strings.Join(e.Result.Errors, "; "))
}

// Request is one injection attempt.
type Request struct {
	PuzzleType   models.PuzzleType
	Payload      json.RawMessage
	Strategy     audit.Strategy
	SlotID       int // required for replace_specific
	Reason       string
	QualityScore *float64
	InjectedBy   string
}

// Result reports a committed injection.
type Result struct {
	ContentID         string            `json:"content_id"`
	ReplacedContentID string            `json:"replaced_content_id,omitempty"`
	SlotID            int               `json:"slot_id"`
	PuzzleType        models.PuzzleType `json:"puzzle_type"`
	BackupID          string            `json:"backup_id,omitempty"`
	Validation        validation.Result `json:"validation"`
}

// Engine executes injections. All collaborators are injected at
// construction; the engine holds no global state.
type Engine struct {
	store        bank.Store
	backups      *backup.Manager
	auditLog     audit.Store
	publisher    message.Publisher
	clocks       map[models.PuzzleType]*rotation.Clock
	limiter      *rate.Limiter
	defaultActor string
	now          func() time.Time
}

// Config bundles the engine's collaborators.
type Config struct {
	Store     bank.Store
	Backups   *backup.Manager
	AuditLog  audit.Store
	Publisher message.Publisher
	Clocks    map[models.PuzzleType]*rotation.Clock

	// InjectionsPerHour throttles automation callers. Zero disables the
	// throttle.
	InjectionsPerHour int

	// DefaultActor is recorded as injected_by when the request does not
	// name one. Empty defaults to "automation".
	DefaultActor string

	// Now overrides the clock for tests.
	Now func() time.Time
}

// NewEngine constructs an injection engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("bank store is required")
	}
	if cfg.Backups == nil {
		return nil, fmt.Errorf("backup manager is required")
	}
	if cfg.AuditLog == nil {
		return nil, fmt.Errorf("audit store is required")
	}
	if len(cfg.Clocks) == 0 {
		return nil, fmt.Errorf("at least one rotation clock is required")
	}

	var limiter *rate.Limiter
	if cfg.InjectionsPerHour > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.InjectionsPerHour)/3600.0), 3)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	actor := cfg.DefaultActor
	if actor == "" {
		actor = "automation"
	}

	return &Engine{
		store:        cfg.Store,
		backups:      cfg.Backups,
		auditLog:     cfg.AuditLog,
		publisher:    cfg.Publisher,
		clocks:       cfg.Clocks,
		limiter:      limiter,
		defaultActor: actor,
		now:          now,
	}, nil
}

// Inject runs the full pipeline for one candidate. The order is fixed:
// validation precedes the backup, the backup precedes the destructive
// write, and the audit entry reflects the true outcome even when the
// write fails.
func (e *Engine) Inject(ctx context.Context, req Request) (*Result, error) {
	clock, ok := e.clocks[req.PuzzleType]
	if !ok {
		return nil, fmt.Errorf("no rotation configured for puzzle type %q", req.PuzzleType)
	}
	if req.Strategy == "" {
		req.Strategy = audit.StrategyReplaceOldest
	}
	if !req.Strategy.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, req.Strategy)
	}
	if req.InjectedBy == "" {
		req.InjectedBy = e.defaultActor
	}

	if e.limiter != nil && !e.limiter.Allow() {
		metrics.InjectionsTotal.WithLabelValues(string(req.PuzzleType), "rate_limited").Inc()
		return nil, ErrRateLimited
	}

	// Step 1: validate. Invalid candidates change no state but still
	// leave an audit entry so the attempt is traceable.
	result := validation.Validate(req.PuzzleType, req.Payload)
	validationJSON, _ := json.Marshal(result)
	if !result.IsValid {
		metrics.InjectionsTotal.WithLabelValues(string(req.PuzzleType), "validation_failed").Inc()
		metrics.ValidationErrorsTotal.WithLabelValues(string(req.PuzzleType)).Add(float64(len(result.Errors)))
		e.appendAudit(ctx, &audit.InjectionRecord{
			ID:               uuid.New().String(),
			CreatedAt:        e.now().UTC(),
			PuzzleType:       req.PuzzleType,
			Strategy:         req.Strategy,
			QualityScore:     req.QualityScore,
			Reason:           req.Reason,
			InjectedBy:       req.InjectedBy,
			ValidationResult: validationJSON,
			Success:          false,
			ErrorMessage:     "content validation failed",
		})
		return nil, &ValidationError{Result: result}
	}

	// Step 2: resolve the target slot.
	slotID, err := e.resolveSlot(ctx, req, clock.CycleLength())
	if err != nil {
		return nil, err
	}

	// Step 3: pre-injection snapshot. Failure is non-fatal here; the
	// injection proceeds and the audit entry simply lacks a backup ID.
	backupID := ""
	snap, err := e.backups.SnapshotBank(ctx, req.PuzzleType, backup.TypePreInjection,
		fmt.Sprintf("Before injection into slot %d", slotID))
	if err != nil {
		metrics.BackupsTotal.WithLabelValues(string(backup.TypePreInjection), "error").Inc()
		logger := logging.Ctx(ctx)
		logger.Warn().
			Err(err).
			Str("puzzle_type", string(req.PuzzleType)).
			Int("slot_id", slotID).
			Msg("pre-injection backup failed, continuing")
	} else {
		metrics.BackupsTotal.WithLabelValues(string(backup.TypePreInjection), "success").Inc()
		backupID = snap.ID
	}

	// Step 4: build the replacement record.
	replacedContentID := ""
	if existing, err := e.store.Get(ctx, req.PuzzleType, slotID); err == nil {
		replacedContentID = existing.ContentID
	} else if !bank.IsNotFound(err) {
		return nil, fmt.Errorf("reading outgoing record: %w", err)
	}

	contentID := models.ContentID(req.PuzzleType, slotID)
	rec := &models.PuzzleRecord{
		SlotID:     slotID,
		ContentID:  contentID,
		PuzzleType: req.PuzzleType,
		Payload:    req.Payload,
		Metadata: models.RecordMetadata{
			CreatedAt:         e.now().UTC().Format(time.RFC3339),
			InjectedBy:        req.InjectedBy,
			InjectionReason:   req.Reason,
			InjectionStrategy: string(req.Strategy),
			QualityScore:      req.QualityScore,
			ReplacedContentID: replacedContentID,
		},
	}

	auditRec := &audit.InjectionRecord{
		ID:                uuid.New().String(),
		CreatedAt:         e.now().UTC(),
		PuzzleType:        req.PuzzleType,
		ContentID:         contentID,
		ReplacedContentID: replacedContentID,
		SlotID:            slotID,
		Strategy:          req.Strategy,
		QualityScore:      req.QualityScore,
		Reason:            req.Reason,
		InjectedBy:        req.InjectedBy,
		ValidationResult:  validationJSON,
		BackupID:          backupID,
	}

	// Step 5: the sole mutating write. Step 6: the audit entry is
	// appended on both paths before the error propagates.
	start := time.Now()
	if err := e.store.Put(ctx, req.PuzzleType, slotID, rec); err != nil {
		metrics.InjectionsTotal.WithLabelValues(string(req.PuzzleType), "storage_error").Inc()
		auditRec.Success = false
		auditRec.ErrorMessage = err.Error()
		e.appendAudit(ctx, auditRec)
		return nil, fmt.Errorf("committing %s slot %d: %w", req.PuzzleType, slotID, err)
	}
	metrics.ObserveStoreOperation("put", start)
	metrics.InjectionsTotal.WithLabelValues(string(req.PuzzleType), "success").Inc()

	auditRec.Success = true
	e.appendAudit(ctx, auditRec)

	// Step 7: let the serving facade drop its cached pointer. The
	// facade ignores events for slots it is not caching.
	if e.publisher != nil {
		ev := events.SlotUpdated{
			PuzzleType: req.PuzzleType,
			SlotID:     slotID,
			ContentID:  contentID,
			OccurredAt: e.now().UTC(),
		}
		if err := events.PublishSlotUpdated(e.publisher, ev); err != nil {
			logger := logging.Ctx(ctx)
			logger.Warn().Err(err).Msg("slot-updated event publish failed")
		}
	}

	logger := logging.Ctx(ctx)
	logger.Info().
		Str("puzzle_type", string(req.PuzzleType)).
		Int("slot_id", slotID).
		Str("content_id", contentID).
		Str("replaced", replacedContentID).
		Str("strategy", string(req.Strategy)).
		Msg("content injected")

	return &Result{
		ContentID:         contentID,
		ReplacedContentID: replacedContentID,
		SlotID:            slotID,
		PuzzleType:        req.PuzzleType,
		BackupID:          backupID,
		Validation:        result,
	}, nil
}

// resolveSlot applies the slot-selection strategy.
func (e *Engine) resolveSlot(ctx context.Context, req Request, cycleLength int) (int, error) {
	switch req.Strategy {
	case audit.StrategyReplaceSpecific:
		if req.SlotID < 1 || req.SlotID > cycleLength {
			return 0, fmt.Errorf("%w: %d not in [1, %d]", bank.ErrInvalidSlot, req.SlotID, cycleLength)
		}
		return req.SlotID, nil
	case audit.StrategyReplaceOldest:
		return e.findOldestSlot(ctx, req.PuzzleType, cycleLength)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, req.Strategy)
	}
}

// findOldestSlot scans the bank for the slot with the earliest creation
// timestamp, ties broken by lowest slot id. Unseeded slots and records
// with unparsable timestamps count as infinitely old, so a partially
// seeded bank fills up before any seeded slot is evicted.
func (e *Engine) findOldestSlot(ctx context.Context, pt models.PuzzleType, cycleLength int) (int, error) {
	bestSlot := 0
	var bestTime time.Time

	for slot := 1; slot <= cycleLength; slot++ {
		rec, err := e.store.Get(ctx, pt, slot)
		if err != nil {
			if bank.IsNotFound(err) {
				// The lowest infinitely-old slot wins outright.
				return slot, nil
			}
			return 0, fmt.Errorf("scanning %s slot %d: %w", pt, slot, err)
		}

		created, ok := rec.Metadata.CreatedAtTime()
		if !ok {
			return slot, nil
		}

		if bestSlot == 0 || created.Before(bestTime) {
			bestSlot = slot
			bestTime = created
		}
	}

	if bestSlot == 0 {
		return 1, nil
	}
	return bestSlot, nil
}

// appendAudit saves an injection record. Audit failures are logged but
// never fail the injection; the breaker-wrapped store keeps a sick
// backend from stalling the pipeline.
func (e *Engine) appendAudit(ctx context.Context, rec *audit.InjectionRecord) {
	if err := e.auditLog.Save(ctx, rec); err != nil {
		logger := logging.Ctx(ctx)
		logger.Error().
			Err(err).
			Str("puzzle_type", string(rec.PuzzleType)).
			Int("slot_id", rec.SlotID).
			Str("operation", "audit_save").
			Msg("injection audit write failed")
	}
}
