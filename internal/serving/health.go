// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package serving

import (
	"context"
	"time"

	"github.com/dailypuzzlepost/puzzlebank/internal/audit"
	"github.com/dailypuzzlepost/puzzlebank/internal/bank"
	"github.com/dailypuzzlepost/puzzlebank/internal/models"
)

// Health statuses. A bank below its seed threshold is degraded but
// still serving; an unreachable store is unhealthy.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// BankHealth reports how full one puzzle type's bank is.
type BankHealth struct {
	SeededSlots int    `json:"seeded_slots"`
	TotalSlots  int    `json:"total_slots"`
	Status      string `json:"status"`
}

// HealthReport is the aggregate service health.
type HealthReport struct {
	Status    string                           `json:"status"`
	Banks     map[models.PuzzleType]BankHealth `json:"banks"`
	Checks    map[string]string                `json:"checks"`
	CheckedAt time.Time                        `json:"checked_at"`
}

// HealthChecker probes the stores and counts seeded slots.
type HealthChecker struct {
	store    bank.Store
	auditLog audit.Store
	cycles   map[models.PuzzleType]int

	// minSeededFraction is the fill level below which a bank is
	// reported degraded.
	minSeededFraction float64
}

// NewHealthChecker builds a checker over the given stores. cycles maps
// each served type to its bank size.
func NewHealthChecker(store bank.Store, auditLog audit.Store, cycles map[models.PuzzleType]int) *HealthChecker {
	return &HealthChecker{
		store:             store,
		auditLog:          auditLog,
		cycles:            cycles,
		minSeededFraction: 0.5,
	}
}

// Check runs all probes and aggregates the worst result.
func (h *HealthChecker) Check(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:    StatusHealthy,
		Banks:     make(map[models.PuzzleType]BankHealth, len(h.cycles)),
		Checks:    make(map[string]string, 2),
		CheckedAt: time.Now().UTC(),
	}

	if err := h.store.Ping(ctx); err != nil {
		report.Checks["bank_store"] = err.Error()
		report.Status = StatusUnhealthy
	} else {
		report.Checks["bank_store"] = "ok"
	}

	if err := h.auditLog.Ping(ctx); err != nil {
		report.Checks["audit_store"] = err.Error()
		// The read path survives a sick audit backend.
		if report.Status == StatusHealthy {
			report.Status = StatusDegraded
		}
	} else {
		report.Checks["audit_store"] = "ok"
	}

	if report.Checks["bank_store"] != "ok" {
		return report
	}

	for pt, cycleLength := range h.cycles {
		records, err := h.store.ListAll(ctx, pt, cycleLength)
		if err != nil {
			report.Banks[pt] = BankHealth{TotalSlots: cycleLength, Status: StatusUnhealthy}
			report.Status = StatusUnhealthy
			continue
		}
		bh := BankHealth{
			SeededSlots: len(records),
			TotalSlots:  cycleLength,
			Status:      StatusHealthy,
		}
		if float64(len(records)) < h.minSeededFraction*float64(cycleLength) {
			bh.Status = StatusDegraded
			if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
		}
		report.Banks[pt] = bh
	}
	return report
}
