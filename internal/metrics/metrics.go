// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

// Package metrics provides Prometheus instrumentation for the rotation
// service: serve traffic, injection outcomes, validation failures, and
// backup activity. Collectors are registered via promauto and exposed
// on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ServesTotal counts puzzle-record lookups by type and outcome
	// ("hit", "not_found", "error").
	ServesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "puzzlebank_serves_total",
			Help: "Total puzzle record lookups",
		},
		[]string{"puzzle_type", "outcome"},
	)

	// PointerCacheHits counts serves answered from the rotation pointer
	// cache.
	PointerCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "puzzlebank_pointer_cache_hits_total",
			Help: "Serves answered from the rotation pointer cache",
		},
	)

	// InjectionsTotal counts injection attempts by type and outcome
	// ("success", "validation_failed", "storage_error", "rate_limited").
	InjectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "puzzlebank_injections_total",
			Help: "Total injection attempts",
		},
		[]string{"puzzle_type", "outcome"},
	)

	// ValidationErrorsTotal counts individual rule violations reported
	// by the content validators.
	ValidationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "puzzlebank_validation_errors_total",
			Help: "Total content validation rule violations",
		},
		[]string{"puzzle_type"},
	)

	// BackupsTotal counts snapshots by type and outcome.
	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "puzzlebank_backups_total",
			Help: "Total bank snapshots",
		},
		[]string{"backup_type", "outcome"},
	)

	// StoreOperationDuration observes bank store latency.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "puzzlebank_store_operation_duration_seconds",
			Help:    "Duration of bank store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// HTTPRequestDuration observes API latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "puzzlebank_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

// ObserveStoreOperation records one bank store call.
func ObserveStoreOperation(operation string, start time.Time) {
	StoreOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(route, method string, status int, start time.Time) {
	HTTPRequestDuration.
		WithLabelValues(route, method, strconv.Itoa(status)).
		Observe(time.Since(start).Seconds())
}
