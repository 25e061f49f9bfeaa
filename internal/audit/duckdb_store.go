// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"github.com/dailypuzzlepost/puzzlebank/internal/logging"
	"github.com/dailypuzzlepost/puzzlebank/internal/models"
)

// DuckDBStore implements Store using DuckDB for durable audit logging.
type DuckDBStore struct {
	db *sql.DB
}

// OpenDuckDB opens (or creates) a DuckDB database at path and ensures
// the injection_records table exists. Pass ":memory:" for an ephemeral
// database.
func OpenDuckDB(ctx context.Context, path string) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb at %s: %w", path, err)
	}

	s := &DuckDBStore{db: db}
	if err := s.createTable(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logging.Info().Str("component", "audit").Str("path", path).Msg("duckdb audit store opened")
	return s, nil
}

// NewDuckDBStore wraps an existing connection. The caller is responsible
// for ensuring the injection_records table exists.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

func (s *DuckDBStore) createTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS injection_records (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			puzzle_type TEXT NOT NULL,
			content_id TEXT NOT NULL,
			replaced_content_id TEXT,
			slot_id INTEGER NOT NULL,
			strategy TEXT NOT NULL,
			quality_score DOUBLE,
			reason TEXT,
			injected_by TEXT,
			validation_result JSON,
			backup_id TEXT,
			success BOOLEAN NOT NULL,
			error_message TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_injection_created_at ON injection_records(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_injection_puzzle_type ON injection_records(puzzle_type);
		CREATE INDEX IF NOT EXISTS idx_injection_success ON injection_records(success);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating injection_records table: %w", err)
	}
	return nil
}

// Save appends one injection record.
func (s *DuckDBStore) Save(ctx context.Context, rec *InjectionRecord) error {
	query := `
		INSERT INTO injection_records (
			id, created_at, puzzle_type, content_id, replaced_content_id,
			slot_id, strategy, quality_score, reason, injected_by,
			validation_result, backup_id, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.CreatedAt,
		string(rec.PuzzleType),
		rec.ContentID,
		nullString(rec.ReplacedContentID),
		rec.SlotID,
		string(rec.Strategy),
		nullFloat(rec.QualityScore),
		nullString(rec.Reason),
		nullString(rec.InjectedBy),
		nullString(string(rec.ValidationResult)),
		nullString(rec.BackupID),
		rec.Success,
		nullString(rec.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("saving injection record %s: %w", rec.ID, err)
	}
	return nil
}

// List returns matching records, newest first.
func (s *DuckDBStore) List(ctx context.Context, opts ListOptions) ([]*InjectionRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	var conditions []string
	var args []interface{}
	if opts.PuzzleType != "" {
		conditions = append(conditions, "puzzle_type = ?")
		args = append(args, string(opts.PuzzleType))
	}
	if opts.Success != nil {
		conditions = append(conditions, "success = ?")
		args = append(args, *opts.Success)
	}

	query := `
		SELECT id, created_at, puzzle_type, content_id, replaced_content_id,
		       slot_id, strategy, quality_score, reason, injected_by,
		       validation_result, backup_id, success, error_message
		FROM injection_records
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing injection records: %w", err)
	}
	defer rows.Close()

	var out []*InjectionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating injection records: %w", err)
	}
	return out, nil
}

func scanRecord(rows *sql.Rows) (*InjectionRecord, error) {
	var rec InjectionRecord
	var puzzleType, strategy string
	var replaced, reason, injectedBy, validation sql.NullString
	var backupID, errorMessage sql.NullString
	var qualityScore sql.NullFloat64
	var createdAt time.Time
	err := rows.Scan(
		&rec.ID, &createdAt, &puzzleType, &rec.ContentID, &replaced,
		&rec.SlotID, &strategy, &qualityScore, &reason, &injectedBy,
		&validation, &backupID, &rec.Success, &errorMessage,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning injection record: %w", err)
	}

	rec.CreatedAt = createdAt
	rec.PuzzleType = models.PuzzleType(puzzleType)
	rec.Strategy = Strategy(strategy)
	rec.ReplacedContentID = replaced.String
	rec.Reason = reason.String
	rec.InjectedBy = injectedBy.String
	rec.BackupID = backupID.String
	rec.ErrorMessage = errorMessage.String
	if validation.Valid {
		rec.ValidationResult = []byte(validation.String)
	}
	if qualityScore.Valid {
		score := qualityScore.Float64
		rec.QualityScore = &score
	}
	return &rec, nil
}

// Ping verifies database connectivity.
func (s *DuckDBStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
