// Package db provides PostgreSQL persistence for processed resumes.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-ats/internal/types"
)

// DefaultListLimit is used when List is called without a positive limit
const DefaultListLimit = 50

// ErrNotFound is returned when no row matches the requested ID
var ErrNotFound = errors.New("resume not found")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// StoreParams is everything persisted for one processed resume
type StoreParams struct {
	Filename   string
	FileData   []byte
	Extracted  types.ResumeRecord
	Validation types.Validation
	Report     types.ATSReport
	// Enhanced is nil when enhancement was skipped.
	Enhanced *types.EnhancedResume
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// InitSchema creates the resumes table if it does not exist
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Store inserts one processed resume and returns its ID
func (db *DB) Store(ctx context.Context, p StoreParams) (uuid.UUID, error) {
	args, err := p.columns()
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO resumes (filename, file_data, extracted_json, validation, ats_report, enhanced_json)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		args...,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to store resume %s: %w", p.Filename, err)
	}
	return id, nil
}

// Get retrieves a stored resume by ID, without the original file bytes
func (db *DB) Get(ctx context.Context, id uuid.UUID) (*types.StoredResume, error) {
	var (
		out                                     types.StoredResume
		extracted, validation, report, enhanced []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, filename, extracted_json, validation, ats_report, enhanced_json, created_at
		 FROM resumes WHERE id = $1`,
		id,
	).Scan(&out.ID, &out.Filename, &extracted, &validation, &report, &enhanced, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get resume %s: %w", id, err)
	}

	if err := decodeRow(&out, extracted, validation, report, enhanced); err != nil {
		return nil, fmt.Errorf("failed to decode resume %s: %w", id, err)
	}
	return &out, nil
}

// GetFile retrieves the original uploaded bytes of a stored resume
func (db *DB) GetFile(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var data []byte
	err := db.pool.QueryRow(ctx, `SELECT file_data FROM resumes WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get file for %s: %w", id, err)
	}
	return data, nil
}

// List retrieves the most recent stored resumes, newest first
func (db *DB) List(ctx context.Context, limit int) ([]types.StoredResumeSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, filename, COALESCE(extracted_json->>'name', ''),
		        COALESCE((ats_report->>'ats_score')::int, 0),
		        enhanced_json IS NOT NULL, created_at
		 FROM resumes ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	summaries := []types.StoredResumeSummary{}
	for rows.Next() {
		var s types.StoredResumeSummary
		if err := rows.Scan(&s.ID, &s.Filename, &s.Name, &s.ATSScore, &s.Enhanced, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	return summaries, nil
}

// columns encodes the insert arguments in column order
func (p StoreParams) columns() ([]any, error) {
	extracted, err := json.Marshal(p.Extracted)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extracted record: %w", err)
	}
	validation, err := json.Marshal(p.Validation)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal validation: %w", err)
	}
	report, err := json.Marshal(p.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ATS report: %w", err)
	}
	var enhanced []byte
	if p.Enhanced != nil {
		if enhanced, err = json.Marshal(p.Enhanced); err != nil {
			return nil, fmt.Errorf("failed to marshal enhanced resume: %w", err)
		}
	}
	return []any{p.Filename, p.FileData, extracted, validation, report, enhanced}, nil
}

func decodeRow(out *types.StoredResume, extracted, validation, report, enhanced []byte) error {
	if err := json.Unmarshal(extracted, &out.Extracted); err != nil {
		return fmt.Errorf("extracted_json: %w", err)
	}
	if err := json.Unmarshal(validation, &out.Validation); err != nil {
		return fmt.Errorf("validation: %w", err)
	}
	if err := json.Unmarshal(report, &out.Report); err != nil {
		return fmt.Errorf("ats_report: %w", err)
	}
	if enhanced != nil {
		out.Enhanced = &types.EnhancedResume{}
		if err := json.Unmarshal(enhanced, out.Enhanced); err != nil {
			return fmt.Errorf("enhanced_json: %w", err)
		}
	}
	out.Extracted.Normalize()
	return nil
}
