// Package storage persists analysis history in Postgres. The store is
// optional: a nil *Store disables persistence without any caller branching.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnalysisRecord is one persisted analysis run. The raw model response is
// kept verbatim so a report can be regenerated later.
type AnalysisRecord struct {
	ID          string    `json:"id"`
	PatientName string    `json:"patient_name"`
	Model       string    `json:"model"`
	RawResponse string    `json:"raw_response"`
	CreatedAt   time.Time `json:"created_at"`
}

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Enabled reports whether a database is wired in. All methods are safe to
// call on a nil or disabled store.
func (s *Store) Enabled() bool {
	return s != nil && s.pool != nil
}

func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.pool.Ping(ctx)
}

// EnsureSchema creates the analyses table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS analyses (
			id UUID PRIMARY KEY,
			patient_name TEXT NOT NULL,
			model TEXT NOT NULL,
			raw_response TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure analyses schema: %w", err)
	}
	return nil
}

// SaveAnalysis inserts one analysis row and returns its generated ID. On a
// disabled store it is a no-op returning an empty ID.
func (s *Store) SaveAnalysis(ctx context.Context, patientName, model, rawResponse string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	id := uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO analyses (id, patient_name, model, raw_response) VALUES ($1, $2, $3, $4)`,
		id, patientName, model, rawResponse,
	)
	if err != nil {
		return "", fmt.Errorf("save analysis: %w", err)
	}
	return id, nil
}

// RecentAnalyses lists the newest analyses first, up to limit.
func (s *Store) RecentAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	if !s.Enabled() {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, patient_name, model, raw_response, created_at
		 FROM analyses ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		if err := rows.Scan(&rec.ID, &rec.PatientName, &rec.Model, &rec.RawResponse, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return out, nil
}
