// Package store provides PostgreSQL persistence for screening outputs.
// The pipeline itself is stateless; the CLI hands bundles and evaluations
// to this store when a database URL is configured.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/repo-screener/internal/types"
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the schema if it does not exist. Statements run one at
// a time; each is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS screening_runs (
			id UUID PRIMARY KEY,
			repo_url TEXT NOT NULL,
			job_id TEXT,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS artifact_bundles (
			id TEXT PRIMARY KEY,
			run_id UUID REFERENCES screening_runs(id),
			candidate_github TEXT NOT NULL,
			repo_url TEXT NOT NULL,
			extracted_at TIMESTAMPTZ NOT NULL,
			content JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS evaluations (
			id TEXT PRIMARY KEY,
			run_id UUID REFERENCES screening_runs(id),
			bundle_id TEXT NOT NULL REFERENCES artifact_bundles(id),
			job_id TEXT NOT NULL,
			overall_score INT NOT NULL,
			confidence TEXT NOT NULL,
			evaluated_at TIMESTAMPTZ NOT NULL,
			content JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// CreateRun records the start of a screening run and returns its id.
func (s *Store) CreateRun(ctx context.Context, repoURL, jobID string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO screening_runs (id, repo_url, job_id, status) VALUES ($1, $2, $3, 'running')`,
		id, repoURL, nullIfEmpty(jobID),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a screening run finished with the given status.
func (s *Store) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE screening_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveBundle stores an artifact bundle as JSON.
func (s *Store) SaveBundle(ctx context.Context, runID uuid.UUID, bundle *types.ArtifactBundle) error {
	content, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO artifact_bundles (id, run_id, candidate_github, repo_url, extracted_at, content)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		bundle.ID, runUUID(runID), bundle.CandidateGithub, bundle.RepoURL, bundle.ExtractedAt, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save bundle %s: %w", bundle.ID, err)
	}
	return nil
}

// GetBundle retrieves a bundle by id. Returns nil without error when the
// bundle does not exist.
func (s *Store) GetBundle(ctx context.Context, id string) (*types.ArtifactBundle, error) {
	var content []byte
	err := s.pool.QueryRow(ctx,
		`SELECT content FROM artifact_bundles WHERE id = $1`, id,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bundle %s: %w", id, err)
	}

	var bundle types.ArtifactBundle
	if err := json.Unmarshal(content, &bundle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bundle %s: %w", id, err)
	}
	return &bundle, nil
}

// SaveEvaluation stores an evaluation result as JSON.
func (s *Store) SaveEvaluation(ctx context.Context, runID uuid.UUID, evaluation *types.EvaluationResult) error {
	content, err := json.Marshal(evaluation)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO evaluations (id, run_id, bundle_id, job_id, overall_score, confidence, evaluated_at, content)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		evaluation.ID, runUUID(runID), evaluation.ArtifactBundleID, evaluation.JobID,
		evaluation.OverallScore, string(evaluation.Confidence), evaluation.EvaluatedAt, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save evaluation %s: %w", evaluation.ID, err)
	}
	return nil
}

// ListEvaluations retrieves all evaluations for a bundle, newest first.
func (s *Store) ListEvaluations(ctx context.Context, bundleID string) ([]types.EvaluationResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT content FROM evaluations WHERE bundle_id = $1 ORDER BY evaluated_at DESC`,
		bundleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []types.EvaluationResult
	for rows.Next() {
		var content []byte
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		var evaluation types.EvaluationResult
		if err := json.Unmarshal(content, &evaluation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evaluation: %w", err)
		}
		evaluations = append(evaluations, evaluation)
	}
	return evaluations, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func runUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
