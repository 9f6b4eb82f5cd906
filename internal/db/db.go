// Package db provides PostgreSQL database access for assessment storage.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/itype-engine/internal/types"
)

// defaultListLimit caps ListAssessments results when the caller passes no
// limit of its own.
const defaultListLimit = 50

// ErrAssessmentNotFound is returned when an operation targets an
// assessment ID with no matching row.
var ErrAssessmentNotFound = errors.New("assessment not found")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect opens a connection pool against databaseURL and verifies it
// with a ping before returning.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close releases the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// SaveAssessment stores a completed assessment and returns its ID. Noise and
// policy record the simulation settings the run used.
func (db *DB) SaveAssessment(ctx context.Context, result *types.AssessmentResult, noise float64, policy string) (uuid.UUID, error) {
	scores, err := json.Marshal(result.Scores)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal scores: %w", err)
	}
	probabilities, err := json.Marshal(result.Report.Probabilities)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal probabilities: %w", err)
	}
	distances, err := json.Marshal(result.Diagnostics.Distances)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal distances: %w", err)
	}
	energies, err := json.Marshal(result.Diagnostics.Energies)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal energies: %w", err)
	}
	rawAnswers, err := json.Marshal(result.RawAnswers)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal raw answers: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO assessments (primary_archetype, stability, shadow_archetype, shadow_probability,
		                          scores, probabilities, distances, energies, raw_answers,
		                          trials, noise, policy)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		result.Match.Name, result.Report.Stability, result.Report.Shadow.Name, result.Report.Shadow.Probability,
		scores, probabilities, distances, energies, rawAnswers,
		result.Report.Trials, noise, policy,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save assessment: %w", err)
	}
	return id, nil
}

// GetAssessment retrieves an assessment by ID. Returns nil without error
// when no row matches.
func (db *DB) GetAssessment(ctx context.Context, id uuid.UUID) (*AssessmentRecord, error) {
	var rec AssessmentRecord
	var scores, probabilities, distances, energies, rawAnswers []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, primary_archetype, stability, shadow_archetype, shadow_probability,
		        scores, probabilities, distances, energies, raw_answers,
		        trials, noise, policy, created_at
		 FROM assessments WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Primary, &rec.Stability, &rec.Shadow.Name, &rec.Shadow.Probability,
		&scores, &probabilities, &distances, &energies, &rawAnswers,
		&rec.Trials, &rec.Noise, &rec.Policy, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	if err := unmarshalColumn(scores, &rec.Scores); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(probabilities, &rec.Probabilities); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(distances, &rec.Distances); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(energies, &rec.Energies); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(rawAnswers, &rec.RawAnswers); err != nil {
		return nil, err
	}

	return &rec, nil
}

func unmarshalColumn(data []byte, dest any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode assessment column: %w", err)
	}
	return nil
}

// ListAssessments retrieves stored assessments, newest first. An archetype
// filter narrows the result to primaries matching that substring.
func (db *DB) ListAssessments(ctx context.Context, filters AssessmentFilters) ([]AssessmentSummary, error) {
	if filters.Limit == 0 {
		filters.Limit = defaultListLimit
	}

	query := `SELECT id, primary_archetype, stability, shadow_archetype, created_at
		FROM assessments`
	var args []any
	if filters.Archetype != "" {
		query += ` WHERE primary_archetype ILIKE $1`
		args = append(args, "%"+filters.Archetype+"%")
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var assessments []AssessmentSummary
	for rows.Next() {
		var a AssessmentSummary
		if err := rows.Scan(&a.ID, &a.Primary, &a.Stability, &a.Shadow, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		assessments = append(assessments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assessments: %w", err)
	}
	return assessments, nil
}

// DeleteAssessment deletes an assessment by ID. Returns
// ErrAssessmentNotFound when no row matches.
func (db *DB) DeleteAssessment(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrAssessmentNotFound, id)
	}
	return nil
}
