package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"assignment-scanner/internal/database"
	"assignment-scanner/internal/domain/match"

	"github.com/google/uuid"
)

type MatchRepository interface {
	UpsertMatch(ctx context.Context, jobID, consultantID uuid.UUID, score float64, reason match.Reason) (match.Match, error)
	GetMatchesForJob(ctx context.Context, jobID uuid.UUID, limit int) ([]match.Match, error)
	CountMatchesSince(ctx context.Context, since time.Time) (int, error)
	CountHighQualityMatchesSince(ctx context.Context, since time.Time, minScore float64) (int, error)
}

type PostgresMatchRepository struct {
	db database.DB
}

func NewPostgresMatchRepository(db database.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

// UpsertMatch replaces any prior match for the same (job, consultant) pair.
func (r *PostgresMatchRepository) UpsertMatch(ctx context.Context, jobID, consultantID uuid.UUID, score float64, reason match.Reason) (match.Match, error) {
	if jobID == uuid.Nil || consultantID == uuid.Nil {
		return match.Match{}, fmt.Errorf("nil job/consultant id")
	}

	reasonJSON, err := json.Marshal(reason)
	if err != nil {
		return match.Match{}, fmt.Errorf("marshal reason: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO job_consultant_matches (id, job_id, consultant_id, score, reason, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (job_id, consultant_id) DO UPDATE SET
			score = EXCLUDED.score,
			reason = EXCLUDED.reason,
			created_at = EXCLUDED.created_at
		 RETURNING id, job_id, consultant_id, score, reason, created_at`,
		uuid.New(), jobID, consultantID, score, reasonJSON, time.Now().UTC())

	return scanMatch(row)
}

func (r *PostgresMatchRepository) GetMatchesForJob(ctx context.Context, jobID uuid.UUID, limit int) ([]match.Match, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, job_id, consultant_id, score, reason, created_at
		 FROM job_consultant_matches
		 WHERE job_id = $1
		 ORDER BY score DESC
		 LIMIT $2`,
		jobID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []match.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresMatchRepository) CountMatchesSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_consultant_matches WHERE created_at >= $1`, since).Scan(&n)
	return n, err
}

func (r *PostgresMatchRepository) CountHighQualityMatchesSince(ctx context.Context, since time.Time, minScore float64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_consultant_matches WHERE created_at >= $1 AND score >= $2`,
		since, minScore).Scan(&n)
	return n, err
}

func scanMatch(row database.Row) (match.Match, error) {
	var m match.Match
	var reasonJSON []byte
	if err := row.Scan(&m.ID, &m.JobID, &m.ConsultantID, &m.Score, &reasonJSON, &m.CreatedAt); err != nil {
		return match.Match{}, err
	}
	if len(reasonJSON) > 0 {
		if err := json.Unmarshal(reasonJSON, &m.Reason); err != nil {
			return match.Match{}, fmt.Errorf("unmarshal reason: %w", err)
		}
	}
	return m, nil
}
