package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assignment-scanner/internal/database"
	"assignment-scanner/internal/domain/scanning"

	"github.com/google/uuid"
)

type PerformanceRepository interface {
	LogConfigPerformance(ctx context.Context, entry scanning.PerformanceLogEntry) error
	GetPerformanceHistory(ctx context.Context, configID uuid.UUID, window time.Duration) ([]scanning.PerformanceLogEntry, error)
	UpdateConfigPerformanceScore(ctx context.Context, configID uuid.UUID, score float64) error
	UpsertLearnedParameter(ctx context.Context, name, value string, effectiveness float64, configID uuid.UUID) error
	TopLearnedParameters(ctx context.Context, limit int) ([]scanning.LearnedParameter, error)
}

type PostgresPerformanceRepository struct {
	db database.DB
}

func NewPostgresPerformanceRepository(db database.DB) *PostgresPerformanceRepository {
	return &PostgresPerformanceRepository{db: db}
}

// LogConfigPerformance appends one scan cycle's yield. Rows are never updated.
func (r *PostgresPerformanceRepository) LogConfigPerformance(ctx context.Context, entry scanning.PerformanceLogEntry) error {
	if entry.ConfigID == uuid.Nil {
		return fmt.Errorf("missing config_id")
	}
	if entry.ScanDate.IsZero() {
		entry.ScanDate = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO config_performance_log (id, config_id, scan_date, jobs_found, matches_generated, quality_score)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		uuid.New(), entry.ConfigID, entry.ScanDate, entry.JobsFound,
		entry.MatchesGenerated, entry.QualityScore)
	return err
}

func (r *PostgresPerformanceRepository) GetPerformanceHistory(ctx context.Context, configID uuid.UUID, window time.Duration) ([]scanning.PerformanceLogEntry, error) {
	since := time.Now().UTC().Add(-window)
	rows, err := r.db.Query(ctx,
		`SELECT id, config_id, scan_date, jobs_found, matches_generated, quality_score
		 FROM config_performance_log
		 WHERE config_id = $1 AND scan_date >= $2
		 ORDER BY scan_date DESC`,
		configID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scanning.PerformanceLogEntry
	for rows.Next() {
		var e scanning.PerformanceLogEntry
		if err := rows.Scan(&e.ID, &e.ConfigID, &e.ScanDate, &e.JobsFound, &e.MatchesGenerated, &e.QualityScore); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresPerformanceRepository) UpdateConfigPerformanceScore(ctx context.Context, configID uuid.UUID, score float64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE scanning_configs SET performance_score = $2, updated_at = $3 WHERE id = $1`,
		configID, score, time.Now().UTC())
	return err
}

func (r *PostgresPerformanceRepository) UpsertLearnedParameter(ctx context.Context, name, value string, effectiveness float64, configID uuid.UUID) error {
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return nil
	}

	var learnedFrom any
	if configID != uuid.Nil {
		learnedFrom = configID
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO learning_parameters (
			id, parameter_name, parameter_value, effectiveness_score,
			use_count, learned_from_config_id, updated_at
		) VALUES ($1,$2,$3,$4,1,$5,$6)
		ON CONFLICT (parameter_name, parameter_value) DO UPDATE SET
			effectiveness_score = GREATEST(learning_parameters.effectiveness_score, EXCLUDED.effectiveness_score),
			use_count = learning_parameters.use_count + 1,
			learned_from_config_id = EXCLUDED.learned_from_config_id,
			updated_at = EXCLUDED.updated_at`,
		uuid.New(), name, value, effectiveness, learnedFrom, time.Now().UTC())
	return err
}

func (r *PostgresPerformanceRepository) TopLearnedParameters(ctx context.Context, limit int) ([]scanning.LearnedParameter, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, parameter_name, parameter_value, effectiveness_score,
			use_count, learned_from_config_id, updated_at
		 FROM learning_parameters
		 ORDER BY effectiveness_score DESC, use_count DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scanning.LearnedParameter
	for rows.Next() {
		var p scanning.LearnedParameter
		if err := rows.Scan(&p.ID, &p.ParameterName, &p.ParameterValue, &p.EffectivenessScore, &p.UseCount, &p.LearnedFromConfigID, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
