package repository

import (
	"context"
	"fmt"
	"time"

	"assignment-scanner/internal/database"
	"assignment-scanner/internal/domain/scanning"

	"github.com/google/uuid"
)

type ScanningConfigRepository interface {
	GetActiveConfigs(ctx context.Context) ([]scanning.Config, error)
	GetAllConfigs(ctx context.Context) ([]scanning.Config, error)
	GetConfig(ctx context.Context, id uuid.UUID) (*scanning.Config, error)
	GetSourceOverrides(ctx context.Context, configID uuid.UUID) ([]scanning.SourceOverride, error)
	UpdateSourcePerformance(ctx context.Context, configID uuid.UUID, sourceName string, successRate, avgMatches float64) error
}

type PostgresScanningConfigRepository struct {
	db database.DB
}

func NewPostgresScanningConfigRepository(db database.DB) *PostgresScanningConfigRepository {
	return &PostgresScanningConfigRepository{db: db}
}

const configColumns = `id, name, target_skills, target_roles, target_locations, languages,
	seniority_levels, onsite_modes, contract_durations, performance_score, active,
	created_at, updated_at`

func (r *PostgresScanningConfigRepository) GetActiveConfigs(ctx context.Context) ([]scanning.Config, error) {
	return r.queryConfigs(ctx,
		`SELECT `+configColumns+` FROM scanning_configs WHERE active = true ORDER BY created_at`)
}

func (r *PostgresScanningConfigRepository) GetAllConfigs(ctx context.Context) ([]scanning.Config, error) {
	return r.queryConfigs(ctx,
		`SELECT `+configColumns+` FROM scanning_configs ORDER BY created_at`)
}

func (r *PostgresScanningConfigRepository) GetConfig(ctx context.Context, id uuid.UUID) (*scanning.Config, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	row := r.db.QueryRow(ctx,
		`SELECT `+configColumns+` FROM scanning_configs WHERE id = $1`, id)
	c, err := scanConfig(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PostgresScanningConfigRepository) GetSourceOverrides(ctx context.Context, configID uuid.UUID) ([]scanning.SourceOverride, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, config_id, source_name, is_enabled, target_skills, target_roles,
			target_locations, languages, seniority_levels, onsite_modes,
			contract_durations, success_rate, avg_matches_per_run, last_scanned_at
		 FROM source_config_overrides
		 WHERE config_id = $1
		 ORDER BY source_name`,
		configID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scanning.SourceOverride
	for rows.Next() {
		var o scanning.SourceOverride
		err := rows.Scan(
			&o.ID, &o.ConfigID, &o.SourceName, &o.IsEnabled,
			&o.Params.TargetSkills, &o.Params.TargetRoles,
			&o.Params.TargetLocations, &o.Params.Languages,
			&o.Params.SeniorityLevels, &o.Params.OnsiteModes,
			&o.Params.ContractDurations, &o.SuccessRate, &o.AvgMatchesRun,
			&o.LastScannedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateSourcePerformance upserts the rolling yield stats for one
// (configuration, source) pair. A missing override row is created enabled.
func (r *PostgresScanningConfigRepository) UpdateSourcePerformance(ctx context.Context, configID uuid.UUID, sourceName string, successRate, avgMatches float64) error {
	if configID == uuid.Nil || sourceName == "" {
		return fmt.Errorf("missing config_id/source_name")
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO source_config_overrides (
			id, config_id, source_name, is_enabled, success_rate,
			avg_matches_per_run, last_scanned_at
		) VALUES ($1,$2,$3,true,$4,$5,$6)
		ON CONFLICT (config_id, source_name) DO UPDATE SET
			success_rate = (source_config_overrides.success_rate + EXCLUDED.success_rate) / 2,
			avg_matches_per_run = (source_config_overrides.avg_matches_per_run + EXCLUDED.avg_matches_per_run) / 2,
			last_scanned_at = EXCLUDED.last_scanned_at`,
		uuid.New(), configID, sourceName, successRate, avgMatches, time.Now().UTC())
	return err
}

func (r *PostgresScanningConfigRepository) queryConfigs(ctx context.Context, query string) ([]scanning.Config, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scanning.Config
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanConfig(row database.Row) (scanning.Config, error) {
	var c scanning.Config
	err := row.Scan(
		&c.ID, &c.Name, &c.Params.TargetSkills, &c.Params.TargetRoles,
		&c.Params.TargetLocations, &c.Params.Languages,
		&c.Params.SeniorityLevels, &c.Params.OnsiteModes,
		&c.Params.ContractDurations, &c.PerformanceScore, &c.Active,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}
