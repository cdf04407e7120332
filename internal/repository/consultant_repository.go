package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assignment-scanner/internal/database"
	"assignment-scanner/internal/domain/consultant"
	"assignment-scanner/internal/domain/job"

	"github.com/google/uuid"
)

type ConsultantRepository interface {
	GetConsultant(ctx context.Context, id uuid.UUID) (*consultant.Profile, error)
	GetConsultants(ctx context.Context, activeOnly bool, limit int) ([]consultant.Profile, error)
	UpsertConsultant(ctx context.Context, in consultant.ProfileIn) (consultant.Profile, error)
}

type PostgresConsultantRepository struct {
	db database.DB
}

func NewPostgresConsultantRepository(db database.DB) *PostgresConsultantRepository {
	return &PostgresConsultantRepository{db: db}
}

const consultantColumns = `id, name, COALESCE(role,''), COALESCE(seniority,''), skills, languages,
	COALESCE(location_city,''), COALESCE(location_country,''), COALESCE(onsite_mode,''),
	availability_from, COALESCE(notes,''), active, created_at, updated_at`

func (r *PostgresConsultantRepository) GetConsultant(ctx context.Context, id uuid.UUID) (*consultant.Profile, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	row := r.db.QueryRow(ctx,
		`SELECT `+consultantColumns+` FROM consultants WHERE id = $1`, id)
	p, err := scanConsultant(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresConsultantRepository) GetConsultants(ctx context.Context, activeOnly bool, limit int) ([]consultant.Profile, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + consultantColumns + ` FROM consultants`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY name LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []consultant.Profile
	for rows.Next() {
		p, err := scanConsultant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresConsultantRepository) UpsertConsultant(ctx context.Context, in consultant.ProfileIn) (consultant.Profile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return consultant.Profile{}, fmt.Errorf("empty consultant name")
	}

	now := time.Now().UTC()
	row := r.db.QueryRow(ctx,
		`INSERT INTO consultants (
			id, name, role, seniority, skills, languages, location_city,
			location_country, onsite_mode, availability_from, notes, active,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)
		ON CONFLICT (name) DO UPDATE SET
			role = COALESCE(EXCLUDED.role, consultants.role),
			seniority = COALESCE(EXCLUDED.seniority, consultants.seniority),
			skills = EXCLUDED.skills,
			languages = EXCLUDED.languages,
			location_city = COALESCE(EXCLUDED.location_city, consultants.location_city),
			location_country = COALESCE(EXCLUDED.location_country, consultants.location_country),
			onsite_mode = COALESCE(EXCLUDED.onsite_mode, consultants.onsite_mode),
			availability_from = EXCLUDED.availability_from,
			notes = COALESCE(EXCLUDED.notes, consultants.notes),
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
		RETURNING `+consultantColumns,
		uuid.New(),
		name,
		nullableText(in.Role),
		nullableText(in.Seniority),
		textArray(in.Skills),
		textArray(in.Languages),
		nullableText(in.LocationCity),
		nullableText(in.LocationCountry),
		nullableText(string(in.OnsiteMode)),
		in.AvailabilityFrom,
		nullableText(in.Notes),
		in.Active,
		now,
	)
	return scanConsultant(row)
}

func scanConsultant(row database.Row) (consultant.Profile, error) {
	var p consultant.Profile
	var mode string
	err := row.Scan(
		&p.ID, &p.Name, &p.Role, &p.Seniority, &p.Skills, &p.Languages,
		&p.LocationCity, &p.LocationCountry, &mode, &p.AvailabilityFrom,
		&p.Notes, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return consultant.Profile{}, err
	}
	if m, ok := job.ParseOnsiteMode(mode); ok {
		p.OnsiteMode = m
	}
	return p, nil
}
