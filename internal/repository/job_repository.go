package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assignment-scanner/internal/database"
	"assignment-scanner/internal/domain/job"

	"github.com/google/uuid"
)

type JobRepository interface {
	GetJob(ctx context.Context, id uuid.UUID) (*job.Posting, error)
	GetRecentJobs(ctx context.Context, limit int) ([]job.Posting, error)
	UpsertJob(ctx context.Context, in job.PostingIn) (job.Posting, error)
	CountJobsSince(ctx context.Context, since time.Time) (int, error)
	CountJobsBySourceSince(ctx context.Context, since time.Time) (map[string]int, error)
	TopSkillsSince(ctx context.Context, since time.Time, limit int) ([]SkillCount, error)
}

// SkillCount is one row of the demanded-skills breakdown.
type SkillCount struct {
	Skill string
	Count int
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobColumns = `id, job_uid, source, title, COALESCE(description,''), skills, COALESCE(role,''),
	COALESCE(seniority,''), languages, COALESCE(location_city,''), COALESCE(location_country,''),
	COALESCE(onsite_mode,''), COALESCE(duration,''), url, posted_at, scraped_at`

func (r *PostgresJobRepository) GetJob(ctx context.Context, id uuid.UUID) (*job.Posting, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	row := r.db.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	p, err := scanJob(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresJobRepository) GetRecentJobs(ctx context.Context, limit int) ([]job.Posting, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY scraped_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []job.Posting
	for rows.Next() {
		p, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertJob inserts or refreshes one posting by job_uid. Re-running on the
// same scrape output is idempotent.
func (r *PostgresJobRepository) UpsertJob(ctx context.Context, in job.PostingIn) (job.Posting, error) {
	if strings.TrimSpace(in.JobUID) == "" {
		return job.Posting{}, fmt.Errorf("empty job_uid")
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO jobs (
			id, job_uid, source, title, description, skills, role, seniority,
			languages, location_city, location_country, onsite_mode, duration,
			url, posted_at, scraped_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (job_uid) DO UPDATE SET
			source = EXCLUDED.source,
			title = EXCLUDED.title,
			description = COALESCE(EXCLUDED.description, jobs.description),
			skills = EXCLUDED.skills,
			role = COALESCE(EXCLUDED.role, jobs.role),
			seniority = COALESCE(EXCLUDED.seniority, jobs.seniority),
			languages = EXCLUDED.languages,
			location_city = COALESCE(EXCLUDED.location_city, jobs.location_city),
			location_country = COALESCE(EXCLUDED.location_country, jobs.location_country),
			onsite_mode = COALESCE(EXCLUDED.onsite_mode, jobs.onsite_mode),
			duration = COALESCE(EXCLUDED.duration, jobs.duration),
			url = EXCLUDED.url,
			posted_at = COALESCE(EXCLUDED.posted_at, jobs.posted_at),
			scraped_at = EXCLUDED.scraped_at
		RETURNING `+jobColumns,
		uuid.New(),
		strings.TrimSpace(in.JobUID),
		strings.TrimSpace(in.Source),
		strings.TrimSpace(in.Title),
		nullableText(in.Description),
		textArray(in.Skills),
		nullableText(in.Role),
		nullableText(in.Seniority),
		textArray(in.Languages),
		nullableText(in.LocationCity),
		nullableText(in.LocationCountry),
		nullableText(string(in.OnsiteMode)),
		nullableText(in.Duration),
		strings.TrimSpace(in.URL),
		in.PostedAt,
		time.Now().UTC(),
	)
	return scanJob(row)
}

func (r *PostgresJobRepository) CountJobsSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs WHERE scraped_at >= $1`, since).Scan(&n)
	return n, err
}

func (r *PostgresJobRepository) CountJobsBySourceSince(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT source, COUNT(*) FROM jobs WHERE scraped_at >= $1 GROUP BY source`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		out[source] = n
	}
	return out, rows.Err()
}

func (r *PostgresJobRepository) TopSkillsSince(ctx context.Context, since time.Time, limit int) ([]SkillCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(ctx,
		`SELECT skill, COUNT(*) AS n
		 FROM jobs, unnest(skills) AS skill
		 WHERE scraped_at >= $1
		 GROUP BY skill
		 ORDER BY n DESC, skill ASC
		 LIMIT $2`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SkillCount
	for rows.Next() {
		var sc SkillCount
		if err := rows.Scan(&sc.Skill, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func scanJob(row database.Row) (job.Posting, error) {
	var p job.Posting
	var mode string
	err := row.Scan(
		&p.ID, &p.JobUID, &p.Source, &p.Title, &p.Description, &p.Skills,
		&p.Role, &p.Seniority, &p.Languages, &p.LocationCity,
		&p.LocationCountry, &mode, &p.Duration, &p.URL, &p.PostedAt,
		&p.ScrapedAt,
	)
	if err != nil {
		return job.Posting{}, err
	}
	if m, ok := job.ParseOnsiteMode(mode); ok {
		p.OnsiteMode = m
	}
	return p, nil
}
