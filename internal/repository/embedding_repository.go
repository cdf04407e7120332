package repository

import (
	"context"
	"time"

	"assignment-scanner/internal/database"

	"github.com/google/uuid"
)

// EmbeddingRepository stores one vector per owning entity. The text hash
// records what text the vector was computed from, so callers can detect when
// the owner's text-relevant fields changed and a recompute is due.
type EmbeddingRepository interface {
	GetJobEmbedding(ctx context.Context, jobID uuid.UUID) ([]float64, string, error)
	StoreJobEmbedding(ctx context.Context, jobID uuid.UUID, vec []float64, textHash string) error
	GetConsultantEmbedding(ctx context.Context, consultantID uuid.UUID) ([]float64, string, error)
	StoreConsultantEmbedding(ctx context.Context, consultantID uuid.UUID, vec []float64, textHash string) error
}

type PostgresEmbeddingRepository struct {
	db database.DB
}

func NewPostgresEmbeddingRepository(db database.DB) *PostgresEmbeddingRepository {
	return &PostgresEmbeddingRepository{db: db}
}

func (r *PostgresEmbeddingRepository) GetJobEmbedding(ctx context.Context, jobID uuid.UUID) ([]float64, string, error) {
	return r.getEmbedding(ctx, `SELECT embedding, text_hash FROM job_embeddings WHERE job_id = $1`, jobID)
}

func (r *PostgresEmbeddingRepository) StoreJobEmbedding(ctx context.Context, jobID uuid.UUID, vec []float64, textHash string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO job_embeddings (job_id, embedding, text_hash, updated_at)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (job_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			text_hash = EXCLUDED.text_hash,
			updated_at = EXCLUDED.updated_at`,
		jobID, vec, textHash, time.Now().UTC())
	return err
}

func (r *PostgresEmbeddingRepository) GetConsultantEmbedding(ctx context.Context, consultantID uuid.UUID) ([]float64, string, error) {
	return r.getEmbedding(ctx, `SELECT embedding, text_hash FROM consultant_embeddings WHERE consultant_id = $1`, consultantID)
}

func (r *PostgresEmbeddingRepository) StoreConsultantEmbedding(ctx context.Context, consultantID uuid.UUID, vec []float64, textHash string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO consultant_embeddings (consultant_id, embedding, text_hash, updated_at)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (consultant_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			text_hash = EXCLUDED.text_hash,
			updated_at = EXCLUDED.updated_at`,
		consultantID, vec, textHash, time.Now().UTC())
	return err
}

func (r *PostgresEmbeddingRepository) getEmbedding(ctx context.Context, query string, ownerID uuid.UUID) ([]float64, string, error) {
	var vec []float64
	var hash string
	err := r.db.QueryRow(ctx, query, ownerID).Scan(&vec, &hash)
	if err != nil {
		if isNoRows(err) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return vec, hash, nil
}
