package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"assignment-scanner/internal/config"
	"assignment-scanner/internal/domain/consultant"
	"assignment-scanner/internal/domain/job"

	"go.uber.org/zap"
)

// Backend turns text into a fixed-length vector. The local backend is
// deterministic for identical text; remote backends may not be.
type Backend interface {
	Name() string
	CreateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// VectorCache is the optional read-through cache in front of the backend.
type VectorCache interface {
	GetVector(ctx context.Context, key string) ([]float64, bool, error)
	SetVector(ctx context.Context, key string, vec []float64) error
}

type Service struct {
	backend Backend
	cache   VectorCache
	log     *zap.Logger
}

// NewService selects the configured backend. Asking for openai without an API
// key falls back to the local backend with a warning instead of failing.
func NewService(cfg config.EmbeddingConfig, cache VectorCache, log *zap.Logger) *Service {
	var backend Backend
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			if log != nil {
				log.Warn("OPENAI_API_KEY not set, falling back to local embeddings")
			}
			backend = newLocalBackend(cfg.Dimensions)
			break
		}
		backend = newOpenAIBackend(cfg.OpenAIAPIKey, cfg.Dimensions)
	default:
		backend = newLocalBackend(cfg.Dimensions)
	}

	return &Service{backend: backend, cache: cache, log: log}
}

func (s *Service) BackendName() string {
	return s.backend.Name()
}

// CreateEmbedding returns the vector for text, consulting the cache first.
// Empty text produces an empty vector, never an error.
func (s *Service) CreateEmbedding(ctx context.Context, text string) ([]float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	key := cacheKey(s.backend.Name(), text)
	if s.cache != nil {
		if vec, ok, err := s.cache.GetVector(ctx, key); err == nil && ok {
			return vec, nil
		}
	}

	vec, err := s.backend.CreateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetVector(ctx, key, vec); err != nil && s.log != nil {
			s.log.Debug("embedding cache write failed", zap.Error(err))
		}
	}
	return vec, nil
}

func (s *Service) CreateEmbeddings(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for _, t := range texts {
		vec, err := s.CreateEmbedding(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

// PrepareJobText flattens the text-relevant posting fields into labeled lines
// so embeddings stay stable across unrelated field changes.
func PrepareJobText(p job.PostingIn) string {
	var parts []string

	appendPart := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			parts = append(parts, label+": "+v)
		}
	}

	appendPart("Title", p.Title)
	appendPart("Role", p.Role)
	appendPart("Seniority", p.Seniority)
	appendPart("Description", p.Description)
	appendPart("Skills", strings.Join(p.Skills, ", "))
	appendPart("Languages", strings.Join(p.Languages, ", "))
	appendPart("City", p.LocationCity)
	appendPart("Country", p.LocationCountry)
	appendPart("Work mode", string(p.OnsiteMode))
	appendPart("Duration", p.Duration)

	return strings.Join(parts, "\n")
}

func PrepareConsultantText(p consultant.ProfileIn) string {
	var parts []string

	appendPart := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			parts = append(parts, label+": "+v)
		}
	}

	appendPart("Name", p.Name)
	appendPart("Role", p.Role)
	appendPart("Seniority", p.Seniority)
	appendPart("Skills", strings.Join(p.Skills, ", "))
	appendPart("Languages", strings.Join(p.Languages, ", "))
	appendPart("City", p.LocationCity)
	appendPart("Country", p.LocationCountry)
	appendPart("Work mode", string(p.OnsiteMode))
	appendPart("Notes", p.Notes)

	return strings.Join(parts, "\n")
}

// TextHash identifies the text an embedding was computed from, so owners can
// detect when a recompute is needed.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func cacheKey(backend, text string) string {
	return "embedding:" + backend + ":" + TextHash(text)
}
