package embedding

import (
	"context"
	"crypto/sha256"
)

const defaultDimensions = 1536

// localBackend derives a deterministic vector from the text's SHA-256 digest.
// It carries no semantic signal beyond "same text, same vector", which is
// enough for development and for exercising the cosine path without an API key.
type localBackend struct {
	dimensions int
}

func newLocalBackend(dimensions int) *localBackend {
	if dimensions <= 0 {
		dimensions = defaultDimensions
	}
	return &localBackend{dimensions: dimensions}
}

func (b *localBackend) Name() string { return "local" }

func (b *localBackend) CreateEmbedding(_ context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, nil
	}

	digest := sha256.Sum256([]byte(text))
	vec := make([]float64, 0, b.dimensions)
	for i := 0; len(vec) < b.dimensions; i++ {
		chunk := digest[i%len(digest)]
		for j := 0; j < 8 && len(vec) < b.dimensions; j++ {
			bit := float64(chunk >> j & 1)
			vec = append(vec, bit*0.5-0.25)
		}
	}
	return vec, nil
}
