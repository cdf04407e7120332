package embedding

import (
	"context"
	"errors"
	"fmt"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

var errNoEmbeddingInResponse = errors.New("no embedding in response")

// openaiBackend calls the OpenAI embeddings API with text-embedding-3-small.
type openaiBackend struct {
	sdk        openaisdk.Client
	dimensions int
}

func newOpenAIBackend(apiKey string, dimensions int) *openaiBackend {
	if dimensions <= 0 {
		dimensions = defaultDimensions
	}
	return &openaiBackend{
		sdk:        openaisdk.NewClient(option.WithAPIKey(apiKey)),
		dimensions: dimensions,
	}
}

func (b *openaiBackend) Name() string { return "openai" }

func (b *openaiBackend) CreateEmbedding(ctx context.Context, text string) ([]float64, error) {
	resp, err := b.sdk.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(text),
		},
		Model:      openaisdk.EmbeddingModelTextEmbedding3Small,
		Dimensions: param.NewOpt(int64(b.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, errNoEmbeddingInResponse
	}

	emb := resp.Data[0].Embedding
	if len(emb) != b.dimensions {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(emb), b.dimensions)
	}

	out := make([]float64, len(emb))
	copy(out, emb)
	return out, nil
}
