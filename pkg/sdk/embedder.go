package ayat

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/domain/vector"
)

// Embedder converts a question into dense and sparse vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) (Embedding, error)
}

// Generator is a chat completion backend.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Embedding carries the provider output. The dense vector is fitted to the
// configured dimension by the client; the sparse pair may be empty.
type Embedding struct {
	Dense         []float64
	SparseIndices []uint32
	SparseValues  []float64
	// ProcessedText is the provider's normalized query; empty means the original text.
	ProcessedText string
	TotalTokens   int
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	e, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Vector: vector.QueryVector{
			Dense:  e.Dense,
			Sparse: vector.SparseVector{Indices: e.SparseIndices, Values: e.SparseValues},
		},
		ProcessedText: e.ProcessedText,
		PromptTokens:  e.TotalTokens,
		TotalTokens:   e.TotalTokens,
	}, nil
}
