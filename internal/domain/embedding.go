package domain

import (
	"context"

	"github.com/kailas-cloud/ayat/internal/domain/vector"
)

// Embedder is the shared text vectorization contract between layers.
// Implementations return raw provider output: the dense vector is not yet fitted to D.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vectors and token usage through the decorator chain.
type EmbeddingResult struct {
	Vector        vector.QueryVector
	ProcessedText string
	PromptTokens  int
	TotalTokens   int
}
