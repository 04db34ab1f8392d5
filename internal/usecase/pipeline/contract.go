package pipeline

import (
	"context"

	"github.com/kailas-cloud/ayat/internal/domain/explanation"
	"github.com/kailas-cloud/ayat/internal/domain/search/candidate"
	"github.com/kailas-cloud/ayat/internal/domain/vector"
	"github.com/kailas-cloud/ayat/internal/domain/verse"
	"github.com/kailas-cloud/ayat/internal/usecase/explain"
)

// Embedder turns query text into a query vector. It never fails.
type Embedder interface {
	Embed(ctx context.Context, query string) (vector.QueryVector, string)
}

// Retriever runs hybrid retrieval.
type Retriever interface {
	Search(ctx context.Context, vec vector.QueryVector, topK int) ([]candidate.Candidate, error)
}

// Enricher joins candidates with canonical text. It never fails.
type Enricher interface {
	Enrich(ctx context.Context, cands []candidate.Candidate) []verse.Enriched
}

// Explainer produces a grounded explanation. It never fails.
type Explainer interface {
	Explain(ctx context.Context, query string, grounding []explain.Grounding, ids []int64) explanation.Explanation
}
