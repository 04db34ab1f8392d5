package search

import (
	"context"

	"github.com/kailas-cloud/ayat/internal/domain/search/candidate"
	"github.com/kailas-cloud/ayat/internal/domain/vector"
)

// Repository defines the storage contract for the two retrieval collections.
type Repository interface {
	SearchDense(ctx context.Context, collection string, dense []float64, k int) ([]candidate.Candidate, error)
	SearchSparse(ctx context.Context, collection string, sv vector.SparseVector, k int) ([]candidate.Candidate, error)
	DenseCollectionExists(ctx context.Context, collection string) (bool, error)
	SparseCollectionExists(ctx context.Context, collection string) (bool, error)
}
