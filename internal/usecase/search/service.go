package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/domain/search/candidate"
	"github.com/kailas-cloud/ayat/internal/domain/vector"
	"github.com/kailas-cloud/ayat/internal/logger"
	"github.com/kailas-cloud/ayat/internal/metrics"
)

// DefaultTimeout bounds each collection search.
const DefaultTimeout = 30 * time.Second

// Config names the collections and bounds each sub-search.
type Config struct {
	DenseCollection  string
	SparseCollection string
	Timeout          time.Duration
	// Dimensions sizes the synthetic probe vector.
	Dimensions int
}

// Service runs hybrid dense + sparse retrieval.
type Service struct {
	repo   Repository
	cfg    Config
	logger *zap.Logger
}

// New creates a retrieval service.
func New(repo Repository, cfg Config, lg *zap.Logger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{repo: repo, cfg: cfg, logger: lg}
}

// Search returns at most topK fused candidates.
// A dense search failure is returned as ErrRetrievalFailed; a sparse failure
// only drops the sparse hits. Zero hits is (nil, nil).
func (s *Service) Search(
	ctx context.Context, vec vector.QueryVector, topK int,
) ([]candidate.Candidate, error) {
	log := logger.FromContextOr(ctx, s.logger)
	k := topK * 2

	var dense, sparse []candidate.Candidate
	var g errgroup.Group

	g.Go(func() error {
		var err error
		dense, err = s.searchOne(ctx, s.cfg.DenseCollection, func(ctx context.Context) ([]candidate.Candidate, error) {
			return s.repo.SearchDense(ctx, s.cfg.DenseCollection, vec.Dense, k)
		})
		return err
	})

	if !vec.Sparse.IsEmpty() {
		g.Go(func() error {
			res, err := s.searchOne(ctx, s.cfg.SparseCollection, func(ctx context.Context) ([]candidate.Candidate, error) {
				return s.repo.SearchSparse(ctx, s.cfg.SparseCollection, vec.Sparse, k)
			})
			if err != nil {
				log.Warn("Sparse search failed, continuing with dense hits",
					zap.String("stage", "retrieval"),
					zap.String("collection", s.cfg.SparseCollection),
					zap.Error(err),
				)
				return nil
			}
			sparse = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("Dense search failed",
			zap.String("stage", "retrieval"),
			zap.String("collection", s.cfg.DenseCollection),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
	}

	fused := Fuse(dense, sparse, topK)
	metrics.FusedCandidates.Observe(float64(len(fused)))

	log.Debug("Hybrid search completed",
		zap.Int("dense_hits", len(dense)),
		zap.Int("sparse_hits", len(sparse)),
		zap.Int("fused", len(fused)),
	)

	if len(fused) == 0 {
		return nil, nil
	}
	return fused, nil
}

func (s *Service) searchOne(
	ctx context.Context, collection string,
	fn func(ctx context.Context) ([]candidate.Candidate, error),
) ([]candidate.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	res, err := fn(ctx)
	metrics.SearchDuration.WithLabelValues(collection).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchErrorsTotal.WithLabelValues(collection).Inc()
		return nil, err
	}
	return res, nil
}

// Verify checks that both collections exist and logs one line per collection.
// It never fails startup.
func (s *Service) Verify(ctx context.Context) {
	check := func(collection string, fn func(context.Context, string) (bool, error)) {
		ok, err := fn(ctx, collection)
		switch {
		case err != nil:
			s.logger.Error("Collection verification error",
				zap.String("collection", collection), zap.Error(err))
		case !ok:
			s.logger.Warn("Collection not found", zap.String("collection", collection))
		default:
			s.logger.Info("Collection verified", zap.String("collection", collection))
		}
	}

	check(s.cfg.DenseCollection, s.repo.DenseCollectionExists)
	check(s.cfg.SparseCollection, s.repo.SparseCollectionExists)
}

// Probe runs a two-hit hybrid search with the fallback vector to exercise both collections.
func (s *Service) Probe(ctx context.Context) (int, error) {
	vec := vector.Fallback(s.cfg.Dimensions)
	hits, err := s.Search(ctx, vec, 2)
	if err != nil {
		return 0, err
	}
	return len(hits), nil
}

// Collections returns the configured dense and sparse collection names.
func (s *Service) Collections() (dense, sparse string) {
	return s.cfg.DenseCollection, s.cfg.SparseCollection
}
