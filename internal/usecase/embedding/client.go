package embedding

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/domain/vector"
	"github.com/kailas-cloud/ayat/internal/logger"
	"github.com/kailas-cloud/ayat/internal/metrics"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 60 * time.Second

// ErrNoProvider is logged when the client was built without an embedder.
var ErrNoProvider = errors.New("no embedding provider configured")

// Client turns query text into a QueryVector of fixed dense dimension.
// It never fails: provider errors yield the fallback vector and the original query.
type Client struct {
	provider   domain.Embedder
	dimensions int
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClient creates an embedding client. A nil provider always yields the fallback vector.
func NewClient(provider domain.Embedder, dimensions int, timeout time.Duration, lg *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Client{
		provider:   provider,
		dimensions: dimensions,
		timeout:    timeout,
		logger:     lg,
	}
}

// Dimensions returns the configured dense dimension D.
func (c *Client) Dimensions() int { return c.dimensions }

// Embed returns the query vector and the processed query text.
func (c *Client) Embed(ctx context.Context, query string) (vector.QueryVector, string) {
	log := logger.FromContextOr(ctx, c.logger)

	res, err := c.call(ctx, query)
	if err != nil {
		log.Warn("Embedding unavailable, using fallback vector",
			zap.String("stage", "embedding"),
			zap.Int("dimensions", c.dimensions),
			zap.Error(err),
		)
		metrics.EmbeddingDegradedTotal.WithLabelValues("fallback").Inc()
		domain.UsageFromContext(ctx).MarkDegraded()
		return vector.Fallback(c.dimensions), query
	}

	dense, corr := vector.Fit(res.Vector.Dense, c.dimensions)
	if corr != vector.CorrectionNone {
		log.Warn("Dense vector dimension corrected",
			zap.String("stage", "embedding"),
			zap.String("correction", corr.String()),
			zap.Int("got", len(res.Vector.Dense)),
			zap.Int("want", c.dimensions),
		)
		metrics.EmbeddingDegradedTotal.WithLabelValues(corr.String()).Inc()
		domain.UsageFromContext(ctx).MarkDegraded()
	}

	sparse := res.Vector.Sparse
	if !sparse.Valid() {
		log.Warn("Sparse vector malformed, dropping",
			zap.String("stage", "embedding"),
			zap.Int("indices", len(sparse.Indices)),
			zap.Int("values", len(sparse.Values)),
		)
		sparse = vector.SparseVector{}
	}

	processed := strings.TrimSpace(res.ProcessedText)
	if processed == "" {
		processed = query
	}

	return vector.QueryVector{Dense: dense, Sparse: sparse}, processed
}

func (c *Client) call(ctx context.Context, query string) (domain.EmbeddingResult, error) {
	if c.provider == nil {
		return domain.EmbeddingResult{}, ErrNoProvider
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.provider.Embed(ctx, query)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	if len(res.Vector.Dense) == 0 {
		return domain.EmbeddingResult{}, domain.ErrEmbeddingMalformed
	}
	return res, nil
}

// HealthCheck reports provider availability.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.provider == nil {
		return ErrNoProvider
	}
	if hc, ok := c.provider.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
