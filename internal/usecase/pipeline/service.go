package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/domain/explanation"
	"github.com/kailas-cloud/ayat/internal/domain/search/request"
	"github.com/kailas-cloud/ayat/internal/domain/verse"
	"github.com/kailas-cloud/ayat/internal/logger"
	"github.com/kailas-cloud/ayat/internal/usecase/enrich"
	"github.com/kailas-cloud/ayat/internal/usecase/explain"
)

// Response is the assembled answer to one question.
type Response struct {
	Query          string
	ProcessedQuery string
	Results        []verse.Enriched
	Explanation    explanation.Explanation
}

// Service sequences embedding, retrieval, enrichment and explanation.
type Service struct {
	embed    Embedder
	retrieve Retriever
	enrich   Enricher
	explain  Explainer
	logger   *zap.Logger
}

// New creates the orchestrator from its stage dependencies.
func New(embed Embedder, retrieve Retriever, enricher Enricher, explainer Explainer, lg *zap.Logger) *Service {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{
		embed:    embed,
		retrieve: retrieve,
		enrich:   enricher,
		explain:  explainer,
		logger:   lg,
	}
}

// Answer runs the pipeline for req.
// Only ErrRetrievalFailed and ErrNotFound are returned; every other stage degrades.
func (s *Service) Answer(ctx context.Context, req request.Request) (Response, error) {
	log := logger.FromContextOr(ctx, s.logger)
	start := time.Now()

	vec, processed := s.embed.Embed(ctx, req.Text())

	cands, err := s.retrieve.Search(ctx, vec, req.TopK())
	if err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}
	if len(cands) == 0 {
		return Response{}, domain.ErrNotFound
	}

	results := s.enrich.Enrich(ctx, cands)
	if len(results) == 0 {
		return Response{}, domain.ErrNotFound
	}
	ids := enrich.LocatorIDs(cands)

	grounding := make([]explain.Grounding, 0, len(results))
	for i := range results {
		r := &results[i]
		grounding = append(grounding, explain.Grounding{ID: r.QuranID, Arabic: r.Arabic, Urdu: r.Urdu})
	}

	exp := s.explain.Explain(ctx, req.Text(), grounding, ids)

	log.Info("Question answered",
		zap.Int("top_k", req.TopK()),
		zap.Int("results", len(results)),
		zap.Int64s("ids", ids),
		zap.String("explanation_state", string(exp.State())),
		zap.Duration("duration", time.Since(start)),
	)

	return Response{
		Query:          req.Text(),
		ProcessedQuery: processed,
		Results:        results,
		Explanation:    exp,
	}, nil
}
