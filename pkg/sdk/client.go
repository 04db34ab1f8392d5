package ayat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/ayat/internal/app"
	"github.com/kailas-cloud/ayat/internal/config"
	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/domain/search/request"
	"github.com/kailas-cloud/ayat/internal/metrics"
	"github.com/kailas-cloud/ayat/internal/usecase/pipeline"
)

// Internal interfaces, swapped in tests.
type answerer interface {
	Answer(ctx context.Context, req request.Request) (pipeline.Response, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Client is the ayat SDK entry point. Safe for concurrent use.
type Client struct {
	answers   answerer
	pinger    pinger
	healthSvc healthUseCase
	closeFn   func()

	defaultTopK int
	maxTopK     int
	obs         *observer
}

// New creates a Client and connects to both stores.
// The provided context is used for the readiness checks.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, o := range opts {
		o.apply(cc)
	}
	cc.cfg.ApplyDefaults()

	if err := validate(cc); err != nil {
		return nil, err
	}

	obs, err := newObserver(cc.logger, cc.metricsReg)
	if err != nil {
		return nil, err
	}
	if cc.metricsReg != nil {
		if err := metrics.RegisterWith(cc.metricsReg); err != nil {
			return nil, fmt.Errorf("ayat: register pipeline metrics: %w", err)
		}
	}

	ov := app.Overrides{}
	if cc.embedder != nil {
		ov.Embedder = &embedderAdapter{inner: cc.embedder}
	}
	if cc.generator != nil {
		ov.Generator = cc.generator
	}

	a, err := app.New(ctx, cc.cfg, nil, ov)
	if err != nil {
		return nil, fmt.Errorf("ayat: %w", err)
	}

	return &Client{
		answers:     a.Pipeline,
		pinger:      a,
		healthSvc:   a.Health,
		closeFn:     a.Close,
		defaultTopK: cc.cfg.Search.DefaultTopK,
		maxTopK:     cc.cfg.Search.MaxTopK,
		obs:         obs,
	}, nil
}

func validate(cc *clientConfig) error {
	if len(cc.cfg.VectorStore.Addrs) == 0 {
		return errors.New("ayat: vector store address required (use WithValkey)")
	}
	if cc.cfg.TextStore.DSN == "" {
		return errors.New("ayat: text store dsn required (use WithPostgres)")
	}
	if cc.embedder == nil && cc.cfg.Embedding.Provider == config.ProviderGateway && cc.cfg.Embedding.URL == "" {
		return errors.New("ayat: embedding provider required " +
			"(use WithEmbeddingGateway, WithOpenAIEmbedder or WithEmbedder)")
	}
	if cc.cfg.Embedding.Dimensions <= 0 {
		return fmt.Errorf("ayat: dimensions must be positive, got %d", cc.cfg.Embedding.Dimensions)
	}
	return nil
}

// Ask answers a question with up to topK verses (0 = default 5, capped at 50).
// Returns ErrNotFound when retrieval finds nothing and ErrRetrievalFailed when
// the dense collection cannot be searched. Every other failure degrades the answer.
func (c *Client) Ask(ctx context.Context, text string, topK int) (ans Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	req, err := request.NewWithLimits(text, topK, c.defaultTopK, c.maxTopK)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	resp, err := c.answers.Answer(ctx, req)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	return answerFrom(&resp), nil
}

// Ping checks vector store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}
