// Package app assembles the question pipeline from configuration.
// The HTTP server, the CLI and the embedded SDK all build through New.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ayat/internal/config"
	"github.com/kailas-cloud/ayat/internal/db"
	"github.com/kailas-cloud/ayat/internal/db/postgres"
	dbValkey "github.com/kailas-cloud/ayat/internal/db/valkey"
	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/metrics"
	"github.com/kailas-cloud/ayat/internal/repository/embcache"
	searchrepo "github.com/kailas-cloud/ayat/internal/repository/search"
	verserepo "github.com/kailas-cloud/ayat/internal/repository/verse"
	"github.com/kailas-cloud/ayat/internal/transport/gateway"
	openaiTransport "github.com/kailas-cloud/ayat/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/ayat/internal/usecase/embedding"
	enrichuc "github.com/kailas-cloud/ayat/internal/usecase/enrich"
	explainuc "github.com/kailas-cloud/ayat/internal/usecase/explain"
	healthuc "github.com/kailas-cloud/ayat/internal/usecase/health"
	"github.com/kailas-cloud/ayat/internal/usecase/pipeline"
	searchuc "github.com/kailas-cloud/ayat/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Overrides replace configured backends. Nil fields keep the configured ones.
type Overrides struct {
	// Embedder replaces the configured embedding provider. It still goes
	// through the cache and instrumentation decorators.
	Embedder domain.Embedder
	// Generator replaces the configured chat backend.
	Generator explainuc.Generator
}

// App holds the wired services and the connections they share.
type App struct {
	Pipeline  *pipeline.Service
	Search    *searchuc.Service
	Health    *healthuc.Service
	Embedding *embeddinguc.Client

	store  *dbValkey.Store
	texts  *postgres.DB
	logger *zap.Logger
}

// New connects to both stores and wires the pipeline.
// An unreachable vector store is fatal; an unreachable text store only degrades enrichment.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, ov Overrides) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.VectorStore.Addrs,
		Username: cfg.VectorStore.Username,
		Password: cfg.VectorStore.Password,
		DB:       cfg.VectorStore.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create vector store: %w", err)
	}
	if err := store.WaitForReady(ctx, readiness(cfg.VectorStore.ReadinessTimeout)); err != nil {
		store.Close()
		return nil, fmt.Errorf("vector store not ready: %w", err)
	}
	logger.Info("Connected to vector store", zap.Strings("addrs", cfg.VectorStore.Addrs))

	texts, err := postgres.Open(postgres.Config{
		DSN:             cfg.TextStore.DSN,
		MaxOpenConns:    cfg.TextStore.MaxOpenConns,
		MaxIdleConns:    cfg.TextStore.MaxIdleConns,
		ConnMaxLifetime: config.Seconds(cfg.TextStore.ConnMaxLifetimeSec),
	}, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open text store: %w", err)
	}
	if err := texts.WaitForReady(ctx, readiness(cfg.TextStore.ReadinessTimeout)); err != nil {
		logger.Warn("Text store not ready, verses will carry placeholder text", zap.Error(err))
	} else {
		logger.Info("Connected to text store")
	}

	provider := ov.Embedder
	if provider == nil {
		provider = buildProvider(cfg.Embedding, logger)
	}
	embedder := decorateEmbedder(provider, cfg.Embedding, store, logger)
	embClient := embeddinguc.NewClient(embedder, cfg.Embedding.Dimensions, config.Seconds(cfg.Embedding.TimeoutSec), logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cfg.Embedding.Cache.Enabled),
	)

	metric, ok := db.ParseDistanceMetric(cfg.VectorStore.DistanceMetric)
	if !ok {
		metric = db.DistanceCosine
	}
	searchSvc := searchuc.New(searchrepo.New(store, metric), searchuc.Config{
		DenseCollection:  cfg.Search.DenseCollection,
		SparseCollection: cfg.Search.SparseCollection,
		Timeout:          config.Seconds(cfg.Search.TimeoutSec),
		Dimensions:       cfg.Embedding.Dimensions,
	}, logger)
	searchSvc.Verify(ctx)

	enrichSvc := enrichuc.New(verserepo.New(texts), config.Seconds(cfg.TextStore.LookupTimeoutSec), logger)

	gen := ov.Generator
	if gen == nil {
		gen = buildGenerator(cfg.Generation, logger)
	}
	explainSvc := explainuc.New(gen, explainuc.Config{
		MaxAttempts:     cfg.Generation.MaxAttempts,
		AttemptTimeout:  config.Seconds(cfg.Generation.TimeoutSec),
		ShortRetryDelay: config.Millis(cfg.Generation.ShortRetryDelayMs),
		ErrorRetryDelay: config.Millis(cfg.Generation.ErrorRetryDelayMs),
		MinChars:        cfg.Generation.MinChars,
		MinWords:        cfg.Generation.MinWords,
	}, logger)

	return &App{
		Pipeline:  pipeline.New(embClient, searchSvc, enrichSvc, explainSvc, logger),
		Search:    searchSvc,
		Health:    healthuc.New(store, texts, embClient),
		Embedding: embClient,
		store:     store,
		texts:     texts,
		logger:    logger,
	}, nil
}

// Ping checks the vector store, the one dependency no answer can do without.
func (a *App) Ping(ctx context.Context) error {
	if err := a.store.Ping(ctx); err != nil {
		return fmt.Errorf("vector store: %w", err)
	}
	return nil
}

// Close releases both store connections.
func (a *App) Close() {
	if a.texts != nil {
		if err := a.texts.Close(); err != nil {
			a.logger.Warn("Error closing text store", zap.Error(err))
		}
	}
	if a.store != nil {
		a.store.Close()
	}
}

func readiness(sec int) time.Duration {
	if sec <= 0 {
		return defaultReadinessTimeout
	}
	return config.Seconds(sec)
}

// buildProvider returns the raw embedding provider named by cfg.Provider.
func buildProvider(cfg config.EmbeddingConfig, logger *zap.Logger) domain.Embedder {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		})
	default:
		return gateway.New(gateway.Config{
			URL:    cfg.URL,
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
			Logger: logger,
		})
	}
}

// decorateEmbedder assembles provider -> cache -> instrumentation.
func decorateEmbedder(
	provider domain.Embedder, cfg config.EmbeddingConfig, store *dbValkey.Store, logger *zap.Logger,
) domain.Embedder {
	embedder := provider
	if cfg.Cache.Enabled && store != nil {
		namespace := cfg.Provider + ":" + cfg.Model
		embedder = embcache.New(provider, store, namespace, config.Seconds(cfg.Cache.TTLSec),
			metrics.EmbeddingCacheTotal, logger)
	}
	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, logger)
}

// buildGenerator returns nil without an API key, which makes every
// explanation the topic fallback. Keyless local servers take any placeholder key.
func buildGenerator(cfg config.GenerationConfig, logger *zap.Logger) explainuc.Generator {
	if cfg.APIKey == "" {
		logger.Warn("Generation backend not configured, explanations will use the fallback template")
		return nil
	}
	return openaiTransport.NewGenerator(&openaiTransport.ChatConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Logger:      logger,
	})
}
