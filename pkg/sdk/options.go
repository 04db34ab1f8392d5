package ayat

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/ayat/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	cfg config.Config

	embedder  Embedder
	generator Generator

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey sets the vector store holding both retrieval collections.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.VectorStore.Addrs = []string{addr}
		c.cfg.VectorStore.Password = password
	})
}

// WithPostgres sets the DSN of the canonical verse text store.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.TextStore.DSN = dsn
	})
}

// WithEmbeddingGateway embeds questions through an HTTP gateway returning
// dense and sparse vectors (POST {url}/embed).
func WithEmbeddingGateway(url, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Embedding.Provider = config.ProviderGateway
		c.cfg.Embedding.URL = url
		c.cfg.Embedding.APIKey = apiKey
	})
}

// WithOpenAIEmbedder embeds questions through an OpenAI-compatible API.
// Dense only: retrieval then runs on the dense collection alone.
func WithOpenAIEmbedder(baseURL, apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Embedding.Provider = config.ProviderOpenAI
		c.cfg.Embedding.BaseURL = baseURL
		c.cfg.Embedding.APIKey = apiKey
		c.cfg.Embedding.Model = model
	})
}

// WithEmbedder sets a custom embedding provider. It replaces the gateway and
// OpenAI options.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithEmbeddingCache caches provider embeddings in the vector store.
// ttlSec 0 means no expiry.
func WithEmbeddingCache(ttlSec int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Embedding.Cache.Enabled = true
		c.cfg.Embedding.Cache.TTLSec = ttlSec
	})
}

// WithGenerator sets the OpenAI-compatible chat backend used for explanations.
// Without it every explanation is the topic fallback.
func WithGenerator(baseURL, apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Generation.BaseURL = baseURL
		c.cfg.Generation.APIKey = apiKey
		c.cfg.Generation.Model = model
	})
}

// WithChatBackend sets a custom generator. It replaces WithGenerator.
func WithChatBackend(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithDimensions sets the dense vector dimension of the collections.
// Defaults to 1024 (BGE-M3).
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Embedding.Dimensions = dim
	})
}

// WithCollections overrides the dense and sparse collection names.
// Defaults: quran_dense, quran_sparse.
func WithCollections(dense, sparse string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Search.DenseCollection = dense
		c.cfg.Search.SparseCollection = sparse
	})
}

// WithGenerationAttempts bounds the explanation retries. Default: 3.
func WithGenerationAttempts(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Generation.MaxAttempts = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK operation metrics and the pipeline metrics
// (embedding, retrieval, enrichment, generation) on reg. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
