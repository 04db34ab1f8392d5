package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ayat/internal/config"
	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/transport/gateway"
	openaiTransport "github.com/kailas-cloud/ayat/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/ayat/internal/usecase/embedding"
)

type stubEmbedder struct{ err error }

func (s stubEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, s.err
}

func TestBuildProvider(t *testing.T) {
	lg := zap.NewNop()

	if _, ok := buildProvider(config.EmbeddingConfig{Provider: config.ProviderGateway, URL: "http://e"}, lg).(*gateway.Client); !ok {
		t.Error("gateway provider: wrong type")
	}
	if _, ok := buildProvider(config.EmbeddingConfig{Provider: config.ProviderOpenAI, Model: "m"}, lg).(*openaiTransport.Embedder); !ok {
		t.Error("openai provider: wrong type")
	}
}

func TestDecorateEmbedder_NoCache(t *testing.T) {
	emb := decorateEmbedder(stubEmbedder{}, config.EmbeddingConfig{Provider: "gateway", Model: "bge-m3"}, nil, zap.NewNop())
	if _, ok := emb.(*embeddinguc.InstrumentedEmbedder); !ok {
		t.Fatalf("expected instrumented embedder, got %T", emb)
	}
}

func TestDecorateEmbedder_CacheWithoutStore(t *testing.T) {
	cfg := config.EmbeddingConfig{Provider: "gateway", Model: "bge-m3", Cache: config.CacheConfig{Enabled: true}}
	emb := decorateEmbedder(stubEmbedder{err: errors.New("down")}, cfg, nil, zap.NewNop())

	if _, ok := emb.(*embeddinguc.InstrumentedEmbedder); !ok {
		t.Fatalf("expected instrumented embedder, got %T", emb)
	}
	if _, err := emb.Embed(context.Background(), "q"); err == nil {
		t.Error("expected provider error to propagate")
	}
}

func TestBuildGenerator(t *testing.T) {
	lg := zap.NewNop()

	if g := buildGenerator(config.GenerationConfig{BaseURL: "http://llm"}, lg); g != nil {
		t.Errorf("no api key: expected nil generator, got %T", g)
	}
	g := buildGenerator(config.GenerationConfig{APIKey: "k", Model: "kimi"}, lg)
	chat, ok := g.(*openaiTransport.Generator)
	if !ok {
		t.Fatalf("expected chat generator, got %T", g)
	}
	if chat.Model() != "kimi" {
		t.Errorf("model: got %q", chat.Model())
	}
}

func TestReadiness(t *testing.T) {
	if got := readiness(0); got != defaultReadinessTimeout {
		t.Errorf("zero: got %v", got)
	}
	if got := readiness(3); got != 3*time.Second {
		t.Errorf("3s: got %v", got)
	}
}

func TestNew_NoVectorStore(t *testing.T) {
	_, err := New(context.Background(), config.Config{}, nil, Overrides{})
	if err == nil {
		t.Fatal("expected error without vector store addrs")
	}
}
