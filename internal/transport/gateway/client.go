package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/metrics"
)

const (
	providerName    = "gateway"
	maxErrorExcerpt = 200
	maxBodyBytes    = 16 << 20
)

// Config holds the embedding gateway settings.
type Config struct {
	URL        string
	APIKey     string
	Model      string // label only; the gateway picks its own model
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client calls an HTTP embedding gateway returning dense and sparse vectors
// (e.g. a BGE-M3 service exposing POST /embed).
type Client struct {
	url    string
	apiKey string
	model  string
	http   *http.Client
	logger *zap.Logger
}

// New creates a gateway client. Deadlines come from the caller's context.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = "default"
	}
	return &Client{
		url:    strings.TrimRight(cfg.URL, "/"),
		apiKey: cfg.APIKey,
		model:  model,
		http:   hc,
		logger: logger,
	}
}

// Embed implements domain.Embedder.
func (c *Client) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	doc, err := c.post(ctx, text)
	if err != nil {
		c.fail("request")
		return domain.EmbeddingResult{}, err
	}

	p := ProbeResponse(doc, text)
	if p.DenseStatus != Present {
		c.fail("malformed_response")
		return domain.EmbeddingResult{}, fmt.Errorf("dense vector %s in gateway response: %w",
			p.DenseStatus, domain.ErrEmbeddingMalformed)
	}
	if p.SparseStatus == WrongType {
		c.logger.Warn("Ignoring malformed sparse vector in gateway response")
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, c.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, c.model).Observe(time.Since(start).Seconds())

	c.logger.Debug("Gateway embedding",
		zap.String("dense_path", p.DensePath),
		zap.Int("dense_dim", len(p.Dense)),
		zap.String("sparse_path", p.SparsePath),
		zap.Int("sparse_terms", len(p.Sparse.Indices)),
	)

	res := domain.EmbeddingResult{ProcessedText: p.ProcessedText}
	res.Vector.Dense = p.Dense
	res.Vector.Sparse = p.Sparse
	return res, nil
}

// HealthCheck probes GET {url}/health.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway health: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorExcerpt))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("gateway health: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, text string) (map[string]any, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w: %w", err, domain.ErrEmbeddingProviderError)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorExcerpt))
		return nil, fmt.Errorf("gateway status %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(excerpt)), domain.ErrEmbeddingProviderError)
	}

	var doc map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w: %w", err, domain.ErrEmbeddingMalformed)
	}
	return doc, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) fail(errType string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, c.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, c.model, errType).Inc()
}
