package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/domain/search/request"
	"github.com/kailas-cloud/ayat/internal/logger"
	healthuc "github.com/kailas-cloud/ayat/internal/usecase/health"
	"github.com/kailas-cloud/ayat/internal/usecase/pipeline"
	"github.com/kailas-cloud/ayat/internal/version"
)

const maxBodyBytes = 64 << 10

// Answerer runs the question pipeline.
type Answerer interface {
	Answer(ctx context.Context, req request.Request) (pipeline.Response, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// RetrievalProber runs a synthetic retrieval against both collections.
type RetrievalProber interface {
	Probe(ctx context.Context) (int, error)
}

// Limits bounds top_k for inbound requests.
type Limits struct {
	DefaultTopK int
	MaxTopK     int
}

// Server serves the search API.
type Server struct {
	answers       Answerer
	health        HealthChecker
	prober        RetrievalProber
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. prober can be nil.
func NewServer(
	answers Answerer,
	health HealthChecker,
	prober RetrievalProber,
	limits Limits,
	logger *zap.Logger,
) *Server {
	if limits.DefaultTopK <= 0 {
		limits.DefaultTopK = request.DefaultTopK
	}
	if limits.MaxTopK < limits.DefaultTopK {
		limits.MaxTopK = request.MaxTopK
	}
	return &Server{
		answers:       answers,
		health:        health,
		prober:        prober,
		limits:        limits,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Root)
	r.Post("/search", s.SearchPost)
	r.Get("/search", s.SearchGet)
	r.Get("/health", s.HealthCheck)
	r.Get("/health/search", s.SearchProbe)
	r.Get("/metrics", s.Metrics)
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Quran Search API - Hybrid Search with LLM",
		"status":  "running",
		"version": version.Version,
		"build":   version.String(),
		"endpoints": map[string]string{
			"search":        "POST /search",
			"search_query":  "GET /search?text=&top_k=",
			"health":        "GET /health",
			"search_health": "GET /health/search",
			"metrics":       "GET /metrics",
		},
	})
}

// SearchPost handles POST /search.
func (s *Server) SearchPost(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.answer(w, r, req.Text, derefInt(req.TopK))
}

// SearchGet handles GET /search?text=&top_k=.
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var text string
	if err := runtime.BindQueryParameter("form", true, true, "text", q, &text); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Sprintf("Invalid query parameter text: %s", err))
		return
	}
	var topK *int
	if err := runtime.BindQueryParameter("form", true, false, "top_k", q, &topK); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Sprintf("Invalid query parameter top_k: %s", err))
		return
	}
	s.answer(w, r, text, derefInt(topK))
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request, text string, topK int) {
	req, err := request.NewWithLimits(text, topK, s.limits.DefaultTopK, s.limits.MaxTopK)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.answers.Answer(ctx, req)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResponseFrom(&resp))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// SearchProbe handles GET /health/search.
func (s *Server) SearchProbe(w http.ResponseWriter, r *http.Request) {
	if s.prober == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "search probe not configured")
		return
	}
	n, err := s.prober.Probe(r.Context())
	if err != nil {
		logger.FromContextOr(r.Context(), s.logger).Warn("search probe failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":  "error",
			"working": false,
			"error":   safeDomainMessage(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"working":       true,
		"results_found": n,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContextOr(ctx, s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage == nil || !usage.Used {
		return
	}
	w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	if usage.Degraded {
		w.Header().Set("X-Embedding-Degraded", "true")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
