package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a failing component the pipeline can work around.
	Degraded Status = "degraded"
	// Unhealthy indicates the vector store is down and no query can succeed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	VectorStore = "vector_store"
	TextStore   = "text_store"
	Embedding   = "embedding"
)

const defaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	vectors   Pinger
	texts     Pinger
	embedding EmbeddingChecker
	timeout   time.Duration
}

// New creates a Service. texts and embedding can be nil.
func New(vectors, texts Pinger, embedding EmbeddingChecker) *Service {
	return &Service{vectors: vectors, texts: texts, embedding: embedding, timeout: defaultCheckTimeout}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 3)

	checks[VectorStore] = s.run(ctx, s.vectors.Ping)
	if s.texts != nil {
		checks[TextStore] = s.run(ctx, s.texts.Ping)
	}
	if s.embedding != nil {
		checks[Embedding] = s.run(ctx, s.embedding.HealthCheck)
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[VectorStore] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) run(ctx context.Context, fn func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
