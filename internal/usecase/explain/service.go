package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/domain/explanation"
	"github.com/kailas-cloud/ayat/internal/logger"
	"github.com/kailas-cloud/ayat/internal/metrics"
	"github.com/kailas-cloud/ayat/internal/retry"
)

// Config bounds generation. Zero attempts, timeout and thresholds take the
// defaults; zero delays retry immediately.
type Config struct {
	MaxAttempts     int
	AttemptTimeout  time.Duration
	ShortRetryDelay time.Duration // after a too-short response
	ErrorRetryDelay time.Duration // after a failed call
	MinChars        int
	MinWords        int
}

// DefaultConfig returns the reference generation settings.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     3,
		AttemptTimeout:  45 * time.Second,
		ShortRetryDelay: 2 * time.Second,
		ErrorRetryDelay: 3 * time.Second,
		MinChars:        100,
		MinWords:        300,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxAttempts < 1 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = d.AttemptTimeout
	}
	if c.ShortRetryDelay < 0 {
		c.ShortRetryDelay = 0
	}
	if c.ErrorRetryDelay < 0 {
		c.ErrorRetryDelay = 0
	}
	if c.MinChars <= 0 {
		c.MinChars = d.MinChars
	}
	if c.MinWords <= 0 {
		c.MinWords = d.MinWords
	}
	return c
}

// Service produces grounded explanations. Explain always returns a usable explanation.
type Service struct {
	gen    Generator
	cfg    Config
	model  string
	logger *zap.Logger
}

// New creates an explanation service. A nil generator always yields the fallback.
func New(gen Generator, cfg Config, lg *zap.Logger) *Service {
	if lg == nil {
		lg = zap.NewNop()
	}
	model := "unknown"
	if mn, ok := gen.(modelNamer); ok {
		model = mn.Model()
	}
	return &Service{gen: gen, cfg: cfg.withDefaults(), model: model, logger: lg}
}

// Explain generates an explanation of grounding for query, citing ids.
// Generation failures end in the topic-aware fallback; no error is returned.
func (s *Service) Explain(
	ctx context.Context, query string, grounding []Grounding, ids []int64,
) explanation.Explanation {
	log := logger.FromContextOr(ctx, s.logger)
	st := &stateMachine{state: explanation.Pending, log: log}

	text, attempts, err := s.generate(ctx, query, grounding, st)
	if err == nil {
		st.to(explanation.Success)
		return s.finish(text, ids, explanation.Success, attempts)
	}

	st.to(explanation.Exhausted)
	topic := ClassifyTopic(query)
	log.Warn("Generation exhausted, using fallback explanation",
		zap.String("stage", "generation"),
		zap.String("topic", topic.Key),
		zap.Int("attempts", attempts),
		zap.Int64s("ids", ids),
		zap.Error(err),
	)
	st.to(explanation.FallbackSuccess)
	return s.finish(Fallback(query, topic, ids), ids, explanation.FallbackSuccess, attempts)
}

func (s *Service) generate(
	ctx context.Context, query string, grounding []Grounding, st *stateMachine,
) (string, int, error) {
	if s.gen == nil {
		return "", 0, fmt.Errorf("%w: no generator configured", domain.ErrGenerationFailed)
	}

	system := SystemPrompt(s.cfg.MinWords)
	user := UserPrompt(query, grounding, s.cfg.MinWords)

	policy := retry.Policy{
		MaxAttempts:    s.cfg.MaxAttempts,
		AttemptTimeout: s.cfg.AttemptTimeout,
		Backoff: func(_ int, err error) time.Duration {
			if errors.Is(err, domain.ErrResponseTooShort) {
				return s.cfg.ShortRetryDelay
			}
			return s.cfg.ErrorRetryDelay
		},
		OnRetry: func(attempt int, err error) {
			st.log.Warn("Generation attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", s.cfg.MaxAttempts),
				zap.Error(err),
			)
			st.to(explanation.Retrying)
		},
	}

	return retry.Do(ctx, policy, func(ctx context.Context, attempt int) (string, error) {
		start := time.Now()
		out, err := s.gen.Generate(ctx, system, user)
		metrics.GenerationDuration.WithLabelValues(s.model).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.GenerationAttemptsTotal.WithLabelValues("error").Inc()
			return "", err
		}

		out = strings.TrimSpace(out)
		if n := utf8.RuneCountInString(out); n < s.cfg.MinChars {
			metrics.GenerationAttemptsTotal.WithLabelValues("too_short").Inc()
			return "", fmt.Errorf("%w: %d chars on attempt %d", domain.ErrResponseTooShort, n, attempt)
		}

		metrics.GenerationAttemptsTotal.WithLabelValues("success").Inc()
		return out, nil
	})
}

func (s *Service) finish(text string, ids []int64, state explanation.State, attempts int) explanation.Explanation {
	metrics.ExplanationsTotal.WithLabelValues(string(state)).Inc()
	e, err := explanation.New(text, ids, state, attempts)
	if err != nil {
		s.logger.Error("Invalid explanation", zap.Error(err))
	}
	return e
}

// stateMachine tracks the generation lifecycle for one request.
type stateMachine struct {
	state explanation.State
	log   *zap.Logger
}

func (m *stateMachine) to(next explanation.State) {
	if !explanation.CanTransition(m.state, next) {
		m.log.Error("Illegal explanation state transition",
			zap.String("from", string(m.state)),
			zap.String("to", string(next)),
		)
	}
	m.state = next
}
