package enrich

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/domain/search/candidate"
	"github.com/kailas-cloud/ayat/internal/domain/verse"
	"github.com/kailas-cloud/ayat/internal/logger"
	"github.com/kailas-cloud/ayat/internal/metrics"
)

// DefaultTimeout bounds a single text lookup.
const DefaultTimeout = 10 * time.Second

// Service resolves locator ids to canonical text, degrading to placeholders.
type Service struct {
	repo    Repository
	timeout time.Duration
	logger  *zap.Logger
}

// New creates an enrichment service.
func New(repo Repository, timeout time.Duration, lg *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{repo: repo, timeout: timeout, logger: lg}
}

// Resolve returns the text records found for ids, keyed by locator id.
// When the store fails, every requested id maps to a placeholder record.
func (s *Service) Resolve(ctx context.Context, ids []int64) map[int64]verse.Text {
	ids = uniqueIDs(ids)
	out := make(map[int64]verse.Text, len(ids))
	if len(ids) == 0 {
		return out
	}

	rows, err := s.lookup(ctx, ids)
	if err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Text lookup failed, using placeholders",
			zap.String("stage", "enrichment"),
			zap.Int64s("ids", ids),
			zap.Error(err),
		)
		metrics.EnrichmentFallbackTotal.WithLabelValues("store_error").Add(float64(len(ids)))
		for _, id := range ids {
			out[id] = verse.Placeholder(id)
		}
		return out
	}

	for _, r := range rows {
		out[r.QuranID] = r
	}
	return out
}

func (s *Service) lookup(ctx context.Context, ids []int64) ([]verse.Text, error) {
	if s.repo == nil {
		return nil, domain.ErrTextStoreUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTextStoreUnavailable, err)
	}
	return rows, nil
}

// Enrich resolves and joins candidates in one step.
func (s *Service) Enrich(ctx context.Context, cands []candidate.Candidate) []verse.Enriched {
	texts := s.Resolve(ctx, LocatorIDs(cands))
	out := Join(cands, texts)

	if dropped := len(cands) - len(out); dropped > 0 {
		logger.FromContextOr(ctx, s.logger).Warn("Dropped candidates without a verse id",
			zap.String("stage", "enrichment"),
			zap.Int("dropped", dropped),
		)
	}

	var missing []int64
	for i := range out {
		if out[i].Placeholder {
			if _, resolved := texts[out[i].QuranID]; !resolved {
				missing = append(missing, out[i].QuranID)
			}
		}
	}
	if len(missing) > 0 {
		logger.FromContextOr(ctx, s.logger).Warn("Verses without canonical text",
			zap.String("stage", "enrichment"),
			zap.Int64s("ids", missing),
		)
		metrics.EnrichmentFallbackTotal.WithLabelValues("missing_row").Add(float64(len(missing)))
	}
	return out
}

// LocatorIDs returns the locator ids of cands in order. Candidates without one are skipped.
func LocatorIDs(cands []candidate.Candidate) []int64 {
	out := make([]int64, 0, len(cands))
	for i := range cands {
		if id, ok := cands[i].LocatorID(); ok {
			out = append(out, id)
		}
	}
	return out
}

// Join pairs each candidate with its text by locator id, never by position.
// Candidates with no matching record get a placeholder and blank text fields are
// filled with stand-ins. Candidates without a locator id are dropped, as in LocatorIDs.
// Output order follows cands.
func Join(cands []candidate.Candidate, texts map[int64]verse.Text) []verse.Enriched {
	out := make([]verse.Enriched, 0, len(cands))
	for i := range cands {
		c := &cands[i]
		id, ok := c.LocatorID()
		if !ok {
			continue
		}

		t, found := texts[id]
		if !found {
			t = verse.Placeholder(id)
		}
		t.QuranID = id
		t = t.WithPlaceholders()
		fillLocator(&t, c.Payload())

		out = append(out, verse.Enriched{
			Text:           t,
			PointID:        c.ID(),
			Score:          c.Score(),
			SyntheticScore: c.Synthetic(),
			Origin:         string(c.Source()),
		})
	}
	return out
}

// fillLocator copies payload locator fields the text record lacks.
func fillLocator(t *verse.Text, p candidate.Payload) {
	if t.SurahID == 0 {
		t.SurahID = p.SurahID
	}
	if t.AyahID == 0 {
		t.AyahID = p.AyahID
	}
	if t.JuzID == 0 {
		t.JuzID = p.JuzID
	}
	if t.SurahType == "" {
		t.SurahType = p.SurahType
	}
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
