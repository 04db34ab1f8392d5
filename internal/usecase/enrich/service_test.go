package enrich

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/ayat/internal/domain/search/candidate"
	"github.com/kailas-cloud/ayat/internal/domain/verse"
	"github.com/kailas-cloud/ayat/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockRepo struct {
	rows    []verse.Text
	err     error
	lastIDs []int64
	block   bool
}

func (m *mockRepo) FindByIDs(ctx context.Context, ids []int64) ([]verse.Text, error) {
	m.lastIDs = ids
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.rows, m.err
}

func cand(id string, quranID int64) candidate.Candidate {
	return candidate.New(id, 0.5, candidate.Dense, candidate.Payload{QuranID: quranID, SurahID: 2, AyahID: 183})
}

func row(id int64, arabic string) verse.Text {
	return verse.Text{QuranID: id, Arabic: arabic, Urdu: "ur-" + arabic, English: "en-" + arabic, SurahNameEn: "Al-Baqarah"}
}

func TestEnrich_JoinsByIDNotPosition(t *testing.T) {
	repo := &mockRepo{rows: []verse.Text{row(9, "nine"), row(7, "seven")}}
	svc := New(repo, time.Second, nil)
	before := testutil.ToFloat64(metrics.EnrichmentFallbackTotal.WithLabelValues("missing_row"))

	got := svc.Enrich(context.Background(), []candidate.Candidate{cand("p7", 7), cand("p3", 3), cand("p9", 9)})
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].QuranID != 7 || got[0].Arabic != "seven" || got[0].Placeholder {
		t.Errorf("id 7 must use retrieved text, got %+v", got[0].Text)
	}
	if got[1].QuranID != 3 || !got[1].Placeholder || got[1].Arabic != verse.PlaceholderArabic(3) {
		t.Errorf("id 3 must use a placeholder, got %+v", got[1].Text)
	}
	if got[2].QuranID != 9 || got[2].Arabic != "nine" {
		t.Errorf("id 9 must use retrieved text, got %+v", got[2].Text)
	}
	if got[1].SurahID != 2 || got[1].AyahID != 183 {
		t.Errorf("placeholder must keep payload locator fields, got %+v", got[1].Text)
	}
	if got[0].PointID != "p7" || got[0].Origin != "dense" {
		t.Errorf("unexpected candidate fields %+v", got[0])
	}

	after := testutil.ToFloat64(metrics.EnrichmentFallbackTotal.WithLabelValues("missing_row"))
	if after-before != 1 {
		t.Errorf("expected one missing row counted, delta=%v", after-before)
	}
}

func TestResolve_StoreErrorYieldsPlaceholders(t *testing.T) {
	repo := &mockRepo{err: errors.New("connection refused")}
	svc := New(repo, time.Second, nil)
	before := testutil.ToFloat64(metrics.EnrichmentFallbackTotal.WithLabelValues("store_error"))

	got := svc.Resolve(context.Background(), []int64{1, 2, 2})
	if len(got) != 2 {
		t.Fatalf("expected placeholder per unique id, got %d", len(got))
	}
	for _, id := range []int64{1, 2} {
		r := got[id]
		if !r.Placeholder || r.Arabic == "" || r.Urdu == "" || r.English == "" {
			t.Errorf("id %d: expected non-empty placeholder, got %+v", id, r)
		}
	}
	after := testutil.ToFloat64(metrics.EnrichmentFallbackTotal.WithLabelValues("store_error"))
	if after-before != 2 {
		t.Errorf("expected 2 store_error fallbacks, delta=%v", after-before)
	}
}

func TestResolve_TimeoutYieldsPlaceholders(t *testing.T) {
	svc := New(&mockRepo{block: true}, 10*time.Millisecond, nil)

	got := svc.Resolve(context.Background(), []int64{5})
	if !got[5].Placeholder {
		t.Errorf("expected placeholder on timeout, got %+v", got[5])
	}
}

func TestResolve_DeduplicatesIDs(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, time.Second, nil)

	svc.Resolve(context.Background(), []int64{4, 4, 1, 4})
	if len(repo.lastIDs) != 2 || repo.lastIDs[0] != 4 || repo.lastIDs[1] != 1 {
		t.Errorf("expected ids [4 1], got %v", repo.lastIDs)
	}
}

func TestResolve_EmptyIDsSkipsStore(t *testing.T) {
	repo := &mockRepo{err: errors.New("must not be called")}
	svc := New(repo, time.Second, nil)

	if got := svc.Resolve(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
	if repo.lastIDs != nil {
		t.Error("store must not be queried for no ids")
	}
}

func TestLocatorIDs(t *testing.T) {
	cands := []candidate.Candidate{
		cand("x", 11),
		candidate.New("42", 0.1, candidate.Sparse, candidate.Payload{}),
		candidate.New("not-a-number", 0.1, candidate.Sparse, candidate.Payload{}),
	}
	got := LocatorIDs(cands)
	if len(got) != 2 || got[0] != 11 || got[1] != 42 {
		t.Errorf("expected [11 42], got %v", got)
	}
}

func TestJoin_SyntheticScoreCarried(t *testing.T) {
	c := candidate.NewUnscored("8", candidate.Sparse, candidate.Payload{})
	c = c.WithSyntheticScore(0.97)

	got := Join([]candidate.Candidate{c}, map[int64]verse.Text{8: row(8, "eight")})
	if !got[0].SyntheticScore || got[0].Score != 0.97 || got[0].Origin != "sparse" {
		t.Errorf("unexpected enriched record %+v", got[0])
	}
}

func TestEnrich_NullTextColumnsGetPlaceholders(t *testing.T) {
	repo := &mockRepo{rows: []verse.Text{{QuranID: 7, English: "Indeed", SurahNameEn: "Al-Baqarah"}}}
	svc := New(repo, time.Second, nil)

	got := svc.Enrich(context.Background(), []candidate.Candidate{cand("p7", 7)})
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	r := got[0]
	if r.Arabic != verse.PlaceholderArabic(7) || r.Urdu != verse.PlaceholderUrdu(7) {
		t.Errorf("NULL text columns must fall back to placeholders, got ar=%q ur=%q", r.Arabic, r.Urdu)
	}
	if r.English != "Indeed" || r.SurahNameEn != "Al-Baqarah" {
		t.Errorf("stored fields must be kept, got %+v", r.Text)
	}
	if r.Placeholder {
		t.Error("a stored row is not a placeholder record")
	}
}

func TestJoin_DropsCandidatesWithoutLocator(t *testing.T) {
	cands := []candidate.Candidate{
		cand("p7", 7),
		candidate.New("not-a-number", 0.4, candidate.Sparse, candidate.Payload{}),
	}
	got := Join(cands, map[int64]verse.Text{7: row(7, "seven")})
	if len(got) != 1 || got[0].QuranID != 7 {
		t.Fatalf("expected only id 7, got %+v", got)
	}

	ids := LocatorIDs(cands)
	if len(ids) != len(got) || ids[0] != got[0].QuranID {
		t.Errorf("joined records %v and locator ids %v must agree", got, ids)
	}
	for i := range got {
		if got[i].QuranID == 0 || got[i].English == verse.PlaceholderEnglish(0) {
			t.Errorf("record without a verse id leaked: %+v", got[i].Text)
		}
	}
}
