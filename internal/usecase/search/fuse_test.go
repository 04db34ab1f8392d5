package search

import (
	"math"
	"testing"

	"github.com/kailas-cloud/ayat/internal/domain/search/candidate"
)

func dense(ids ...string) []candidate.Candidate {
	out := make([]candidate.Candidate, len(ids))
	for i, id := range ids {
		out[i] = candidate.New(id, 0.9-float64(i)*0.1, candidate.Dense, candidate.Payload{})
	}
	return out
}

func sparse(ids ...string) []candidate.Candidate {
	out := make([]candidate.Candidate, len(ids))
	for i, id := range ids {
		out[i] = candidate.New(id, 12.5-float64(i), candidate.Sparse, candidate.Payload{})
	}
	return out
}

func ids(cs []candidate.Candidate) []string {
	out := make([]string, len(cs))
	for i := range cs {
		out[i] = cs[i].ID()
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFuse_DensePriority(t *testing.T) {
	got := Fuse(dense("A", "B", "C"), sparse("C", "D", "E"), 4)

	want := []string{"A", "B", "C", "D"}
	if !equalIDs(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
	if got[2].Source() != candidate.Dense {
		t.Errorf("duplicate id must keep the dense hit, got %s", got[2].Source())
	}
	if got[3].Source() != candidate.Sparse {
		t.Errorf("expected sparse hit appended, got %s", got[3].Source())
	}
}

func TestFuse_NoDuplicatesAndBounded(t *testing.T) {
	got := Fuse(dense("1", "2", "2", "3"), sparse("3", "1", "4", "4", "5"), 10)

	want := []string{"1", "2", "3", "4", "5"}
	if !equalIDs(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}

	for _, k := range []int{0, 1, 2, 3} {
		if n := len(Fuse(dense("1", "2"), sparse("3", "4"), k)); n > k {
			t.Errorf("topK=%d: got %d results", k, n)
		}
	}
}

func TestFuse_Idempotent(t *testing.T) {
	d := dense("x", "y", "z")
	s := sparse("z", "w", "x", "v")

	first := ids(Fuse(d, s, 5))
	second := ids(Fuse(d, s, 5))
	if !equalIDs(first, second) {
		t.Fatalf("fusion not idempotent: %v vs %v", first, second)
	}
}

func TestFuse_KeepsRealScores(t *testing.T) {
	got := Fuse(dense("A"), sparse("B"), 2)
	if got[0].Synthetic() || got[1].Synthetic() {
		t.Fatal("scored candidates must not receive synthetic scores")
	}
	if math.Abs(got[0].Score()-0.9) > 1e-9 || math.Abs(got[1].Score()-12.5) > 1e-9 {
		t.Errorf("unexpected scores %f, %f", got[0].Score(), got[1].Score())
	}
}

func TestFuse_SynthesizesMissingScores(t *testing.T) {
	d := []candidate.Candidate{
		candidate.New("A", 0.8, candidate.Dense, candidate.Payload{}),
		candidate.NewUnscored("B", candidate.Dense, candidate.Payload{}),
	}
	s := []candidate.Candidate{candidate.NewUnscored("C", candidate.Sparse, candidate.Payload{})}

	got := Fuse(d, s, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].Synthetic() {
		t.Error("A has a real score")
	}
	if !got[1].Synthetic() || math.Abs(got[1].Score()-0.99) > 1e-9 {
		t.Errorf("expected synthetic 0.99 at rank 1, got %f (synthetic=%v)", got[1].Score(), got[1].Synthetic())
	}
	if !got[2].Synthetic() || math.Abs(got[2].Score()-0.98) > 1e-9 {
		t.Errorf("expected synthetic 0.98 at rank 2, got %f", got[2].Score())
	}
}

func TestFuse_EmptyInputs(t *testing.T) {
	if got := Fuse(nil, nil, 5); len(got) != 0 {
		t.Errorf("expected empty result, got %v", ids(got))
	}
	if got := Fuse(nil, sparse("s1"), 5); !equalIDs(ids(got), []string{"s1"}) {
		t.Errorf("expected sparse-only result, got %v", ids(got))
	}
}
