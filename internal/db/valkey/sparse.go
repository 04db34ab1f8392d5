package valkey

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/ayat/internal/db"
)

type scoredMember struct {
	member string
	score  float64
}

// SearchSparse scores points by the dot product of query weights with stored term weights.
//
// Every term index is a sorted set (member = point id, score = term weight), so a
// weighted ZUNION with AGGREGATE SUM yields exactly the sparse dot product. Ties are
// broken by point id for a stable order.
func (s *Store) SearchSparse(ctx context.Context, q *db.SparseQuery) (*db.SearchResult, error) {
	if q.TermPrefix == "" {
		return nil, fmt.Errorf("term prefix is required")
	}
	if len(q.Indices) == 0 {
		return nil, fmt.Errorf("sparse vector is empty")
	}
	if len(q.Indices) != len(q.Weights) {
		return nil, fmt.Errorf("sparse vector has %d indices and %d weights", len(q.Indices), len(q.Weights))
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	cmd := s.b().Arbitrary("ZUNION").Args(zunionArgs(q)...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpZUnion, Err: err}
	}

	hits, err := parseScoredMembers(raw)
	if err != nil {
		return nil, &db.Error{Op: db.OpZUnion, Err: err}
	}
	total := len(hits)

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].member < hits[j].member
	})
	if len(hits) > q.K {
		hits = hits[:q.K]
	}

	entries := make([]db.SearchEntry, len(hits))
	for i, h := range hits {
		entries[i] = db.SearchEntry{Key: q.DocPrefix + h.member, Score: h.score, HasScore: true}
	}

	if q.DocPrefix != "" && len(entries) > 0 {
		keys := make([]string, len(entries))
		for i := range entries {
			keys[i] = entries[i].Key
		}
		payloads, err := s.HGetAllMulti(ctx, keys)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			entries[i].Fields = payloads[i]
		}
	}

	return &db.SearchResult{Total: total, Entries: entries}, nil
}

func zunionArgs(q *db.SparseQuery) []string {
	n := len(q.Indices)
	args := make([]string, 0, 2*n+5)
	args = append(args, strconv.Itoa(n))
	for _, idx := range q.Indices {
		args = append(args, q.TermPrefix+strconv.FormatUint(uint64(idx), 10))
	}
	args = append(args, "WEIGHTS")
	for _, w := range q.Weights {
		args = append(args, strconv.FormatFloat(w, 'f', -1, 64))
	}
	return append(args, "AGGREGATE", "SUM", "WITHSCORES")
}

// parseScoredMembers accepts both the flat RESP2 reply [m1, s1, m2, s2, ...]
// and the RESP3 reply [[m1, s1], [m2, s2], ...].
func parseScoredMembers(raw []rueidis.RedisMessage) ([]scoredMember, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if raw[0].IsArray() {
		out := make([]scoredMember, 0, len(raw))
		for _, pair := range raw {
			kv, err := pair.ToArray()
			if err != nil || len(kv) != 2 {
				return nil, fmt.Errorf("malformed scored member")
			}
			m, err := toScoredMember(kv[0], kv[1])
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	}

	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("odd reply length %d", len(raw))
	}
	out := make([]scoredMember, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		m, err := toScoredMember(raw[i], raw[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func toScoredMember(member, score rueidis.RedisMessage) (scoredMember, error) {
	name, err := member.ToString()
	if err != nil {
		return scoredMember{}, fmt.Errorf("parse member: %w", err)
	}
	f, err := score.AsFloat64()
	if err != nil {
		return scoredMember{}, fmt.Errorf("parse score for %s: %w", name, err)
	}
	return scoredMember{member: name, score: f}, nil
}
