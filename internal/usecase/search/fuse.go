package search

import "github.com/kailas-cloud/ayat/internal/domain/search/candidate"

// syntheticScoreStep separates consecutive synthetic ordering scores.
const syntheticScoreStep = 0.01

// Fuse merges dense and sparse hits by rank priority: dense hits in their own
// order, then sparse hits not already present, truncated to topK.
// Candidates without a score get 1.0 - 0.01*rank for display ordering only.
func Fuse(dense, sparse []candidate.Candidate, topK int) []candidate.Candidate {
	if topK <= 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(dense)+len(sparse))
	fused := make([]candidate.Candidate, 0, min(topK, len(dense)+len(sparse)))

	add := func(list []candidate.Candidate) {
		for i := range list {
			if len(fused) == topK {
				return
			}
			c := list[i]
			if _, dup := seen[c.ID()]; dup {
				continue
			}
			seen[c.ID()] = struct{}{}
			fused = append(fused, c)
		}
	}
	add(dense)
	add(sparse)

	for rank := range fused {
		if !fused[rank].HasScore() {
			fused[rank] = fused[rank].WithSyntheticScore(1.0 - syntheticScoreStep*float64(rank))
		}
	}
	return fused
}
