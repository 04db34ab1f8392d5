package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/ayat/internal/db"
	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/domain/search/candidate"
	"github.com/kailas-cloud/ayat/internal/domain/vector"
)

// Payload field names stored on every point hash.
const (
	FieldQuranID   = "quran_id"
	FieldSurahID   = "surah_id"
	FieldAyahID    = "ayah_id"
	FieldJuzID     = "juz_id"
	FieldSurahType = "surah_type"
)

var payloadFields = []string{FieldQuranID, FieldSurahID, FieldAyahID, FieldJuzID, FieldSurahType}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchSparse(ctx context.Context, q *db.SparseQuery) (*db.SearchResult, error)
	IndexExists(ctx context.Context, name string) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo maps the dense and sparse collections onto candidates.
type Repo struct {
	store  store
	metric db.DistanceMetric
}

// New creates a search repository. metric must match the dense index definition.
func New(s store, metric db.DistanceMetric) *Repo {
	if metric == "" {
		metric = db.DistanceCosine
	}
	return &Repo{store: s, metric: metric}
}

// DenseIndexName returns the FT index name of a dense collection.
func DenseIndexName(collection string) string {
	return domain.KeyPrefix + collection + ":idx"
}

// DocPrefix returns the key prefix of point hashes in a collection.
func DocPrefix(collection string) string {
	return domain.KeyPrefix + collection + ":"
}

// TermPrefix returns the key prefix of a sparse collection's posting lists.
func TermPrefix(collection string) string {
	return domain.KeyPrefix + collection + ":term:"
}

// SparseMetaKey marks a loaded sparse collection.
func SparseMetaKey(collection string) string {
	return domain.KeyPrefix + collection + ":meta"
}

// SearchDense performs a KNN search on a dense collection.
func (r *Repo) SearchDense(
	ctx context.Context, collection string, dense []float64, k int,
) ([]candidate.Candidate, error) {
	vec := make([]float32, len(dense))
	for i, v := range dense {
		vec[i] = float32(v)
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    DenseIndexName(collection),
		Vector:       vec,
		K:            k,
		ReturnFields: payloadFields,
		Metric:       r.metric,
	})
	if err != nil {
		return nil, fmt.Errorf("search dense %s: %w", collection, err)
	}
	return toCandidates(sr, collection, candidate.Dense), nil
}

// SearchSparse performs a term-weighted search on a sparse collection.
func (r *Repo) SearchSparse(
	ctx context.Context, collection string, sv vector.SparseVector, k int,
) ([]candidate.Candidate, error) {
	sr, err := r.store.SearchSparse(ctx, &db.SparseQuery{
		TermPrefix: TermPrefix(collection),
		Indices:    sv.Indices,
		Weights:    sv.Values,
		K:          k,
		DocPrefix:  DocPrefix(collection),
	})
	if err != nil {
		return nil, fmt.Errorf("search sparse %s: %w", collection, err)
	}
	return toCandidates(sr, collection, candidate.Sparse), nil
}

// DenseCollectionExists checks the dense FT index.
func (r *Repo) DenseCollectionExists(ctx context.Context, collection string) (bool, error) {
	ok, err := r.store.IndexExists(ctx, DenseIndexName(collection))
	if err != nil {
		return false, fmt.Errorf("check dense collection %s: %w", collection, err)
	}
	return ok, nil
}

// SparseCollectionExists checks the sparse collection marker key.
func (r *Repo) SparseCollectionExists(ctx context.Context, collection string) (bool, error) {
	ok, err := r.store.Exists(ctx, SparseMetaKey(collection))
	if err != nil {
		return false, fmt.Errorf("check sparse collection %s: %w", collection, err)
	}
	return ok, nil
}

// toCandidates preserves the store's ranking order.
func toCandidates(sr *db.SearchResult, collection string, src candidate.Source) []candidate.Candidate {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	prefix := DocPrefix(collection)
	out := make([]candidate.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		payload := ParsePayload(entry.Fields)
		if entry.HasScore {
			out = append(out, candidate.New(id, entry.Score, src, payload))
		} else {
			out = append(out, candidate.NewUnscored(id, src, payload))
		}
	}
	return out
}

// ParsePayload reads verse-locator fields from a point hash. Unparseable numbers stay zero.
func ParsePayload(fields map[string]string) candidate.Payload {
	return candidate.Payload{
		QuranID:   parseInt64(fields[FieldQuranID]),
		SurahID:   int(parseInt64(fields[FieldSurahID])),
		AyahID:    int(parseInt64(fields[FieldAyahID])),
		JuzID:     int(parseInt64(fields[FieldJuzID])),
		SurahType: fields[FieldSurahType],
	}
}

func parseInt64(s string) int64 {
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	// loaders sometimes store ids as floats ("7.0")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}
