package db

// KNNQuery is the input for dense vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
	// Metric selects how __vector_score is mapped to a similarity. Empty means COSINE.
	Metric DistanceMetric
}

// SparseQuery is the input for sparse (term-weighted) similarity search.
//
// Each term index has its own posting list at TermPrefix+index; the score of a
// point is the dot product of the query weights with its stored term weights.
type SparseQuery struct {
	TermPrefix string
	Indices    []uint32
	Weights    []float64
	K          int
	// DocPrefix, when set, loads the payload hash at DocPrefix+id for each hit.
	DocPrefix string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single point hit from a search.
type SearchEntry struct {
	Key   string
	Score float64
	// HasScore is false when the server returned no score for the hit.
	HasScore bool
	Fields   map[string]string
}
