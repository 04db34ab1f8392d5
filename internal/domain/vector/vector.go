// Package vector holds the query-side embedding model: a fixed-length dense
// vector paired with a variable-length sparse (index, weight) vector.
package vector

// Fallback constants used when the embedding provider is unavailable.
const (
	fallbackDenseValue = 0.01
)

var (
	fallbackSparseIndices = []uint32{1, 2, 3, 4, 5}
	fallbackSparseValues  = []float64{0.1, 0.2, 0.15, 0.1, 0.05}
)

// SparseVector is a lexical term-weight vector as parallel index/value arrays.
type SparseVector struct {
	Indices []uint32
	Values  []float64
}

// IsEmpty reports whether the vector carries no terms.
func (s SparseVector) IsEmpty() bool { return len(s.Indices) == 0 }

// Valid reports whether indices and values have equal length.
func (s SparseVector) Valid() bool { return len(s.Indices) == len(s.Values) }

// QueryVector is the embedding pair used for hybrid retrieval.
type QueryVector struct {
	Dense  []float64
	Sparse SparseVector
}

// Correction describes how a dense vector was brought to the configured dimension.
type Correction int

const (
	// CorrectionNone means the vector already had the configured dimension.
	CorrectionNone Correction = iota
	// CorrectionPadded means zero entries were appended.
	CorrectionPadded
	// CorrectionTruncated means trailing entries were dropped.
	CorrectionTruncated
)

// String returns the metric label for the correction.
func (c Correction) String() string {
	switch c {
	case CorrectionPadded:
		return "dimension_pad"
	case CorrectionTruncated:
		return "dimension_truncate"
	default:
		return "none"
	}
}

// Fit returns a copy of dense with exactly dim entries: zero-padded when
// shorter, truncated to the first dim entries when longer.
func Fit(dense []float64, dim int) ([]float64, Correction) {
	out := make([]float64, dim)
	copy(out, dense)

	switch {
	case len(dense) < dim:
		return out, CorrectionPadded
	case len(dense) > dim:
		return out, CorrectionTruncated
	default:
		return out, CorrectionNone
	}
}

// Fallback returns the deterministic vector used when no embedding is available.
func Fallback(dim int) QueryVector {
	dense := make([]float64, dim)
	for i := range dense {
		dense[i] = fallbackDenseValue
	}
	indices := make([]uint32, len(fallbackSparseIndices))
	copy(indices, fallbackSparseIndices)
	values := make([]float64, len(fallbackSparseValues))
	copy(values, fallbackSparseValues)

	return QueryVector{
		Dense:  dense,
		Sparse: SparseVector{Indices: indices, Values: values},
	}
}
