package gateway

import (
	"math"
	"strings"

	"github.com/kailas-cloud/ayat/internal/domain/vector"
)

// Status classifies one probed field.
type Status int

// Probe outcomes.
const (
	Absent Status = iota
	WrongType
	Present
)

func (s Status) String() string {
	switch s {
	case Present:
		return "present"
	case WrongType:
		return "wrong_type"
	default:
		return "absent"
	}
}

// Response field paths, tried in order. The first Present match wins.
var (
	densePaths        = []string{"embeddings.dense_vector", "embeddings.dense", "dense_vector", "dense", "embedding"}
	sparseObjectPaths = []string{"embeddings.sparse", "sparse"}
	sparsePairPaths   = [][2]string{{"sparse_indices", "sparse_values"}, {"indices", "values"}}
	textPaths         = []string{"text", "processed_text"}
)

// Probe is the typed outcome of inspecting a provider response.
type Probe struct {
	Dense       []float64
	DensePath   string
	DenseStatus Status

	Sparse       vector.SparseVector
	SparsePath   string
	SparseStatus Status

	ProcessedText string
}

// ProbeResponse inspects a decoded JSON document. It never fails; callers decide
// what an Absent or WrongType dense vector means.
func ProbeResponse(doc map[string]any, query string) Probe {
	var p Probe
	p.Dense, p.DensePath, p.DenseStatus = probeFloats(doc, densePaths)
	p.Sparse, p.SparsePath, p.SparseStatus = probeSparse(doc)

	p.ProcessedText = query
	for _, path := range textPaths {
		if s, ok := lookup(doc, path).(string); ok && strings.TrimSpace(s) != "" {
			p.ProcessedText = s
			break
		}
	}
	return p
}

// lookup walks a dotted path through nested objects.
func lookup(doc map[string]any, path string) any {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		if cur, ok = m[part]; !ok {
			return nil
		}
	}
	return cur
}

func probeFloats(doc map[string]any, paths []string) ([]float64, string, Status) {
	worst := Absent
	for _, path := range paths {
		v := lookup(doc, path)
		if v == nil {
			continue
		}
		fs, st := asFloats(v)
		switch st {
		case Present:
			return fs, path, Present
		case WrongType:
			worst = WrongType
		}
	}
	return nil, "", worst
}

func probeSparse(doc map[string]any) (vector.SparseVector, string, Status) {
	worst := Absent
	for _, path := range sparseObjectPaths {
		v := lookup(doc, path)
		if v == nil {
			continue
		}
		obj, ok := v.(map[string]any)
		if !ok {
			worst = WrongType
			continue
		}
		sv, st := asSparse(obj["indices"], obj["values"])
		if st == Present {
			return sv, path, Present
		}
		if st == WrongType {
			worst = WrongType
		}
	}
	for _, pair := range sparsePairPaths {
		idx, vals := lookup(doc, pair[0]), lookup(doc, pair[1])
		if idx == nil && vals == nil {
			continue
		}
		sv, st := asSparse(idx, vals)
		if st == Present {
			return sv, pair[0] + "," + pair[1], Present
		}
		if st == WrongType {
			worst = WrongType
		}
	}
	return vector.SparseVector{}, "", worst
}

// asFloats accepts a non-empty JSON array of numbers. An empty array counts as Absent.
func asFloats(v any) ([]float64, Status) {
	arr, ok := v.([]any)
	if !ok {
		return nil, WrongType
	}
	if len(arr) == 0 {
		return nil, Absent
	}
	out := make([]float64, len(arr))
	for i, e := range arr {
		f, ok := e.(float64)
		if !ok {
			return nil, WrongType
		}
		out[i] = f
	}
	return out, Present
}

func asSparse(rawIdx, rawVals any) (vector.SparseVector, Status) {
	if rawIdx == nil && rawVals == nil {
		return vector.SparseVector{}, Absent
	}
	vals, st := asFloats(rawVals)
	if st == WrongType {
		return vector.SparseVector{}, WrongType
	}
	idxF, ist := asFloats(rawIdx)
	if ist == WrongType {
		return vector.SparseVector{}, WrongType
	}
	if st == Absent && ist == Absent {
		return vector.SparseVector{}, Absent
	}
	if len(idxF) != len(vals) {
		return vector.SparseVector{}, WrongType
	}

	idx := make([]uint32, len(idxF))
	for i, f := range idxF {
		if f < 0 || f > math.MaxUint32 || f != math.Trunc(f) {
			return vector.SparseVector{}, WrongType
		}
		idx[i] = uint32(f)
	}
	return vector.SparseVector{Indices: idx, Values: vals}, Present
}
