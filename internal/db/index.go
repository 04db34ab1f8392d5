package db

import "strings"

// DistanceMetric used by FT.SEARCH vector similarity queries.
type DistanceMetric string

const (
	// DistanceL2 is Euclidean distance.
	DistanceL2 DistanceMetric = "L2"
	// DistanceIP is inner product distance.
	DistanceIP DistanceMetric = "IP"
	// DistanceCosine is cosine distance.
	DistanceCosine DistanceMetric = "COSINE"
)

// ParseDistanceMetric maps a configured metric name to a DistanceMetric.
func ParseDistanceMetric(s string) (DistanceMetric, bool) {
	switch DistanceMetric(strings.ToUpper(s)) {
	case DistanceCosine, "":
		return DistanceCosine, true
	case DistanceIP, "DOT":
		return DistanceIP, true
	case DistanceL2, "EUCLID":
		return DistanceL2, true
	}
	return "", false
}

// Similarity converts a raw __vector_score distance into a higher-is-better score.
// L2 distances are negated so ordering stays descending.
func (m DistanceMetric) Similarity(distance float64) float64 {
	if m == DistanceL2 {
		return -distance
	}
	return 1.0 - distance
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
