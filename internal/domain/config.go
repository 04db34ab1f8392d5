package domain

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Dimensions       int
	DistanceMetric   string
	DenseCollection  string
	SparseCollection string
}

// DefaultVectorConfig returns the configuration of the reference deployment (BGE-M3, 1024 dims).
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Dimensions:       1024,
		DistanceMetric:   "cosine",
		DenseCollection:  "quran_dense",
		SparseCollection: "quran_sparse",
	}
}

// KeyPrefix namespaces every key the service reads from the vector store.
const KeyPrefix = "ayat:"
