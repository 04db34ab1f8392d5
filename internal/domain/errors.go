package domain

import "errors"

var (
	// ErrNotFound signals that retrieval produced zero candidates.
	ErrNotFound = errors.New("no verses found matching your query")
	// ErrRetrievalFailed signals a dense vector search infrastructure failure.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrInvalidRequest signals a malformed inbound query.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingMalformed signals a provider response without a usable dense vector.
	ErrEmbeddingMalformed = errors.New("embedding response malformed")
	// ErrTextStoreUnavailable signals that the relational text store could not be queried.
	ErrTextStoreUnavailable = errors.New("text store unavailable")
	// ErrGenerationFailed signals a generative backend failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrResponseTooShort signals a generation shorter than the accepted minimum.
	ErrResponseTooShort = errors.New("generated response too short")
)
