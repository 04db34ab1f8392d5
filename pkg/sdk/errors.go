package ayat

import "github.com/kailas-cloud/ayat/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound        = domain.ErrNotFound
	ErrRetrievalFailed = domain.ErrRetrievalFailed
	ErrInvalidRequest  = domain.ErrInvalidRequest
)
