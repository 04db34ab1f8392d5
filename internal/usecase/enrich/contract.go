package enrich

import (
	"context"

	"github.com/kailas-cloud/ayat/internal/domain/verse"
)

// Repository looks up canonical verse text. Row order is not guaranteed.
type Repository interface {
	FindByIDs(ctx context.Context, ids []int64) ([]verse.Text, error)
}
