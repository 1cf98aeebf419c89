package ingest

import (
	"context"

	"github.com/haulware/loadlens/internal/domain"
)

// Rebuilder replaces the whole chunk store with a new chunk set.
type Rebuilder interface {
	Rebuild(ctx context.Context, chunks []domain.Chunk) (int, error)
}
