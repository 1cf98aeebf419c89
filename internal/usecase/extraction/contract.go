package extraction

import (
	"context"

	"github.com/haulware/loadlens/internal/domain"
)

// Retriever answers nearest-neighbour similarity queries over the
// current chunk set.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]domain.Retrieved, error)
}

// Generator produces free-form completion text from a system instruction
// and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
