package index

import (
	"context"

	"github.com/trovato-shop/trovato/internal/domain"
)

// Catalog defines the storage contract for indexing.
type Catalog interface {
	EnsureIndex(ctx context.Context) error
	IDs(ctx context.Context) ([]string, error)
	GetMulti(ctx context.Context, ids []string) ([]domain.Item, error)
	SetVector(ctx context.Context, id string, vector []float32) error
	Counts(ctx context.Context) (total, indexed int, err error)
}

// Embedder vectorizes catalog images.
type Embedder interface {
	Embed(ctx context.Context, image domain.ImageInput) (domain.EmbeddingResult, error)
}
