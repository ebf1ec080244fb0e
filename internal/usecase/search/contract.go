package search

import (
	"context"

	"github.com/trovato-shop/trovato/internal/domain"
	"github.com/trovato-shop/trovato/internal/fetch"
)

// Catalog defines the storage contract for search operations.
type Catalog interface {
	SearchByVector(ctx context.Context, vector []float32, threshold float64, limit int) ([]domain.Match, error)
	ListByCategory(ctx context.Context, cat domain.Category, limit int) ([]domain.Item, error)
	SearchByName(ctx context.Context, term string, limit int) ([]domain.Item, error)
	ListAll(ctx context.Context, limit int) ([]domain.Item, error)
}

// Embedder vectorizes the query image.
type Embedder interface {
	Embed(ctx context.Context, image domain.ImageInput) (domain.EmbeddingResult, error)
}

// Vision is the multimodal model behind the identify, text and compare passes.
type Vision interface {
	Identify(ctx context.Context, image domain.ImageInput) (domain.Identification, error)
	AnalyzeText(ctx context.Context, query string) (domain.TextAnalysis, error)
	Compare(ctx context.Context, reference domain.ImageInput, candidates []domain.CandidateImage) (domain.Comparison, error)
}

// Fetcher downloads candidate images for the compare pass.
type Fetcher interface {
	FetchAll(ctx context.Context, urls []string) []fetch.Result
}
