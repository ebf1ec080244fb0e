package domain

import (
	"context"
	"math"
)

// ImageInput is one query or candidate image, either referenced by URL or
// carried inline with its MIME type.
type ImageInput struct {
	URL  string
	Data []byte
	MIME string
}

// ImageFromURL references a remote image.
func ImageFromURL(url string) ImageInput { return ImageInput{URL: url} }

// ImageFromBytes carries inline encoded image bytes.
func ImageFromBytes(data []byte, mime string) ImageInput {
	return ImageInput{Data: data, MIME: mime}
}

// IsZero reports whether no image was supplied.
func (i ImageInput) IsZero() bool { return i.URL == "" && len(i.Data) == 0 }

// EmbeddingResult carries the vector and token usage from the encoder.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder turns one image into a fixed-dimension normalized vector.
type Embedder interface {
	Embed(ctx context.Context, image ImageInput) (EmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Normalize scales v to unit L2 norm in place and returns it, so cosine
// similarity against stored vectors reduces to a dot product. A zero vector
// is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}
