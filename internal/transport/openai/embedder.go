package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/trovato-shop/trovato/internal/domain"
	"github.com/trovato-shop/trovato/internal/metrics"
)

// Embedder is an image embedding provider speaking the OpenAI-compatible
// embeddings API against a CLIP-style multimodal encoder. The underlying
// client is created once, on first use.
type Embedder struct {
	cfg    *EmbedderConfig
	logger *zap.Logger

	once   sync.Once
	client *openai.Client
}

// EmbedderConfig holds the embedding provider settings. A zero Timeout
// falls back to defaultEmbedTimeout.
type EmbedderConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Provider   string
	Timeout    time.Duration
}

const defaultEmbedTimeout = 30 * time.Second

// NewEmbedder creates a lazily initialized embedding provider.
func NewEmbedder(cfg *EmbedderConfig, logger *zap.Logger) *Embedder {
	return &Embedder{cfg: cfg, logger: logger}
}

func (e *Embedder) getClient() *openai.Client {
	e.once.Do(func() {
		clientCfg := openai.DefaultConfig(e.cfg.APIKey)
		if e.cfg.BaseURL != "" {
			clientCfg.BaseURL = e.cfg.BaseURL
		}
		e.client = openai.NewClientWithConfig(clientCfg)
		e.logger.Info("embedding client initialized",
			zap.String("provider", e.cfg.Provider),
			zap.String("model", e.cfg.Model),
		)
	})
	return e.client
}

// Embed implements domain.Embedder. The image goes over the wire as a URL or
// a data URI; the encoder resolves either. The returned vector is L2
// normalized and dimension checked.
func (e *Embedder) Embed(ctx context.Context, image domain.ImageInput) (domain.EmbeddingResult, error) {
	if image.IsZero() {
		return domain.EmbeddingResult{}, fmt.Errorf("no image supplied: %w", domain.ErrMissingInput)
	}

	req := openai.EmbeddingRequest{
		Input:          []string{embeddingInput(image)},
		Model:          openai.EmbeddingModel(e.cfg.Model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	start := time.Now()
	resp, err := e.getClient().CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.cfg.Provider, e.cfg.Model, "error").Inc()
		return domain.EmbeddingResult{}, parseAPIError("embedding", err)
	}
	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.cfg.Provider, e.cfg.Model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrUpstreamUnavailable)
	}

	vec := resp.Data[0].Embedding
	if e.cfg.Dimensions > 0 && len(vec) != e.cfg.Dimensions {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.cfg.Provider, e.cfg.Model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf(
			"got %d dimensions, want %d: %w", len(vec), e.cfg.Dimensions, domain.ErrVectorDimMismatch,
		)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.cfg.Provider, e.cfg.Model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.cfg.Provider, e.cfg.Model).Observe(duration.Seconds())

	return domain.EmbeddingResult{
		Embedding:    domain.Normalize(vec),
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

func (e *Embedder) timeout() time.Duration {
	if e.cfg.Timeout > 0 {
		return e.cfg.Timeout
	}
	return defaultEmbedTimeout
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	if _, err := e.getClient().ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// embeddingInput renders the image the way the encoder accepts it.
func embeddingInput(image domain.ImageInput) string {
	if image.URL != "" {
		return image.URL
	}
	mime := image.MIME
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
}

// parseAPIError extracts a human-readable error from the API response.
// Timeouts map to ErrUpstreamTimeout, everything else to
// ErrUpstreamUnavailable for correct status mapping upstream.
func parseAPIError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s request timed out: %w", op, domain.ErrUpstreamTimeout)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("%s API error %d: %s: %w",
			op, reqErr.HTTPStatusCode, detail, domain.ErrUpstreamUnavailable)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w",
			op, apiErr.HTTPStatusCode, apiErr.Message, domain.ErrUpstreamUnavailable)
	}

	return fmt.Errorf("%s request failed: %w", op, domain.ErrUpstreamUnavailable)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
