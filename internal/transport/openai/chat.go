package openai

import (
	"context"
	"fmt"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/trovato-shop/trovato/internal/domain"
	"github.com/trovato-shop/trovato/internal/metrics"
	"github.com/trovato-shop/trovato/internal/vision"
)

// Chat is a multimodal completion provider speaking the OpenAI-compatible
// chat API. It implements vision.Completer; the classifier owns the prompts.
type Chat struct {
	cfg    *ChatConfig
	logger *zap.Logger

	once   sync.Once
	client *openai.Client
}

// ChatConfig holds the multimodal model settings. A zero Timeout falls back
// to defaultChatTimeout; compare calls carry several images and need the
// larger budget.
type ChatConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	Timeout  time.Duration
}

const defaultChatTimeout = 60 * time.Second

// NewChat creates a lazily initialized chat provider.
func NewChat(cfg *ChatConfig, logger *zap.Logger) *Chat {
	return &Chat{cfg: cfg, logger: logger}
}

func (c *Chat) getClient() *openai.Client {
	c.once.Do(func() {
		clientCfg := openai.DefaultConfig(c.cfg.APIKey)
		if c.cfg.BaseURL != "" {
			clientCfg.BaseURL = c.cfg.BaseURL
		}
		c.client = openai.NewClientWithConfig(clientCfg)
		c.logger.Info("vision client initialized",
			zap.String("provider", c.cfg.Provider),
			zap.String("model", c.cfg.Model),
		)
	})
	return c.client
}

// Complete implements vision.Completer.
func (c *Chat) Complete(ctx context.Context, req vision.CompletionRequest) (string, error) {
	parts := make([]openai.ChatMessagePart, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.Text != "" {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
			continue
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    embeddingInput(p.Image),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	start := time.Now()
	resp, err := c.getClient().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	duration := time.Since(start)

	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues(req.Op, "error").Inc()
		return "", parseAPIError(req.Op, err)
	}
	if len(resp.Choices) == 0 {
		metrics.ModelRequestsTotal.WithLabelValues(req.Op, "error").Inc()
		return "", fmt.Errorf("%s: empty completion: %w", req.Op, domain.ErrModelResponse)
	}

	metrics.ModelRequestsTotal.WithLabelValues(req.Op, "success").Inc()
	metrics.ModelRequestDuration.WithLabelValues(req.Op).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// Model reports the configured model name for response metadata.
func (c *Chat) Model() string { return c.cfg.Model }

func (c *Chat) timeout() time.Duration {
	if c.cfg.Timeout > 0 {
		return c.cfg.Timeout
	}
	return defaultChatTimeout
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Chat) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	if _, err := c.getClient().ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
