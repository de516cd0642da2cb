package embeddings

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

// Client produces embedding vectors through an OpenAI-compatible endpoint
type Client struct {
	config   *config.EmbeddingsConfig
	embedder embeddings.Embedder
	logger   *zap.Logger
}

// NewClient creates an embeddings client. It fails with ErrMissingCredential
// when no API key is configured.
func NewClient(cfg *config.EmbeddingsConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embeddings client: %w", models.ErrMissingCredential)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	embedOpts := []embeddings.Option{}
	if cfg.BatchSize > 0 {
		embedOpts = append(embedOpts, embeddings.WithBatchSize(cfg.BatchSize))
	}

	embedder, err := embeddings.NewEmbedder(llm, embedOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return newClient(cfg, embedder, logger), nil
}

func newClient(cfg *config.EmbeddingsConfig, embedder embeddings.Embedder, logger *zap.Logger) *Client {
	return &Client{config: cfg, embedder: embedder, logger: logger}
}

// EmbedDocuments returns one vector per text, in input order
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors, err := c.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding documents: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding documents: got %d vectors for %d texts", len(vectors), len(texts))
	}

	c.logger.Debug("embedded documents", zap.Int("count", len(texts)), zap.String("model", c.config.Model))
	return vectors, nil
}

// EmbedQuery returns the vector for a single search query
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return vector, nil
}
