package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

// Model is the subset of langchaingo's llms.Model used for answer generation
type Model interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Client generates chat completions from a system and a user prompt
type Client struct {
	config *config.LLMConfig
	model  Model
	logger *zap.Logger
}

// NewClient creates an OpenAI chat client. It fails with ErrMissingCredential
// when no API key is configured.
func NewClient(cfg *config.LLMConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm client: %w", models.ErrMissingCredential)
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	return NewClientWithModel(cfg, model, logger), nil
}

// NewClientWithModel wraps an existing langchaingo model
func NewClientWithModel(cfg *config.LLMConfig, model Model, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{config: cfg, model: model, logger: logger}
}

// Generate sends the two-message conversation and returns the first choice
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	messages := []llms.MessageContent{
		{Role: schema.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextContent{Text: system}}},
		{Role: schema.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextContent{Text: user}}},
	}

	resp, err := c.model.GenerateContent(ctx, messages, llms.WithTemperature(c.config.Temperature))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", models.ErrGenerationFailed)
	}

	c.logger.Debug("generated answer", zap.String("model", c.config.Model), zap.Int("chars", len(resp.Choices[0].Content)))
	return resp.Choices[0].Content, nil
}
