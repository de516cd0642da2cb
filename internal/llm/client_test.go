package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

type fakeModel struct {
	messages []llms.MessageContent
	resp     *llms.ContentResponse
	err      error
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	return f.resp, f.err
}

func TestGenerate(t *testing.T) {
	model := &fakeModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "See agent/core/db.py."}}}}
	c := NewClientWithModel(&config.LLMConfig{Model: "gpt-4o-mini"}, model, nil)

	got, err := c.Generate(context.Background(), "system text", "user text")
	require.NoError(t, err)
	assert.Equal(t, "See agent/core/db.py.", got)

	require.Len(t, model.messages, 2)
	assert.Equal(t, schema.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.TextContent{Text: "system text"}, model.messages[0].Parts[0])
	assert.Equal(t, schema.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, llms.TextContent{Text: "user text"}, model.messages[1].Parts[0])
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{"provider failure", &fakeModel{err: errors.New("timeout")}},
		{"no choices", &fakeModel{resp: &llms.ContentResponse{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClientWithModel(&config.LLMConfig{}, tt.model, nil)
			_, err := c.Generate(context.Background(), "s", "u")
			assert.ErrorIs(t, err, models.ErrGenerationFailed)
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(&config.LLMConfig{Model: "gpt-4o-mini"}, nil)
	assert.ErrorIs(t, err, models.ErrMissingCredential)
}
