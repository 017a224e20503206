package llmservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"document-indexer/internal/config"
)

type recordingModel struct {
	opts llms.CallOptions
}

func (m *recordingModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, o := range options {
		o(&m.opts)
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "ok"}}}, nil
}

func (m *recordingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestNew_Providers(t *testing.T) {
	llm, err := New(&config.LLMConfig{Provider: config.ProviderOpenAI, Key: "Bearer sk-test", Model: "m", BaseURL: "http://localhost:1/v1"})
	require.NoError(t, err)
	assert.NotNil(t, llm)

	llm, err = New(&config.LLMConfig{Provider: config.ProviderOllama, Model: "llama3", BaseURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.NotNil(t, llm)

	_, err = New(&config.LLMConfig{Provider: config.ProviderHash})
	assert.Error(t, err)
}

func TestGenerateContent_Tools(t *testing.T) {
	m := &recordingModel{}
	msgs := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "hi")}

	resp, err := GenerateContent(context.Background(), m, nil, msgs)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Choices[0].Content)
	assert.Empty(t, m.opts.Tools)

	tools := []llms.Tool{{Type: "function", Function: &llms.FunctionDefinition{Name: "lookup"}}}
	_, err = GenerateContent(context.Background(), m, tools, msgs)
	require.NoError(t, err)
	assert.Len(t, m.opts.Tools, 1)
}
