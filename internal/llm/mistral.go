package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

const mistralBaseURL = "https://api.mistral.ai/v1"

// MistralProvider implements Provider against the Mistral API, which is
// OpenAI-compatible for chat completions.
type MistralProvider struct {
	client *openai.Client
	model  string
}

// NewMistralProvider creates a new Mistral provider.
func NewMistralProvider(apiKey string, model string) *MistralProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = mistralBaseURL
	return &MistralProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *MistralProvider) Name() string {
	return "mistral"
}

func (p *MistralProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return completeChat(ctx, p.client, p.model, req)
}
