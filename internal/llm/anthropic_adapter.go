package llm

import (
	"context"
	"os"

	"clima/internal/chat"

	"github.com/tmc/langchaingo/llms/anthropic"
)

type AnthropicAdapter struct {
	client *anthropic.LLM
	model  string
}

func NewAnthropicAdapter(model, apiKey string) (chat.Adapter, error) {
	var opts []anthropic.Option
	if model != "" {
		opts = append(opts, anthropic.WithModel(model))
	}
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey != "" {
		opts = append(opts, anthropic.WithToken(apiKey))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, err
	}
	return &AnthropicAdapter{client: client, model: model}, nil
}

func (a *AnthropicAdapter) Reply(ctx context.Context, history []chat.Message) (string, error) {
	return generate(ctx, a.client, a.model, history)
}
