package llm

import (
	"context"

	"clima/internal/chat"

	"github.com/tmc/langchaingo/llms/ollama"
)

type OllamaAdapter struct {
	client *ollama.LLM
	model  string
}

func NewOllamaAdapter(model, baseURL string) (chat.Adapter, error) {
	var opts []ollama.Option
	if model != "" {
		opts = append(opts, ollama.WithModel(model))
	}
	if baseURL != "" {
		opts = append(opts, ollama.WithServerURL(baseURL))
	}
	client, err := ollama.New(opts...)
	if err != nil {
		return nil, err
	}
	return &OllamaAdapter{client: client, model: model}, nil
}

func (a *OllamaAdapter) Reply(ctx context.Context, history []chat.Message) (string, error) {
	return generate(ctx, a.client, a.model, history)
}
