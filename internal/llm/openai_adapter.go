package llm

import (
	"context"
	"net/http"
	"os"

	"clima/internal/chat"

	"github.com/tmc/langchaingo/llms/openai"
)

type OpenAIAdapter struct {
	client *openai.LLM
	model  string
}

func NewOpenAIAdapter(model, baseURL, apiKey string) (chat.Adapter, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return newOpenAICompatible(model, baseURL, apiKey, nil)
}

// NewOpenRouterAdapter talks to OpenRouter through its OpenAI-compatible API.
func NewOpenRouterAdapter(model, baseURL, apiKey string) (chat.Adapter, error) {
	if model == "" {
		model = OpenRouterModel
	}
	if baseURL == "" {
		baseURL = OpenRouterURL
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
	}
	httpClient := &http.Client{Transport: headerTransport{
		base: http.DefaultTransport,
		headers: map[string]string{
			"HTTP-Referer": "https://clima.ai",
			"X-Title":      "Clima.AI",
		},
	}}
	return newOpenAICompatible(model, baseURL, apiKey, httpClient)
}

func newOpenAICompatible(model, baseURL, apiKey string, httpClient *http.Client) (chat.Adapter, error) {
	opts := []openai.Option{}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	if apiKey != "" {
		opts = append(opts, openai.WithToken(apiKey))
	}
	if httpClient != nil {
		opts = append(opts, openai.WithHTTPClient(httpClient))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return &OpenAIAdapter{client: client, model: model}, nil
}

func (a *OpenAIAdapter) Reply(ctx context.Context, history []chat.Message) (string, error) {
	return generate(ctx, a.client, a.model, history)
}
