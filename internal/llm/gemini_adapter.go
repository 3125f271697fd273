package llm

import (
	"context"
	"os"

	"clima/internal/chat"

	"github.com/tmc/langchaingo/llms/googleai"
)

type GeminiAdapter struct {
	client *googleai.GoogleAI
	model  string
}

func NewGeminiAdapter(model, baseURL, apiKey string) (chat.Adapter, error) {
	effectiveModel := model
	if effectiveModel == "" {
		effectiveModel = googleai.DefaultOptions().DefaultModel
	}

	opts := []googleai.Option{
		googleai.WithDefaultModel(effectiveModel),
	}
	if baseURL != "" {
		opts = append(opts, googleai.WithRest())
	}
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey != "" {
		opts = append(opts, googleai.WithAPIKey(apiKey))
	}

	client, err := googleai.New(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: client, model: effectiveModel}, nil
}

func (a *GeminiAdapter) Reply(ctx context.Context, history []chat.Message) (string, error) {
	return generate(ctx, a.client, a.model, history)
}
