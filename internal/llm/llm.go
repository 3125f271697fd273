// Package llm adapts langchaingo chat models to chat.Adapter.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"clima/internal/chat"

	"github.com/tmc/langchaingo/llms"
)

type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderOllama     Provider = "ollama"
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderGemini     Provider = "gemini"
)

const (
	OpenRouterURL   = "https://openrouter.ai/api/v1"
	OpenRouterModel = "deepseek/deepseek-chat-v3.1:free"
)

var ErrEmptyResponse = errors.New("empty response from model")

// Settings selects and configures one provider. Empty fields fall back to
// the provider's own defaults and environment variables.
type Settings struct {
	Provider Provider
	Model    string
	BaseURL  string
	APIKey   string
}

func NewAdapter(s Settings) (chat.Adapter, error) {
	switch s.Provider {
	case ProviderOpenRouter, "":
		return NewOpenRouterAdapter(s.Model, s.BaseURL, s.APIKey)
	case ProviderOllama:
		return NewOllamaAdapter(s.Model, s.BaseURL)
	case ProviderOpenAI:
		return NewOpenAIAdapter(s.Model, s.BaseURL, s.APIKey)
	case ProviderAnthropic:
		return NewAnthropicAdapter(s.Model, s.APIKey)
	case ProviderGemini:
		return NewGeminiAdapter(s.Model, s.BaseURL, s.APIKey)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", s.Provider)
	}
}

// generate runs one completion over history and returns the first choice.
func generate(ctx context.Context, model llms.Model, name string, history []chat.Message) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case chat.RoleSystem:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case chat.RoleUser:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case chat.RoleAssistant:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeAI, m.Content))
		}
	}

	var opts []llms.CallOption
	if name != "" {
		opts = append(opts, llms.WithModel(name))
	}
	resp, err := model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// headerTransport adds fixed headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
