// Package analysis asks the LLM to interpret climate questions and data.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"clima/internal/chat"
)

const basePrompt = `Você é um assistente especializado em análise climática.
Você tem acesso a dados meteorológicos da API iCrop e pode analisar informações sobre:
- Estações meteorológicas
- Dados climáticos por dia e hora
- Previsões do tempo

Sua função é:
1. Analisar os dados climáticos fornecidos
2. Interpretar tendências e padrões
3. Fornecer insights úteis
4. Responder de forma clara e informativa

Sempre seja preciso e use os dados disponíveis para fundamentar suas respostas.`

// Analyzer sends one system prompt plus the question to an adapter. Each
// call is independent of the chat history.
type Analyzer struct {
	adapter chat.Adapter
}

func New(adapter chat.Adapter) *Analyzer {
	return &Analyzer{adapter: adapter}
}

// SystemPrompt returns the base prompt, followed by data as indented JSON
// when data is not nil.
func SystemPrompt(data any) (string, error) {
	if data == nil {
		return basePrompt, nil
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode climate data: %w", err)
	}
	return basePrompt + "\n\nDados climáticos disponíveis: " + string(b), nil
}

func (a *Analyzer) Analyze(ctx context.Context, question string, data any) (string, error) {
	prompt, err := SystemPrompt(data)
	if err != nil {
		return "", err
	}
	reply, err := a.adapter.Reply(ctx, []chat.Message{
		{Role: chat.RoleSystem, Content: prompt},
		{Role: chat.RoleUser, Content: question},
	})
	if err != nil {
		return "", fmt.Errorf("llm reply: %w", err)
	}
	return reply, nil
}
