package onboarding

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"clima/internal/config"
	_ "clima/middlewares/autoload"
)

func TestWizardOllama(t *testing.T) {
	in := strings.Join([]string{
		"",          // iCrop url: keep default
		"icrop-key", // iCrop key
		"s",         // use llm
		"9",         // invalid provider
		"3",         // ollama
		"",          // model: default
		"",          // ollama url: default
		"",          // telegram
		"",          // web addr
		"1",         // toggle greeting
		"0",
	}, "\n") + "\n"

	cfg := config.Default()
	var out bytes.Buffer
	if err := NewWizard(strings.NewReader(in), &out).Run(cfg); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if cfg.ICropAPIKey != "icrop-key" || cfg.ICropBaseURL != config.DefaultICropBaseURL {
		t.Fatalf("unexpected iCrop settings %+v", cfg)
	}
	want := config.LLMConfig{Enabled: true, Provider: "ollama", Model: "llama3.2", BaseURL: "http://localhost:11434"}
	if cfg.LLM != want {
		t.Fatalf("llm = %+v, want %+v", cfg.LLM, want)
	}
	if !reflect.DeepEqual(cfg.DisabledMiddlewares, []string{"greeting"}) {
		t.Fatalf("unexpected disabled middlewares %v", cfg.DisabledMiddlewares)
	}
	if !strings.Contains(out.String(), "Opção inválida") {
		t.Fatalf("invalid provider choice should be reported")
	}
}

func TestWizardWithoutLLM(t *testing.T) {
	in := "\nk\nn\n\n\n\n"

	cfg := config.Default()
	if err := NewWizard(strings.NewReader(in), &bytes.Buffer{}).Run(cfg); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.LLM.Enabled || cfg.ICropAPIKey != "k" || cfg.WebAddr != ":8080" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.DisabledMiddlewares) != 0 {
		t.Fatalf("nothing should be disabled, got %v", cfg.DisabledMiddlewares)
	}
}

func TestWizardRequiresAPIKey(t *testing.T) {
	cfg := config.Default()
	if err := NewWizard(strings.NewReader(""), &bytes.Buffer{}).Run(cfg); err == nil {
		t.Fatalf("expected validation error without an iCrop key")
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		label, value, want string
	}{
		{"Chave da API", "abcdef123456", "***3456"},
		{"Token do bot", "abc", "***"},
		{"Modelo", "llama3.2", "llama3.2"},
	}
	for _, tt := range tests {
		if got := mask(tt.label, tt.value); got != tt.want {
			t.Errorf("mask(%q, %q) = %q, want %q", tt.label, tt.value, got, tt.want)
		}
	}
}
