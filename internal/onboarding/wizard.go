// Package onboarding asks for the settings a first run needs and fills a
// config.Config with them.
package onboarding

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"clima/internal/config"
	"clima/internal/llm"
)

// Wizard guides the user through the initial configuration.
type Wizard struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewWizard(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// Run fills cfg interactively. Values already in cfg are offered as
// defaults.
func (w *Wizard) Run(cfg *config.Config) error {
	fmt.Fprintln(w.out, "\n🌦  Configuração do Clima")
	fmt.Fprintln(w.out, strings.Repeat("-", 40))

	fmt.Fprintln(w.out, "\n[1/3] API iCrop")
	cfg.ICropBaseURL = w.ask("URL base", cfg.ICropBaseURL)
	cfg.ICropAPIKey = w.ask("Chave da API", cfg.ICropAPIKey)

	fmt.Fprintln(w.out, "\n[2/3] Modelo de linguagem")
	fmt.Fprint(w.out, "Usar LLM para perguntas gerais e análises? (S/n): ")
	cfg.LLM.Enabled = w.confirm(cfg.LLM.Enabled)
	if cfg.LLM.Enabled {
		w.askProvider(cfg)
		cfg.LLM.Model = w.ask("Modelo", defaultModel(cfg.LLM))
		w.askBaseURL(cfg)
		if cfg.LLM.Provider != string(llm.ProviderOllama) {
			cfg.LLM.APIKey = w.ask("Chave da API do LLM", cfg.LLM.APIKey)
		}
	}

	fmt.Fprintln(w.out, "\n[3/3] Canais")
	cfg.TelegramToken = w.ask("Token do bot Telegram (opcional)", cfg.TelegramToken)
	cfg.WebAddr = w.ask("Endereço da API web", cfg.WebAddr)

	menu := NewMiddlewareMenu(w.scanner, w.out)
	cfg.DisabledMiddlewares = menu.Run(cfg.DisabledMiddlewares)

	w.summarize(cfg)
	return cfg.Validate()
}

var providers = []llm.Provider{
	llm.ProviderOpenRouter,
	llm.ProviderOpenAI,
	llm.ProviderOllama,
	llm.ProviderAnthropic,
	llm.ProviderGemini,
}

func (w *Wizard) askProvider(cfg *config.Config) {
	fmt.Fprintln(w.out, "Provedor:")
	def := 1
	for i, p := range providers {
		fmt.Fprintf(w.out, "%d) %s\n", i+1, p)
		if string(p) == cfg.LLM.Provider {
			def = i + 1
		}
	}

	for {
		input := w.ask("Escolha", fmt.Sprint(def))
		var n int
		if _, err := fmt.Sscan(input, &n); err == nil && n >= 1 && n <= len(providers) {
			if string(providers[n-1]) != cfg.LLM.Provider {
				// model and url of another provider make no sense
				cfg.LLM.Model = ""
				cfg.LLM.BaseURL = ""
			}
			cfg.LLM.Provider = string(providers[n-1])
			return
		}
		fmt.Fprintf(w.out, "❌ Opção inválida. Escolha de 1 a %d.\n", len(providers))
	}
}

func defaultModel(c config.LLMConfig) string {
	if c.Model != "" {
		return c.Model
	}
	switch llm.Provider(c.Provider) {
	case llm.ProviderOpenRouter:
		return llm.OpenRouterModel
	case llm.ProviderOpenAI:
		return "gpt-4o-mini"
	case llm.ProviderAnthropic:
		return "claude-3-5-sonnet-latest"
	case llm.ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "llama3.2"
	}
}

func (w *Wizard) askBaseURL(cfg *config.Config) {
	if cfg.LLM.Provider != string(llm.ProviderOllama) {
		return
	}
	def := cfg.LLM.BaseURL
	if def == "" {
		def = "http://localhost:11434"
	}
	cfg.LLM.BaseURL = w.ask("URL do Ollama", def)
}

// ask prints the prompt and returns the trimmed answer, or def when the
// answer is empty or input ended.
func (w *Wizard) ask(label, def string) string {
	if def != "" {
		fmt.Fprintf(w.out, "%s [%s]: ", label, mask(label, def))
	} else {
		fmt.Fprintf(w.out, "%s: ", label)
	}
	if !w.scanner.Scan() {
		return def
	}
	if input := strings.TrimSpace(w.scanner.Text()); input != "" {
		return input
	}
	return def
}

func (w *Wizard) confirm(def bool) bool {
	if !w.scanner.Scan() {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(w.scanner.Text())) {
	case "":
		return def
	case "s", "sim", "y", "yes":
		return true
	default:
		return false
	}
}

func (w *Wizard) summarize(cfg *config.Config) {
	fmt.Fprintln(w.out, "\n"+strings.Repeat("=", 40))
	fmt.Fprintf(w.out, "iCrop:    %s\n", cfg.ICropBaseURL)
	if cfg.LLM.Enabled {
		fmt.Fprintf(w.out, "LLM:      %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
	} else {
		fmt.Fprintln(w.out, "LLM:      desativado")
	}
	if len(cfg.DisabledMiddlewares) > 0 {
		fmt.Fprintf(w.out, "Desativados: %s\n", strings.Join(cfg.DisabledMiddlewares, ", "))
	}
	fmt.Fprintln(w.out, strings.Repeat("=", 40))
}

func mask(label, v string) string {
	l := strings.ToLower(label)
	if !strings.Contains(l, "chave") && !strings.Contains(l, "token") {
		return v
	}
	if len(v) <= 4 {
		return "***"
	}
	return "***" + v[len(v)-4:]
}
