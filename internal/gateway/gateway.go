package gateway

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"clima/internal/analysis"
	"clima/internal/chat"
	"clima/internal/config"
	"clima/internal/dialogue"
	"clima/internal/llm"
	"clima/internal/logging"
	"clima/internal/middleware"
	"clima/internal/slots"
	"clima/internal/status"
	"clima/internal/weather"
	_ "clima/middlewares/autoload" // Auto-load all middlewares
)

const turnTimeout = 2 * time.Minute

// Gateway wires the iCrop client, the LLM and the turn pipeline, and hands
// out one chat.Service per conversation.
type Gateway struct {
	cfg       *config.Config
	log       *slog.Logger
	responder chat.Responder
	chain     *middleware.Chain
	prober    *status.Prober
	closers   []io.Closer
}

func New(cfg *config.Config, log *slog.Logger) (*Gateway, error) {
	if log == nil {
		log = slog.Default()
	}

	client := weather.NewClient(weather.ClientConfig{
		BaseURL:    cfg.ICropBaseURL,
		APIKey:     cfg.ICropAPIKey,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout.Std()},
		Logger:     log,
	})

	opts := []dialogue.Option{
		dialogue.WithExtractor(slots.NewExtractor(cfg.Stations...)),
		dialogue.WithCarryPartialContext(cfg.CarryPartialContext),
		dialogue.WithLogger(log),
	}

	llmOn := false
	if cfg.LLM.Enabled {
		adapter, err := llm.NewAdapter(llm.Settings{
			Provider: llm.Provider(cfg.LLM.Provider),
			Model:    cfg.LLM.Model,
			BaseURL:  cfg.LLM.BaseURL,
			APIKey:   cfg.LLM.APIKey,
		})
		if err != nil {
			log.Warn("llm disabled", "provider", cfg.LLM.Provider, "err", err)
		} else {
			opts = append(opts, dialogue.WithAnalyzer(analysis.New(adapter)))
			llmOn = true
		}
	}

	g := &Gateway{
		cfg:       cfg,
		log:       log,
		responder: dialogue.New(client, client, opts...),
		prober:    status.NewProber(client, llmOn),
	}

	var debugW io.Writer
	if cfg.Log.DebugFile != "" {
		path, err := config.ExpandPath(cfg.Log.DebugFile)
		if err != nil {
			return nil, fmt.Errorf("middleware debug log: %w", err)
		}
		f := logging.RotatingFile(path, 8)
		g.closers = append(g.closers, f)
		debugW = f
	}
	g.chain = middleware.NewChainFromRegistry(debugW, cfg.DisabledMiddlewares)
	return g, nil
}

// NewService returns a fresh conversation. id tags its log lines.
func (g *Gateway) NewService(id string) *chat.Service {
	opts := []chat.ServiceOption{
		chat.WithSessionID(id),
		chat.WithLogger(g.log),
	}
	if g.chain != nil {
		opts = append(opts, chat.WithMiddlewareChain(g.chain))
	}
	if g.cfg.InputLimit > 0 {
		opts = append(opts, chat.WithEventValues(map[string]any{"input_limit": g.cfg.InputLimit}))
	}
	return chat.NewService(g.responder, opts...)
}

func (g *Gateway) Prober() *status.Prober { return g.prober }

func (g *Gateway) Config() *config.Config { return g.cfg }

func (g *Gateway) Logger() *slog.Logger { return g.log }

func (g *Gateway) Close() error {
	var errs []error
	for _, c := range g.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Execute answers one question and prints the reply.
func (g *Gateway) Execute(ctx context.Context, input string, out io.Writer) error {
	turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()

	_, err := fmt.Fprintln(out, g.NewService("cli").Send(turnCtx, input))
	return err
}

// Run is the interactive loop over in/out.
func (g *Gateway) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	service := g.NewService("repl")

	fmt.Fprintln(out, "Clima chat")
	fmt.Fprintln(out, "Comandos: /sair, /limpar, /contexto, /status")
	fmt.Fprintln(out, chat.Welcome)

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, "> ")
		var input string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			input = strings.TrimSpace(line)
		}
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "/exit", "/sair", "exit", "sair", "quit":
			return nil
		case "/clear", "/limpar":
			service.Clear()
			fmt.Fprintln(out, "conversa limpa")
			continue
		case "/contexto":
			fmt.Fprintln(out, describeContext(service.Context()))
			continue
		case "/status":
			fmt.Fprintln(out, FormatStatus(g.prober.Check(ctx)))
			continue
		}

		turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
		reply := service.Send(turnCtx, input)
		cancel()
		fmt.Fprintln(out, reply)
	}
}

func describeContext(req *slots.TurnRequest) string {
	if req == nil {
		return "Nenhum pedido anterior."
	}
	return slots.Summary(req)
}

// FormatStatus renders a status report for terminals.
func FormatStatus(r status.Report) string {
	var b strings.Builder
	if r.Status == status.StateOperational {
		fmt.Fprintf(&b, "✅ Sistema operacional (%d estações)\n", r.StationsCount)
	} else {
		fmt.Fprintf(&b, "❌ Erro no sistema: %s\n", r.Error)
	}
	for _, name := range componentOrder {
		if state, ok := r.Components[name]; ok {
			fmt.Fprintf(&b, "  %s: %s\n", name, state)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

var componentOrder = []string{
	"intent_classifier", "slot_extractor", "station_resolver",
	"station_directory", "weather_data", "llm_analysis",
}
