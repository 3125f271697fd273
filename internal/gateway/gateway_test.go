package gateway

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"clima/internal/config"
	"clima/internal/dialogue"
	"clima/internal/slots"
	"clima/internal/status"
	"clima/internal/weather"
)

type scriptedResponder struct{}

func (scriptedResponder) Process(_ context.Context, text string, prev *slots.TurnRequest) dialogue.Result {
	ref := slots.StationByName("estrela")
	return dialogue.Result{
		Reply: "resposta para " + text,
		Context: &slots.TurnRequest{
			Station:       ref,
			DataType:      slots.DataTypeReference{Primary: slots.KindTemperature},
			DateTime:      slots.DateTimeReference{IsCurrent: true},
			OriginalInput: text,
		},
	}
}

type stubDirectory struct{ err error }

func (d stubDirectory) Stations(context.Context) ([]weather.Station, error) {
	return []weather.Station{{ID: 1, Name: "Estrela"}}, d.err
}

func newTestGateway(dirErr error) *Gateway {
	return &Gateway{
		cfg:       config.Default(),
		log:       slog.Default(),
		responder: scriptedResponder{},
		prober:    status.NewProber(stubDirectory{err: dirErr}, false),
	}
}

func TestRunCommands(t *testing.T) {
	g := newTestGateway(nil)
	in := strings.NewReader("temperatura da estrela\n/contexto\n/limpar\n/contexto\n/status\n/sair\nnunca lido\n")
	var out bytes.Buffer

	if err := g.Run(context.Background(), in, &out); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Olá! O que deseja saber sobre o clima?",
		"resposta para temperatura da estrela",
		"📍 **Estação:** estrela",
		"conversa limpa",
		"Nenhum pedido anterior.",
		"✅ Sistema operacional (1 estações)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "nunca lido") {
		t.Fatalf("input after /sair must not be processed")
	}
}

func TestRunStopsAtEOF(t *testing.T) {
	g := newTestGateway(nil)
	var out bytes.Buffer
	if err := g.Run(context.Background(), strings.NewReader("oi"), &out); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out.String(), "resposta para oi") {
		t.Fatalf("expected last line to be processed, got %q", out.String())
	}
}

func TestExecute(t *testing.T) {
	g := newTestGateway(nil)
	var out bytes.Buffer
	if err := g.Execute(context.Background(), "previsão id 3", &out); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.String() != "resposta para previsão id 3\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestFormatStatusError(t *testing.T) {
	g := newTestGateway(errors.New("401 Unauthorized"))
	s := FormatStatus(g.prober.Check(context.Background()))
	if !strings.HasPrefix(s, "❌ Erro no sistema: 401 Unauthorized") || !strings.Contains(s, "station_directory: error") {
		t.Fatalf("unexpected status text %q", s)
	}
}
