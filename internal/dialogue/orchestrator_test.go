package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clima/internal/intent"
	"clima/internal/slots"
	"clima/internal/weather"
)

type fakeProvider struct {
	stations    []weather.Station
	stationsErr error
	hourly      []weather.Reading
	hourlyErr   error
	daily       []weather.Reading
	dailyErr    error
	forecast    []weather.ForecastRecord

	calls []string
}

func (f *fakeProvider) Stations(context.Context) ([]weather.Station, error) {
	f.calls = append(f.calls, "stations")
	return f.stations, f.stationsErr
}

func (f *fakeProvider) Daily(context.Context, int) ([]weather.Reading, error) {
	f.calls = append(f.calls, "daily")
	return f.daily, f.dailyErr
}

func (f *fakeProvider) Hourly(context.Context, int) ([]weather.Reading, error) {
	f.calls = append(f.calls, "hourly")
	return f.hourly, f.hourlyErr
}

func (f *fakeProvider) Forecast(context.Context, int) ([]weather.ForecastRecord, error) {
	f.calls = append(f.calls, "forecast")
	return f.forecast, nil
}

type fakeAnalyzer struct {
	answer string
	err    error
	data   []any
}

func (a *fakeAnalyzer) Analyze(_ context.Context, _ string, data any) (string, error) {
	a.data = append(a.data, data)
	return a.answer, a.err
}

func newProvider() *fakeProvider {
	return &fakeProvider{
		stations: []weather.Station{
			{ID: 1, Name: "Fazenda Narandiba"},
			{ID: 7, Name: "Estrela"},
		},
		hourly: []weather.Reading{
			{DateTime: "2025-03-05 00:00:00", TempMin: "10", TempMed: "11", TempMax: "12"},
			{DateTime: "2025-03-04 15:00:00", TempMin: "20", TempMed: "24", TempMax: "29"},
		},
		daily: []weather.Reading{
			{Date: "2025-03-04", TempMin: "18", TempMed: "23", TempMax: "30", Humidity: "70"},
		},
		forecast: []weather.ForecastRecord{
			{Date: "2025-03-06", TempMin: "19", TempMax: "31", RainProb: "40", RainTotal: "2", WindSpeed: "9", Observation: "nublado"},
		},
	}
}

func TestListStationsBypassesContext(t *testing.T) {
	p := newProvider()
	o := New(p, p)
	prev := &slots.TurnRequest{OriginalInput: "x"}

	res := o.Process(context.Background(), "listar estações", prev)
	if res.Outcome != OutcomeListStations {
		t.Fatalf("expected list outcome, got %s", res.Outcome)
	}
	for _, want := range []string{"Encontrei 2 estações", "**Fazenda Narandiba** (ID: 1)", "**Estrela** (ID: 7)"} {
		if !strings.Contains(res.Reply, want) {
			t.Fatalf("reply %q missing %q", res.Reply, want)
		}
	}
	if res.Context != prev || res.Request != nil {
		t.Fatalf("list turn must not touch context or extract slots")
	}
}

func TestNeedsInfoLeavesContext(t *testing.T) {
	p := newProvider()
	o := New(p, p)

	for _, tt := range []struct{ input, want string }{
		{"temperatura", "temperature"},
		{"estrela", "estrela"},
	} {
		res := o.Process(context.Background(), tt.input, nil)
		if res.Outcome != OutcomeNeedsInfo || !strings.Contains(res.Reply, tt.want) {
			t.Fatalf("Process(%q) = %s %q", tt.input, res.Outcome, res.Reply)
		}
		if res.Context != nil {
			t.Fatalf("needs-info turn must not seed context")
		}
	}
	if len(p.calls) != 0 {
		t.Fatalf("needs-info turns must not call providers, got %v", p.calls)
	}
}

func TestCarryPartialContext(t *testing.T) {
	p := newProvider()
	o := New(p, p, WithCarryPartialContext(true))

	first := o.Process(context.Background(), "estrela", nil)
	if first.Context == nil || first.Context.Station.Name != "estrela" {
		t.Fatalf("expected partial context with the station, got %+v", first.Context)
	}
	second := o.Process(context.Background(), "temperatura", first.Context)
	if second.Outcome != OutcomeDispatched || !strings.Contains(second.Reply, "Temperatura atual em Estrela") {
		t.Fatalf("expected dispatch after completing the slots, got %s %q", second.Outcome, second.Reply)
	}
}

func TestFollowUpInheritsContext(t *testing.T) {
	p := newProvider()
	o := New(p, p)

	first := o.Process(context.Background(), "temperatura da estrela", nil)
	if first.Outcome != OutcomeDispatched {
		t.Fatalf("expected dispatch, got %s %q", first.Outcome, first.Reply)
	}
	if !strings.HasPrefix(first.Reply, "✅ Identifiquei a estação: **Estrela** (ID: 7)\n\n🌡️ **Temperatura atual em Estrela:**") {
		t.Fatalf("unexpected reply %q", first.Reply)
	}
	// midnight placeholder skipped
	if !strings.Contains(first.Reply, "2025-03-04 15:00:00") {
		t.Fatalf("expected the non-midnight reading, got %q", first.Reply)
	}
	if first.Context == nil || first.Context.DataType.Primary != slots.KindTemperature {
		t.Fatalf("expected stored context, got %+v", first.Context)
	}

	second := o.Process(context.Background(), "e agora?", first.Context)
	if second.Outcome != OutcomeDispatched {
		t.Fatalf("expected follow-up dispatch, got %s %q", second.Outcome, second.Reply)
	}
	if second.Request.Station.Name != "estrela" || second.Request.DataType.Primary != slots.KindTemperature {
		t.Fatalf("expected inherited slots, got %+v", second.Request)
	}
	if !strings.Contains(second.Reply, "Temperatura atual em Estrela") {
		t.Fatalf("unexpected follow-up reply %q", second.Reply)
	}
}

func TestMultiWordStationName(t *testing.T) {
	p := newProvider()
	p.stations = []weather.Station{{ID: 1, Name: "São Cipriano"}, {ID: 2, Name: "São Paulo"}}
	o := New(p, p)

	res := o.Process(context.Background(), "temperatura em são paulo", nil)
	if res.Outcome != OutcomeDispatched || !strings.HasPrefix(res.Reply, "✅ Identifiquei a estação: **São Paulo** (ID: 2)") {
		t.Fatalf("unexpected result %s %q", res.Outcome, res.Reply)
	}
}

func TestStationIDOverflowNotFound(t *testing.T) {
	p := newProvider()
	o := New(p, p)

	res := o.Process(context.Background(), "temperatura da estrela id 99999999999999999999", nil)
	if res.Outcome != OutcomeStationNotFound {
		t.Fatalf("expected station not found, got %s %q", res.Outcome, res.Reply)
	}
}

func TestStationNotFound(t *testing.T) {
	p := newProvider()
	o := New(p, p)
	prev := &slots.TurnRequest{OriginalInput: "antes"}

	res := o.Process(context.Background(), "chuva id 99", prev)
	if res.Outcome != OutcomeStationNotFound || res.Reply != "❌ Não consegui encontrar a estação especificada." {
		t.Fatalf("unexpected result %s %q", res.Outcome, res.Reply)
	}
	if res.Context != prev {
		t.Fatalf("context must be left unchanged")
	}
}

func TestHourlyFailureFallsBackToDailyOnce(t *testing.T) {
	p := newProvider()
	p.hourlyErr = errors.New("timeout")
	o := New(p, p)

	res := o.Process(context.Background(), "umidade id 7", nil)
	if res.Outcome != OutcomeDispatched {
		t.Fatalf("expected dispatch, got %s %q", res.Outcome, res.Reply)
	}
	if !strings.Contains(res.Reply, "📊 **Umidade:** 70 %") || !strings.Contains(res.Reply, "2025-03-04") {
		t.Fatalf("expected daily humidity, got %q", res.Reply)
	}
	want := "stations,hourly,daily"
	if got := strings.Join(p.calls, ","); got != want {
		t.Fatalf("calls = %s, want %s", got, want)
	}
}

func TestDailyFailureSurfaces(t *testing.T) {
	p := newProvider()
	p.hourlyErr = errors.New("timeout")
	p.dailyErr = errors.New("502")
	o := New(p, p)

	res := o.Process(context.Background(), "temperatura id 7", nil)
	if res.Outcome != OutcomeFailed || !strings.HasSuffix(res.Reply, "❌ Erro ao buscar temperatura: 502") {
		t.Fatalf("unexpected result %s %q", res.Outcome, res.Reply)
	}
	if res.Context != nil {
		t.Fatalf("failed fetch must not store context")
	}
}

func TestNoData(t *testing.T) {
	p := newProvider()
	p.forecast = nil
	o := New(p, p)

	res := o.Process(context.Background(), "previsão id 1", nil)
	if !strings.HasSuffix(res.Reply, "❌ Nenhuma previsão disponível para esta estação.") {
		t.Fatalf("unexpected reply %q", res.Reply)
	}
}

func TestDirectoryFailure(t *testing.T) {
	p := newProvider()
	p.stationsErr = errors.New("dial tcp: refused")
	o := New(p, p)

	res := o.Process(context.Background(), "temperatura id 7", nil)
	if res.Reply != "❌ Erro ao buscar estações: dial tcp: refused" {
		t.Fatalf("unexpected reply %q", res.Reply)
	}
}

func TestGeneralAnswerFromAnalyzer(t *testing.T) {
	p := newProvider()
	a := &fakeAnalyzer{answer: "Evapotranspiração é..."}
	o := New(p, p, WithAnalyzer(a))

	res := o.Process(context.Background(), "o que é evapotranspiração?", nil)
	if res.Outcome != OutcomeAnswered || res.Reply != a.answer {
		t.Fatalf("expected analyzer answer, got %s %q", res.Outcome, res.Reply)
	}
	if len(a.data) != 1 || a.data[0] != nil {
		t.Fatalf("general answers carry no data, got %v", a.data)
	}
}

func TestGeneralAnswerFailureFallsBackToPrompt(t *testing.T) {
	p := newProvider()
	o := New(p, p, WithAnalyzer(&fakeAnalyzer{err: errors.New("rate limited")}))

	res := o.Process(context.Background(), "o que é evapotranspiração?", nil)
	if res.Outcome != OutcomeNeedsInfo {
		t.Fatalf("expected needs-info prompt, got %s %q", res.Outcome, res.Reply)
	}
}

func TestAnalysisAppendedOnGeneralTurns(t *testing.T) {
	p := newProvider()
	a := &fakeAnalyzer{answer: "Tarde quente."}
	o := New(p, p, WithAnalyzer(a))

	// "dados" selects climate without any classifier keyword
	res := o.Process(context.Background(), "dados da estrela", nil)
	if res.Outcome != OutcomeDispatched {
		t.Fatalf("expected dispatch, got %s %q", res.Outcome, res.Reply)
	}
	if !strings.HasSuffix(res.Reply, "🤖 **Análise:**\nTarde quente.") {
		t.Fatalf("expected analysis suffix, got %q", res.Reply)
	}

	a.answer, a.err = "", errors.New("quota")
	res = o.Process(context.Background(), "dados da estrela", nil)
	if !strings.HasSuffix(res.Reply, "❌ Erro na análise com LLM: quota") || !strings.Contains(res.Reply, "Dados climáticos de Estrela") {
		t.Fatalf("expected data plus analysis error, got %q", res.Reply)
	}
}

type panicky struct{}

func (panicky) Classify(string) intent.Category { panic("boom") }

func TestPanicBecomesReply(t *testing.T) {
	p := newProvider()
	o := New(p, p, WithClassifier(panicky{}))
	prev := &slots.TurnRequest{OriginalInput: "x"}

	res := o.Process(context.Background(), "qualquer", prev)
	if res.Reply != "❌ Erro no processamento: boom" || res.Context != prev {
		t.Fatalf("unexpected result %+v", res)
	}
}
