// Package dialogue drives one conversational turn from raw text to reply.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"

	"clima/internal/intent"
	"clima/internal/report"
	"clima/internal/slots"
	"clima/internal/stations"
	"clima/internal/weather"
)

// Directory returns the full station list. It is fetched on every turn that
// needs it.
type Directory interface {
	Stations(ctx context.Context) ([]weather.Station, error)
}

// WeatherData returns climate records for a station id.
type WeatherData interface {
	Daily(ctx context.Context, id int) ([]weather.Reading, error)
	Hourly(ctx context.Context, id int) ([]weather.Reading, error)
	Forecast(ctx context.Context, id int) ([]weather.ForecastRecord, error)
}

// Analyzer answers free-form questions, optionally about data.
type Analyzer interface {
	Analyze(ctx context.Context, question string, data any) (string, error)
}

type Outcome string

const (
	OutcomeListStations    Outcome = "list_stations"
	OutcomeNeedsInfo       Outcome = "needs_info"
	OutcomeAnswered        Outcome = "answered"
	OutcomeStationNotFound Outcome = "station_not_found"
	OutcomeDispatched      Outcome = "dispatched"
	OutcomeFailed          Outcome = "failed"
)

// Result is the outcome of one turn. Context is what the caller should pass
// as prev on the next turn; it is the incoming prev unless the turn
// dispatched (or carried partial slots, when enabled).
type Result struct {
	Reply   string
	Context *slots.TurnRequest
	Outcome Outcome
	Intent  intent.Category
	Request *slots.TurnRequest
}

const (
	msgStationNotFound = report.Failure + " Não consegui encontrar a estação especificada."
	analysisHeader     = "🤖 **Análise:**"
)

type Orchestrator struct {
	dir          Directory
	data         WeatherData
	classifier   intent.Classifier
	extractor    *slots.Extractor
	analyzer     Analyzer
	carryPartial bool
	log          *slog.Logger
}

type Option func(*Orchestrator)

func WithClassifier(c intent.Classifier) Option {
	return func(o *Orchestrator) { o.classifier = c }
}

func WithExtractor(x *slots.Extractor) Option {
	return func(o *Orchestrator) { o.extractor = x }
}

// WithAnalyzer enables LLM answers for general questions and analysis of
// fetched data on general_analysis turns.
func WithAnalyzer(a Analyzer) Option {
	return func(o *Orchestrator) { o.analyzer = a }
}

// WithCarryPartialContext seeds the context with the slots found on turns
// that end asking for more information.
func WithCarryPartialContext(on bool) Option {
	return func(o *Orchestrator) { o.carryPartial = on }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func New(dir Directory, data WeatherData, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		dir:        dir,
		data:       data,
		classifier: intent.NewKeywordClassifier(),
		extractor:  slots.NewExtractor(),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Process handles one turn. It never returns an error: every failure is a
// reply starting with report.Failure.
func (o *Orchestrator) Process(ctx context.Context, text string, prev *slots.TurnRequest) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("turn panicked", "panic", r)
			res = Result{
				Reply:   fmt.Sprintf("%s Erro no processamento: %v", report.Failure, r),
				Context: prev,
				Outcome: OutcomeFailed,
			}
		}
	}()

	res.Context = prev
	res.Intent = o.classifier.Classify(text)
	o.log.Debug("turn classified", "intent", res.Intent)

	if res.Intent == intent.ListStations {
		dir, err := o.dir.Stations(ctx)
		if err != nil {
			o.log.Warn("station directory failed", "err", err)
			res.Reply = fmt.Sprintf("%s Erro ao buscar estações: %v", report.Failure, err)
			res.Outcome = OutcomeFailed
			return res
		}
		res.Reply = report.StationList(dir)
		res.Outcome = OutcomeListStations
		return res
	}

	req := o.extractor.Extract(text, prev)
	slots.Assess(&req)
	res.Request = &req
	o.log.Debug("slots extracted",
		"station", req.Station.Display(),
		"primary", req.DataType.Primary,
		"defaulted", req.DataType.Defaulted,
		"needs_more_info", req.NeedsMoreInfo)

	if req.NeedsMoreInfo {
		if answer, ok := o.answerGeneral(ctx, text, res.Intent, &req); ok {
			res.Reply = answer
			res.Outcome = OutcomeAnswered
			return res
		}
		res.Reply = req.FriendlyMessage
		res.Outcome = OutcomeNeedsInfo
		if o.carryPartial && (req.Station.Found || !req.DataType.Defaulted) {
			res.Context = slots.Partial(&req)
		}
		return res
	}

	dir, err := o.dir.Stations(ctx)
	if err != nil {
		o.log.Warn("station directory failed", "err", err)
		res.Reply = fmt.Sprintf("%s Erro ao buscar estações: %v", report.Failure, err)
		res.Outcome = OutcomeFailed
		return res
	}
	station, ok := stations.Resolve(req.Station, dir)
	if !ok {
		o.log.Debug("station not resolved", "ref", req.Station.Display(), "directory", len(dir))
		res.Reply = msgStationNotFound
		res.Outcome = OutcomeStationNotFound
		return res
	}

	confirmation := report.StationConfirmation(station)
	kind := req.DataType.Primary
	body, data, err := o.dispatch(ctx, station, kind)
	if err != nil {
		o.log.Warn("climate fetch failed", "station", station.ID, "kind", kind, "err", err)
		res.Reply = confirmation + "\n\n" + report.FetchError(kind, err)
		res.Outcome = OutcomeFailed
		return res
	}

	if res.Intent == intent.GeneralAnalysis && o.analyzer != nil && data != nil {
		body += "\n\n" + o.analyze(ctx, text, station, kind, data)
	}

	res.Reply = confirmation + "\n\n" + body
	res.Outcome = OutcomeDispatched
	res.Context = req.Clone()
	return res
}

// answerGeneral sends a question with no station and no data kind to the
// analyzer, when one is configured.
func (o *Orchestrator) answerGeneral(ctx context.Context, text string, cat intent.Category, req *slots.TurnRequest) (string, bool) {
	if o.analyzer == nil || cat != intent.GeneralAnalysis || req.Station.Found || !req.DataType.Defaulted {
		return "", false
	}
	answer, err := o.analyzer.Analyze(ctx, text, nil)
	if err != nil {
		o.log.Warn("general answer failed", "err", err)
		return "", false
	}
	return answer, true
}

func (o *Orchestrator) analyze(ctx context.Context, question string, station weather.Station, kind slots.DataKind, data any) string {
	payload := map[string]any{
		"estacao": station,
		"tipo":    kind,
		"dados":   data,
	}
	analysis, err := o.analyzer.Analyze(ctx, question, payload)
	if err != nil {
		o.log.Warn("analysis failed", "err", err)
		return fmt.Sprintf("%s Erro na análise com LLM: %v", report.Failure, err)
	}
	return analysisHeader + "\n" + analysis
}
