// Package status reports whether the iCrop API is reachable.
package status

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"clima/internal/dialogue"

	"github.com/go-co-op/gocron"
)

const (
	StateOperational = "operational"
	StateError       = "error"

	ComponentActive = "active"
	ComponentError  = "error"
)

// Report is one probe result.
type Report struct {
	Status        string            `json:"status"`
	StationsCount int               `json:"stations_count,omitempty"`
	Error         string            `json:"error,omitempty"`
	Components    map[string]string `json:"components"`
	CheckedAt     time.Time         `json:"checked_at"`
}

// Prober checks the station directory. The pipeline components that do not
// do I/O are always reported active; the LLM is reported only when enabled.
type Prober struct {
	dir        dialogue.Directory
	llmEnabled bool
	now        func() time.Time

	mu   sync.RWMutex
	last *Report
}

func NewProber(dir dialogue.Directory, llmEnabled bool) *Prober {
	return &Prober{dir: dir, llmEnabled: llmEnabled, now: time.Now}
}

func (p *Prober) Check(ctx context.Context) Report {
	r := Report{
		Components: map[string]string{
			"intent_classifier": ComponentActive,
			"slot_extractor":    ComponentActive,
			"station_resolver":  ComponentActive,
			"station_directory": ComponentActive,
			"weather_data":      ComponentActive,
		},
		CheckedAt: p.now(),
	}
	if p.llmEnabled {
		r.Components["llm_analysis"] = ComponentActive
	}

	stations, err := p.dir.Stations(ctx)
	if err != nil {
		r.Status = StateError
		r.Error = err.Error()
		r.Components["station_directory"] = ComponentError
		r.Components["weather_data"] = ComponentError
	} else {
		r.Status = StateOperational
		r.StationsCount = len(stations)
	}

	p.mu.Lock()
	p.last = &r
	p.mu.Unlock()
	return r
}

// Last returns the latest report, if any probe has run.
func (p *Prober) Last() (Report, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return Report{}, false
	}
	return *p.last, true
}

// Scheduler runs Check periodically.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    *Prober
	interval  time.Duration
	log       *slog.Logger
}

func NewScheduler(prober *Prober, interval time.Duration, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		prober:    prober,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the probe, runs it once right away and starts the
// underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 5
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		r := s.prober.Check(ctx)
		if r.Status != StateOperational {
			s.log.Warn("status probe failed", "err", r.Error)
			return
		}
		s.log.Info("status probe", "status", r.Status, "stations", r.StationsCount)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
