package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"clima/internal/dialogue"
	"clima/internal/middleware"
	"clima/internal/report"
	"clima/internal/slots"
)

// Welcome is the reply to an empty message and to greetings.
const Welcome = "Olá! O que deseja saber sobre o clima?"

const defaultHistoryLimit = 100

// Responder runs the turn pipeline. *dialogue.Orchestrator implements it.
type Responder interface {
	Process(ctx context.Context, text string, prev *slots.TurnRequest) dialogue.Result
}

// Service is one conversation. It owns the previous-turn context slot, so
// each session needs its own Service. Send calls are serialized.
type Service struct {
	mu        sync.Mutex
	responder Responder
	mws       *middleware.Chain
	prev      *slots.TurnRequest
	history   []Message
	limit     int
	id        string
	values    map[string]any
	log       *slog.Logger
}

type ServiceOption func(*Service)

func WithMiddlewareChain(chain *middleware.Chain) ServiceOption {
	return func(s *Service) {
		s.mws = chain
	}
}

// WithHistoryLimit caps the kept messages; the oldest are dropped first.
func WithHistoryLimit(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithSessionID tags log lines and middleware events.
func WithSessionID(id string) ServiceOption {
	return func(s *Service) {
		s.id = id
	}
}

// WithEventValues adds values to the context of every middleware event.
// The session and has_context keys are always set by the service.
func WithEventValues(values map[string]any) ServiceOption {
	return func(s *Service) {
		s.values = values
	}
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

func NewService(responder Responder, opts ...ServiceOption) *Service {
	s := &Service{
		responder: responder,
		history:   make([]Message, 0, 16),
		limit:     defaultHistoryLimit,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send processes one user message and returns the reply. It never fails:
// problems come back as text starting with the failure marker.
func (s *Service) Send(ctx context.Context, input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return Welcome
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mws != nil {
		e := &middleware.Event{
			Name:     middleware.EventBeforeTurn,
			UserText: input,
			Context:  s.eventContext(),
		}
		results, err := s.mws.Dispatch(ctx, e)
		if err != nil {
			s.log.Warn("before_turn middleware failed", "session", s.id, "err", err)
			return s.record(input, fmt.Sprintf("%s Erro no processamento: %v", report.Failure, err))
		}
		updated, canceled := applyTextDecisions(input, results)
		if canceled != nil {
			if updated == "" || updated == input {
				updated = Welcome
			}
			return s.record(input, updated)
		}
		if updated != "" {
			input = updated
		}
	}

	res := s.responder.Process(ctx, input, s.prev)
	s.prev = res.Context
	reply := res.Reply
	s.log.Debug("turn done", "session", s.id, "intent", res.Intent, "outcome", res.Outcome)

	if s.mws != nil {
		e := &middleware.Event{
			Name:      middleware.EventAfterTurn,
			UserText:  input,
			ReplyText: reply,
			Context:   s.eventContext(),
		}
		results, err := s.mws.Dispatch(ctx, e)
		if err != nil {
			s.log.Warn("after_turn middleware failed", "session", s.id, "err", err)
		} else if updated, _ := applyTextDecisions(reply, results); updated != "" {
			reply = updated
		}
	}

	return s.record(input, reply)
}

// Clear drops the history and the context slot.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = s.history[:0]
	s.prev = nil
}

// Context returns a copy of the stored previous-turn request, or nil.
func (s *Service) Context() *slots.TurnRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prev.Clone()
}

func (s *Service) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Service) record(input, reply string) string {
	s.history = append(s.history,
		Message{Role: RoleUser, Content: input},
		Message{Role: RoleAssistant, Content: reply},
	)
	if over := len(s.history) - s.limit; over > 0 {
		s.history = append(s.history[:0], s.history[over:]...)
	}
	return reply
}

func (s *Service) eventContext() map[string]any {
	ctx := make(map[string]any, len(s.values)+2)
	for k, v := range s.values {
		ctx[k] = v
	}
	ctx["session"] = s.id
	ctx["has_context"] = s.prev != nil
	return ctx
}

func applyTextDecisions(initial string, results []middleware.DecisionResult) (string, *middleware.Decision) {
	cur := strings.TrimSpace(initial)
	for _, r := range results {
		dec := r.Decision
		if dec.ReplaceText != nil {
			cur = strings.TrimSpace(*dec.ReplaceText)
		}
		if dec.Cancel {
			return cur, &dec
		}
	}
	return cur, nil
}
