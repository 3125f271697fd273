package chat

import (
	"context"
	"fmt"
	"testing"

	"clima/internal/dialogue"
	"clima/internal/middleware"
	"clima/internal/slots"
)

type echoResponder struct {
	prevs []*slots.TurnRequest
}

func (r *echoResponder) Process(_ context.Context, text string, prev *slots.TurnRequest) dialogue.Result {
	r.prevs = append(r.prevs, prev)
	return dialogue.Result{
		Reply:   "eco: " + text,
		Context: &slots.TurnRequest{OriginalInput: text},
		Outcome: dialogue.OutcomeDispatched,
	}
}

type cannedMW struct {
	event  middleware.EventName
	reply  string
	cancel bool
}

func (m cannedMW) ID() string    { return "canned" }
func (m cannedMW) Priority() int { return 1 }
func (m cannedMW) OnEvent(_ context.Context, e *middleware.Event) (middleware.Decision, error) {
	if e.Name != m.event {
		return middleware.Decision{}, nil
	}
	r := m.reply
	return middleware.Decision{Cancel: m.cancel, ReplaceText: &r}, nil
}

func TestSendThreadsContext(t *testing.T) {
	r := &echoResponder{}
	s := NewService(r)

	if got := s.Send(context.Background(), "  primeira  "); got != "eco: primeira" {
		t.Fatalf("unexpected reply %q", got)
	}
	s.Send(context.Background(), "segunda")

	if r.prevs[0] != nil {
		t.Fatalf("first turn must start without context")
	}
	if r.prevs[1] == nil || r.prevs[1].OriginalInput != "primeira" {
		t.Fatalf("second turn must receive the first turn's context, got %+v", r.prevs[1])
	}
	if c := s.Context(); c == nil || c.OriginalInput != "segunda" {
		t.Fatalf("unexpected stored context %+v", c)
	}
}

func TestSendEmptyInput(t *testing.T) {
	r := &echoResponder{}
	s := NewService(r)
	if got := s.Send(context.Background(), "   "); got != Welcome {
		t.Fatalf("expected welcome, got %q", got)
	}
	if len(r.prevs) != 0 || len(s.History()) != 0 {
		t.Fatalf("empty input must not reach the pipeline or history")
	}
}

func TestClear(t *testing.T) {
	s := NewService(&echoResponder{})
	s.Send(context.Background(), "oi")
	s.Clear()
	if s.Context() != nil || len(s.History()) != 0 {
		t.Fatalf("expected cleared session")
	}
}

func TestHistoryLimit(t *testing.T) {
	s := NewService(&echoResponder{}, WithHistoryLimit(4))
	for i := 0; i < 5; i++ {
		s.Send(context.Background(), fmt.Sprintf("m%d", i))
	}
	h := s.History()
	if len(h) != 4 || h[0].Content != "m3" || h[3].Content != "eco: m4" {
		t.Fatalf("unexpected history %+v", h)
	}
}

func TestBeforeTurnCancelShortCircuits(t *testing.T) {
	r := &echoResponder{}
	chain := middleware.NewChain(cannedMW{event: middleware.EventBeforeTurn, reply: "Olá!", cancel: true})
	s := NewService(r, WithMiddlewareChain(chain))

	if got := s.Send(context.Background(), "bom dia"); got != "Olá!" {
		t.Fatalf("expected middleware reply, got %q", got)
	}
	if len(r.prevs) != 0 || s.Context() != nil {
		t.Fatalf("canceled turn must not reach the pipeline")
	}
}

func TestAfterTurnRewritesReply(t *testing.T) {
	chain := middleware.NewChain(cannedMW{event: middleware.EventAfterTurn, reply: "reescrito"})
	s := NewService(&echoResponder{}, WithMiddlewareChain(chain))

	if got := s.Send(context.Background(), "clima"); got != "reescrito" {
		t.Fatalf("expected rewritten reply, got %q", got)
	}
}

type contextMW struct {
	seen *[]map[string]any
}

func (m contextMW) ID() string    { return "ctx" }
func (m contextMW) Priority() int { return 1 }
func (m contextMW) OnEvent(_ context.Context, e *middleware.Event) (middleware.Decision, error) {
	*m.seen = append(*m.seen, e.Context)
	return middleware.Decision{}, nil
}

func TestEventValuesReachMiddleware(t *testing.T) {
	var seen []map[string]any
	chain := middleware.NewChain(contextMW{seen: &seen})
	s := NewService(&echoResponder{},
		WithMiddlewareChain(chain),
		WithSessionID("web:1"),
		WithEventValues(map[string]any{"input_limit": 40, "session": "ignored"}),
	)

	s.Send(context.Background(), "clima")
	if len(seen) != 2 {
		t.Fatalf("expected before and after turn events, got %d", len(seen))
	}
	for _, ctx := range seen {
		if ctx["input_limit"] != 40 || ctx["session"] != "web:1" {
			t.Fatalf("unexpected event context %v", ctx)
		}
	}
}
