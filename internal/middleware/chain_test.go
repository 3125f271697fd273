package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type testMW struct {
	id       string
	priority int
	cancel   bool
	seen     *[]string
}

func (m testMW) ID() string    { return m.id }
func (m testMW) Priority() int { return m.priority }
func (m testMW) OnEvent(_ context.Context, _ *Event) (Decision, error) {
	*m.seen = append(*m.seen, m.id)
	return Decision{Cancel: m.cancel}, nil
}

type conditionalTestMW struct {
	testMW
	enabled bool
}

func (m conditionalTestMW) ShouldLoad(_ context.Context, _ *Event) bool { return m.enabled }

func TestChainPriorityAndCancel(t *testing.T) {
	seen := []string{}
	c := NewChain(
		testMW{id: "low", priority: 1, seen: &seen},
		testMW{id: "high", priority: 10, cancel: true, seen: &seen},
		testMW{id: "mid", priority: 5, seen: &seen},
	)

	_, err := c.Dispatch(context.Background(), &Event{Name: EventBeforeTurn})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 1 || seen[0] != "high" {
		t.Fatalf("expected only high to run (cancel), got %v", seen)
	}
}

func TestChainConditionalMiddlewareSkip(t *testing.T) {
	seen := []string{}
	c := NewChain(
		conditionalTestMW{testMW: testMW{id: "off", priority: 10, seen: &seen}, enabled: false},
		conditionalTestMW{testMW: testMW{id: "on", priority: 5, seen: &seen}, enabled: true},
	)

	results, err := c.Dispatch(context.Background(), &Event{Name: EventBeforeTurn})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := join(seen); got != "on" {
		t.Fatalf("expected only enabled middleware to run, got %s", got)
	}
	if len(results) != 2 {
		t.Fatalf("expected results for both middlewares, got %d", len(results))
	}
	if results[0].MiddlewareID != "off" || results[0].Decision.Reason == "" {
		t.Fatalf("expected first result to be skipped middleware with a reason, got %+v", results[0])
	}
}

func TestChainStableOrderOnEqualPriority(t *testing.T) {
	seen := []string{}
	c := NewChain(
		testMW{id: "a", priority: 5, seen: &seen},
		testMW{id: "b", priority: 5, seen: &seen},
		testMW{id: "c", priority: 5, seen: &seen},
	)

	_, err := c.Dispatch(context.Background(), &Event{Name: EventBeforeTurn})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := join(seen); got != "a,b,c" {
		t.Fatalf("expected stable registration order, got %s", got)
	}
}

func join(in []string) string {
	if len(in) == 0 {
		return ""
	}
	out := in[0]
	for i := 1; i < len(in); i++ {
		out += "," + in[i]
	}
	return out
}

type replaceMW struct {
	id   string
	text string
}

func (m replaceMW) ID() string    { return m.id }
func (m replaceMW) Priority() int { return 1 }
func (m replaceMW) OnEvent(_ context.Context, _ *Event) (Decision, error) {
	t := m.text
	return Decision{ReplaceText: &t, Reason: "rewrite"}, nil
}

func TestChainReplaceTextAndDebugLog(t *testing.T) {
	var buf bytes.Buffer
	c := NewChain(replaceMW{id: "rw", text: "olá mundo"})
	c.SetDebugWriter(&buf)

	e := &Event{Name: EventAfterTurn, ReplyText: "oi"}
	if _, err := c.Dispatch(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ReplyText != "olá mundo" {
		t.Fatalf("expected reply text to be replaced, got %q", e.ReplyText)
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("debug log is not one JSON line: %v (%q)", err, buf.String())
	}
	if entry["event"] != "after_turn" || entry["middleware"] != "rw" || entry["in_chars"] != float64(2) || entry["out_chars"] != float64(9) {
		t.Fatalf("unexpected debug entry %v", entry)
	}
}

func TestNewChainFromRegistryDisabled(t *testing.T) {
	saved := registry
	t.Cleanup(func() { registry = saved })
	registry = nil

	seen := []string{}
	Register(testMW{id: "greeting", priority: 10, seen: &seen})
	Register(testMW{id: "help", priority: 5, seen: &seen})

	c := NewChainFromRegistry(nil, []string{" greeting "})
	if got := join(c.IDs()); got != "help" {
		t.Fatalf("expected only help, got %s", got)
	}
	if NewChainFromRegistry(nil, []string{"greeting", "help"}) != nil {
		t.Fatalf("expected nil chain when everything is disabled")
	}
}

type failingMW struct {
	id    string
	err   error
	panic bool
}

func (m failingMW) ID() string    { return m.id }
func (m failingMW) Priority() int { return 50 }
func (m failingMW) OnEvent(_ context.Context, _ *Event) (Decision, error) {
	if m.panic {
		panic("kaboom")
	}
	return Decision{}, m.err
}

func TestChainHookFailureStopsDispatch(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		mw      failingMW
		wantErr string
	}{
		{"error", failingMW{id: "bad", err: boom}, "middleware bad: boom"},
		{"panic", failingMW{id: "crash", panic: true}, "middleware crash: panic: kaboom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := []string{}
			c := NewChain(tt.mw, testMW{id: "after", priority: 1, seen: &seen})

			_, err := c.Dispatch(context.Background(), &Event{Name: EventBeforeTurn, UserText: "oi"})
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
			if tt.mw.err != nil && !errors.Is(err, tt.mw.err) {
				t.Fatalf("expected wrapped error, got %v", err)
			}
			if len(seen) != 0 {
				t.Fatalf("later middleware should not run, got %v", seen)
			}
		})
	}
}

func TestChainDebugLogSession(t *testing.T) {
	var buf bytes.Buffer
	c := NewChain(replaceMW{id: "rw", text: "olá"})
	c.SetDebugWriter(&buf)

	e := &Event{Name: EventBeforeTurn, UserText: "oi", Context: map[string]any{"session": "tg:42"}}
	if _, err := c.Dispatch(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("debug log is not one JSON line: %v", err)
	}
	if entry["session"] != "tg:42" || entry["replaced"] != true {
		t.Fatalf("unexpected debug entry %v", entry)
	}
	if _, ok := entry["elapsed_us"]; !ok {
		t.Fatalf("debug entry without elapsed_us: %v", entry)
	}
	if _, ok := entry["text"]; ok {
		t.Fatalf("debug entry must not carry text: %v", entry)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	saved := registry
	t.Cleanup(func() { registry = saved })
	registry = nil

	Register(testMW{id: "help", priority: 5})
	if got := join(RegisteredIDs()); got != "help" {
		t.Fatalf("unexpected ids %s", got)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("duplicate Register should panic")
		}
	}()
	Register(testMW{id: "help", priority: 1})
}
