package middleware

import (
	"context"
)

type EventName string

const (
	// EventBeforeTurn runs before the pipeline sees the user text.
	EventBeforeTurn EventName = "before_turn"
	// EventAfterTurn runs on the reply before it is returned.
	EventAfterTurn EventName = "after_turn"
)

type Decision struct {
	Cancel      bool   // stop the pipeline for this event
	Reason      string // for logs
	ReplaceText *string
}

type Event struct {
	Name      EventName
	UserText  string         // for before_turn
	ReplyText string         // for after_turn
	Context   map[string]any // session id, whether a context slot is held, etc.
}

type Middleware interface {
	ID() string
	Priority() int
	OnEvent(ctx context.Context, e *Event) (Decision, error)
}

// ConditionalMiddleware is an optional extension that allows a middleware to be
// dynamically enabled/disabled per event.
//
// If a middleware implements this interface and returns false, it will be
// skipped during dispatch (but still recorded in results with a "skipped"
// reason).
type ConditionalMiddleware interface {
	ShouldLoad(ctx context.Context, e *Event) bool
}
