package middleware

import (
	"encoding/json"
	"time"
	"unicode/utf8"
)

// debugEntry is one JSONL line of the debug log. Text is never logged, only
// its length.
type debugEntry struct {
	Timestamp    string `json:"ts"`
	Event        string `json:"event"`
	Session      string `json:"session,omitempty"`
	MiddlewareID string `json:"middleware"`
	Priority     int    `json:"priority"`
	Skipped      bool   `json:"skipped,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Cancel       bool   `json:"cancel,omitempty"`
	Replaced     bool   `json:"replaced,omitempty"`
	ElapsedUS    int64  `json:"elapsed_us"`

	InputChars  int `json:"in_chars"`
	OutputChars int `json:"out_chars"`
}

type debugRecord struct {
	id       string
	priority int
	skipped  bool
	in, out  string
	elapsed  time.Duration
	dec      Decision
}

// eventText is the text a hook may rewrite: the question before the turn,
// the reply after it.
func eventText(e *Event) string {
	if e == nil {
		return ""
	}
	switch e.Name {
	case EventBeforeTurn:
		return e.UserText
	case EventAfterTurn:
		return e.ReplyText
	default:
		return ""
	}
}

func applyDecisionToEvent(e *Event, dec Decision) {
	if e == nil || dec.ReplaceText == nil {
		return
	}
	switch e.Name {
	case EventBeforeTurn:
		e.UserText = *dec.ReplaceText
	case EventAfterTurn:
		e.ReplyText = *dec.ReplaceText
	}
}

func (c *Chain) debugLog(e *Event, rec debugRecord) {
	c.debugMu.Lock()
	defer c.debugMu.Unlock()
	if c.debugW == nil || e == nil {
		return
	}

	session, _ := e.Context["session"].(string)
	b, err := json.Marshal(debugEntry{
		Timestamp:    c.now().UTC().Format(time.RFC3339Nano),
		Event:        string(e.Name),
		Session:      session,
		MiddlewareID: rec.id,
		Priority:     rec.priority,
		Skipped:      rec.skipped,
		Reason:       rec.dec.Reason,
		Cancel:       rec.dec.Cancel,
		Replaced:     rec.dec.ReplaceText != nil,
		ElapsedUS:    rec.elapsed.Microseconds(),
		InputChars:   utf8.RuneCountInString(rec.in),
		OutputChars:  utf8.RuneCountInString(rec.out),
	})
	if err != nil {
		return
	}
	_, _ = c.debugW.Write(append(b, '\n'))
}
