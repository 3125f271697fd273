package inputlimit

import (
	"context"
	"fmt"
	"unicode/utf8"

	mw "clima/internal/middleware"
	"clima/internal/report"
)

func init() {
	mw.Register(InputLimit{})
}

// DefaultLimit is the longest question, in characters, that reaches the
// pipeline.
const DefaultLimit = 500

// InputLimit refuses overlong messages before they reach slot extraction or
// the LLM. Event.Context["input_limit"] (int), set from the input_limit
// config key, overrides DefaultLimit.
type InputLimit struct{}

func (InputLimit) ID() string    { return "input_limit" }
func (InputLimit) Priority() int { return 120 }

func (InputLimit) OnEvent(_ context.Context, e *mw.Event) (mw.Decision, error) {
	if e == nil || e.Name != mw.EventBeforeTurn {
		return mw.Decision{}, nil
	}
	limit := DefaultLimit
	if v, ok := e.Context["input_limit"].(int); ok && v > 0 {
		limit = v
	}

	n := utf8.RuneCountInString(e.UserText)
	if n <= limit {
		return mw.Decision{}, nil
	}
	reply := fmt.Sprintf("%s Mensagem muito longa (%d caracteres, máximo %d). Faça uma pergunta mais curta.", report.Failure, n, limit)
	return mw.Decision{
		Cancel:      true,
		ReplaceText: &reply,
		Reason:      "input_limit: message too long",
	}, nil
}
