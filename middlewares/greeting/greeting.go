package greeting

import (
	"context"
	"strings"
	"unicode"

	"clima/internal/chat"
	mw "clima/internal/middleware"
)

func init() {
	mw.Register(Greeting{})
}

// Greeting answers a message made only of salutations with the welcome
// line. It runs before slot extraction, so the context slot is left alone.
type Greeting struct{}

func (Greeting) ID() string    { return "greeting" }
func (Greeting) Priority() int { return 110 }

func (Greeting) OnEvent(_ context.Context, e *mw.Event) (mw.Decision, error) {
	if e == nil || e.Name != mw.EventBeforeTurn || !IsGreeting(e.UserText) {
		return mw.Decision{}, nil
	}
	reply := chat.Welcome
	return mw.Decision{Cancel: true, ReplaceText: &reply, Reason: "greeting"}, nil
}

// Salutations, longest first so "bom dia" wins over a lone "bom".
var salutations = [][]string{
	{"tudo", "bem"}, {"bom", "dia"}, {"boa", "tarde"}, {"boa", "noite"}, {"e", "ai"},
	{"oi"}, {"ola"}, {"opa"}, {"eai"}, {"salve"}, {"hello"}, {"hi"}, {"hey"},
}

// Words allowed after a salutation: "olá pessoal", "oi bot".
var fillers = map[string]bool{"pessoal": true, "bot": true, "amigo": true, "gente": true}

// IsGreeting reports whether text holds nothing but salutations, ignoring
// case, accents and punctuation.
func IsGreeting(text string) bool {
	words := tokenize(text)
	if len(words) == 0 || len(words) > 6 {
		return false
	}

	matched := false
	for i := 0; i < len(words); {
		if n := matchSalutation(words[i:]); n > 0 {
			i += n
			matched = true
			continue
		}
		if matched && fillers[words[i]] {
			i++
			continue
		}
		return false
	}
	return matched
}

func matchSalutation(words []string) int {
next:
	for _, s := range salutations {
		if len(s) > len(words) {
			continue
		}
		for j, w := range s {
			if words[j] != w {
				continue next
			}
		}
		return len(s)
	}
	return 0
}

var folds = strings.NewReplacer("á", "a", "à", "a", "â", "a", "ã", "a", "é", "e", "ê", "e", "í", "i", "ó", "o", "ô", "o", "õ", "o", "ú", "u", "ç", "c")

// tokenize lowercases text, drops accents and splits on anything that is not
// a letter or digit.
func tokenize(text string) []string {
	text = folds.Replace(strings.ToLower(text))
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
