package textcleaner

import (
	"context"
	"strings"
	"unicode"

	mw "clima/internal/middleware"
)

func init() {
	mw.Register(TextCleaner{})
}

// TextCleaner normalizes pasted or dictated text before slot extraction:
// invisible characters are dropped, typographic quotes and dashes become
// ASCII and runs of whitespace collapse to one space.
type TextCleaner struct{}

func (TextCleaner) ID() string    { return "text_cleaner" }
func (TextCleaner) Priority() int { return 115 }

// ShouldLoad limits the cleaner to questions; replies are left as written.
func (TextCleaner) ShouldLoad(_ context.Context, e *mw.Event) bool {
	return e != nil && e.Name == mw.EventBeforeTurn
}

func (TextCleaner) OnEvent(_ context.Context, e *mw.Event) (mw.Decision, error) {
	if e == nil || e.Name != mw.EventBeforeTurn {
		return mw.Decision{}, nil
	}
	out := Clean(e.UserText)
	if out == e.UserText || out == "" {
		return mw.Decision{}, nil
	}
	return mw.Decision{ReplaceText: &out, Reason: "text_cleaner: normalized"}, nil
}

var replacer = strings.NewReplacer(
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`,
	"\u2018", "'", "\u2019", "'",
	"\u2013", "-", "\u2014", "-",
	"\u00a0", " ",
)

// Clean returns s normalized.
func Clean(s string) string {
	s = replacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\u200b' || r == '\u200c' || r == '\u200d' || r == '\ufeff':
			return -1
		case unicode.IsControl(r) && !unicode.IsSpace(r):
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
