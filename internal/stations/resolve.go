// Package stations matches what a user typed against the station directory.
package stations

import (
	"strings"

	"clima/internal/slots"
	"clima/internal/weather"
)

var stopWords = map[string]struct{}{
	"estação": {}, "estacao": {}, "da": {}, "de": {}, "em": {}, "na": {}, "no": {},
	"temperatura": {}, "clima": {}, "atual": {}, "hoje": {}, "agora": {},
	"quero": {}, "saber": {}, "qual": {}, "a": {}, "o": {}, "essa": {},
	"com": {}, "id": {}, "usina": {}, "reg": {},
}

// ByID returns the station with the given id.
func ByID(id int, dir []weather.Station) (weather.Station, bool) {
	for _, s := range dir {
		if s.ID == id {
			return s, true
		}
	}
	return weather.Station{}, false
}

// ByName runs the name cascade over text. Rules are tried in order and the
// first station satisfying a rule wins, so a loose early rule may shadow a
// closer later match:
//
//  1. a filtered word is inside the name, the name starts with it, or it
//     starts with the first three letters of the name
//  2. a window of 2 or 3 consecutive filtered words is inside the name
//  3. any word longer than two letters, stop words included, is inside the name
//
// Filtered words drop stop words and words of two letters or less.
func ByName(text string, dir []weather.Station) (weather.Station, bool) {
	words := strings.Fields(strings.ToLower(text))
	filtered := filterWords(words)

	for _, w := range filtered {
		for _, s := range dir {
			name := strings.ToLower(s.Name)
			if name == "" {
				continue
			}
			if strings.Contains(name, w) || strings.HasPrefix(name, w) || strings.HasPrefix(w, prefix(name, 3)) {
				return s, true
			}
		}
	}

	for size := 2; size <= 3; size++ {
		for i := 0; i+size <= len(filtered); i++ {
			window := strings.Join(filtered[i:i+size], " ")
			for _, s := range dir {
				if strings.Contains(strings.ToLower(s.Name), window) {
					return s, true
				}
			}
		}
	}

	for _, w := range words {
		if runeLen(w) <= 2 {
			continue
		}
		for _, s := range dir {
			if strings.Contains(strings.ToLower(s.Name), w) {
				return s, true
			}
		}
	}
	return weather.Station{}, false
}

// Resolve maps an extracted reference onto the directory: ids through ByID,
// names through Containing and then the ByName cascade.
func Resolve(ref slots.StationReference, dir []weather.Station) (weather.Station, bool) {
	switch {
	case ref.ID != nil:
		return ByID(*ref.ID, dir)
	case ref.Name != "":
		if s, ok := Containing(ref.Name, dir); ok {
			return s, true
		}
		return ByName(ref.Name, dir)
	}
	return weather.Station{}, false
}

// Containing returns the first station whose name contains the whole
// fragment, ignoring case.
func Containing(fragment string, dir []weather.Station) (weather.Station, bool) {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" {
		return weather.Station{}, false
	}
	for _, s := range dir {
		if strings.Contains(strings.ToLower(s.Name), fragment) {
			return s, true
		}
	}
	return weather.Station{}, false
}

func filterWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopWords[w]; stop || runeLen(w) <= 2 {
			continue
		}
		out = append(out, w)
	}
	return out
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func runeLen(s string) int {
	return len([]rune(s))
}
