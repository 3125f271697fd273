package intent

import "strings"

// Category is the coarse intent of a question.
type Category string

const (
	ListStations    Category = "list_stations"
	TemperatureOnly Category = "temperature_only"
	CurrentClimate  Category = "current_climate"
	Forecast        Category = "forecast"
	HourlyData      Category = "hourly_data"
	GeneralAnalysis Category = "general_analysis"
)

// Classifier maps raw question text to a Category.
type Classifier interface {
	Classify(text string) Category
}

// rule tests one category's keyword set.
type rule struct {
	category Category
	keywords []string
}

// KeywordClassifier tests keyword sets in a fixed priority order and falls
// through to GeneralAnalysis. Matching is plain substring containment on the
// lower-cased text, so a keyword inside a longer word still matches.
type KeywordClassifier struct {
	rules []rule
}

// NewKeywordClassifier returns the classifier with the built-in Portuguese
// keyword sets. The list rule runs first and is the only list check in the
// pipeline.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		rules: []rule{
			{ListStations, []string{"listar", "todas", "quais são", "disponiveis", "disponíveis"}},
			{TemperatureOnly, []string{"temperatura", "temp", "quente", "frio", "calor"}},
			{CurrentClimate, []string{"clima", "umidade", "chuva", "vento", "radiação", "agora", "hoje", "atual"}},
			{Forecast, []string{"previsão", "previsao", "previsões", "previsoes", "futuro", "amanhã", "amanha", "proximos", "próximos"}},
			{HourlyData, []string{"hora", "horário", "horario", "por hora"}},
		},
	}
}

func (c *KeywordClassifier) Classify(text string) Category {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		if containsAny(lower, r.keywords) {
			return r.category
		}
	}
	return GeneralAnalysis
}

// RequiresStation reports whether answering the category needs a station.
func RequiresStation(c Category) bool {
	return c != ListStations && c != GeneralAnalysis
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
