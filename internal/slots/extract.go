package slots

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reStationID = regexp.MustCompile(`id\s*(\d+)`)

	// DD/MM/YYYY, YYYY-MM-DD, DD-MM-YYYY, first match wins
	reDates = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`),
		regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`),
		regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(\d{4})`),
	}
	// HH:MM, HHh
	reTimes = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2}):(\d{2})`),
		regexp.MustCompile(`(\d{1,2})h`),
	}
)

// DefaultGazetteer lists the known station-name fragments, tested in order.
var DefaultGazetteer = []string{
	"estrela", "narandiba", "bradesco", "são paulo", "sao paulo", "califórnia", "california",
	"porecatu", "são cipriano", "sao cipriano", "miquelina", "paraguaçu", "paraguacu",
	"nadir", "jubran", "mosquito", "mutum", "tapirus", "igrejinha", "primavera", "bartira",
	"retirinho", "formosa", "guarani", "itaverá", "itavera", "são geraldo", "sao geraldo",
	"lageado", "rui terra", "andreotti", "lucinha", "lagoa", "lineu", "edson borges",
}

type kindRule struct {
	kind     DataKind
	keywords []string
}

// dataRules is the fixed iteration order for primary/secondary detection.
var dataRules = []kindRule{
	{KindTemperature, []string{"temperatura", "temp", "quente", "frio", "calor"}},
	{KindClimate, []string{"clima", "dados", "condições", "condicoes"}},
	{KindForecast, []string{"previsão", "previsao", "previsões", "previsoes", "futuro", "amanhã", "amanha"}},
	{KindHourly, []string{"hora", "horário", "horario", "por hora"}},
	{KindHumidity, []string{"umidade", "úmido", "umido"}},
	{KindRain, []string{"chuva", "precipitação", "precipitacao"}},
	{KindWind, []string{"vento", "ventoso"}},
	{KindRadiation, []string{"radiação", "radiacao", "sol", "solar"}},
}

// specificRules are scanned independently of primary/secondary.
var specificRules = []kindRule{
	{KindTemperature, []string{"temperatura", "temp"}},
	{KindHumidity, []string{"umidade"}},
	{KindRain, []string{"chuva"}},
	{KindWind, []string{"vento"}},
	{KindRadiation, []string{"radiação", "radiacao"}},
}

var relativeDateWords = []string{"ontem", "hoje", "amanhã", "amanha", "semana", "mês", "mes"}

// Extractor turns raw text into a TurnRequest.
type Extractor struct {
	gazetteer []string
}

// NewExtractor returns an extractor over DefaultGazetteer followed by extra
// fragments. Extra fragments are lower-cased; empty ones are ignored.
func NewExtractor(extra ...string) *Extractor {
	g := make([]string, 0, len(DefaultGazetteer)+len(extra))
	g = append(g, DefaultGazetteer...)
	for _, e := range extra {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			g = append(g, e)
		}
	}
	return &Extractor{gazetteer: g}
}

// Extract builds the request for text, filling silent slots from prev.
// Completeness is not evaluated here; see Assess.
func (x *Extractor) Extract(text string, prev *TurnRequest) TurnRequest {
	lower := strings.ToLower(text)
	return TurnRequest{
		Station:       x.station(lower, prev),
		DataType:      dataTypes(lower, prev),
		DateTime:      dateTime(lower),
		OriginalInput: text,
	}
}

func (x *Extractor) station(lower string, prev *TurnRequest) StationReference {
	if m := reStationID.FindStringSubmatch(lower); m != nil {
		// Atoi saturates on overflow; such an id resolves to no station.
		id, _ := strconv.Atoi(m[1])
		return StationByID(id)
	}
	for _, frag := range x.gazetteer {
		if strings.Contains(lower, frag) {
			return StationByName(frag)
		}
	}
	if prev != nil && prev.Station.Found {
		return prev.Clone().Station
	}
	return StationReference{}
}

func dataTypes(lower string, prev *TurnRequest) DataTypeReference {
	var dt DataTypeReference
	for _, r := range dataRules {
		if !containsAny(lower, r.keywords) {
			continue
		}
		if dt.Primary == "" {
			dt.Primary = r.kind
		} else {
			dt.Secondary = append(dt.Secondary, r.kind)
		}
	}

	if dt.Primary == "" && prev != nil && prev.DataType.Primary != "" {
		dt.Primary = prev.DataType.Primary
		dt.Defaulted = prev.DataType.Defaulted
	}
	if dt.Primary == "" {
		dt.Primary = KindClimate
		dt.Defaulted = true
	}

	for _, r := range specificRules {
		if containsAny(lower, r.keywords) {
			dt.Specific = append(dt.Specific, r.kind)
		}
	}
	return dt
}

func dateTime(lower string) DateTimeReference {
	var dt DateTimeReference
	for _, re := range reDates {
		if m := re.FindString(lower); m != "" {
			dt.Date = m
			dt.IsSpecific = true
			break
		}
	}
	for _, re := range reTimes {
		if m := re.FindString(lower); m != "" {
			dt.Time = m
			dt.IsSpecific = true
			break
		}
	}
	if containsAny(lower, relativeDateWords) {
		dt.IsSpecific = true
	}
	dt.IsCurrent = !dt.IsSpecific
	return dt
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
