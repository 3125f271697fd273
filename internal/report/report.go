// Package report renders provider records as chat text.
package report

import (
	"fmt"
	"strings"

	"clima/internal/slots"
	"clima/internal/weather"
)

// Failure marks every reply that reports a problem.
const Failure = "❌"

// HourlyLimit and ForecastLimit bound the rows shown by Hourly and Forecast.
const (
	HourlyLimit   = 5
	ForecastLimit = 5
)

type specificLabel struct {
	name string
	unit string
	pick func(weather.Reading) weather.Measure
}

var specificLabels = map[slots.DataKind]specificLabel{
	slots.KindHumidity:  {"Umidade", "%", func(r weather.Reading) weather.Measure { return r.Humidity }},
	slots.KindRain:      {"Chuva", "mm", func(r weather.Reading) weather.Measure { return r.Rain }},
	slots.KindWind:      {"Vento", "km/h", func(r weather.Reading) weather.Measure { return r.Wind }},
	slots.KindRadiation: {"Radiação", "W/m²", func(r weather.Reading) weather.Measure { return r.Radiation }},
}

var kindNames = map[slots.DataKind]string{
	slots.KindTemperature: "temperatura",
	slots.KindClimate:     "dados climáticos",
	slots.KindForecast:    "previsão",
	slots.KindHourly:      "dados por hora",
	slots.KindHumidity:    "umidade",
	slots.KindRain:        "chuva",
	slots.KindWind:        "vento",
	slots.KindRadiation:   "radiação",
}

// KindName is the Portuguese name of kind used in messages.
func KindName(kind slots.DataKind) string {
	if n, ok := kindNames[kind]; ok {
		return n
	}
	return string(kind)
}

func StationList(dir []weather.Station) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Encontrei %d estações meteorológicas:\n\n", len(dir))
	for i, s := range dir {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "• **%s** (ID: %d)", s.Name, s.ID)
	}
	return b.String()
}

func StationConfirmation(s weather.Station) string {
	return fmt.Sprintf("✅ Identifiquei a estação: **%s** (ID: %d)", s.Name, s.ID)
}

// MostRecent picks the newest hourly reading that is not a midnight
// placeholder. Readings are newest first. When every reading is at midnight
// (or carries no timestamp) the first one is returned.
func MostRecent(readings []weather.Reading) (weather.Reading, bool) {
	if len(readings) == 0 {
		return weather.Reading{}, false
	}
	for _, r := range readings {
		if r.DateTime == "" {
			continue
		}
		clock := r.DateTime
		if _, after, ok := strings.Cut(r.DateTime, " "); ok {
			clock = after
		}
		if clock != "00:00:00" {
			return r, true
		}
	}
	return readings[0], true
}

func Temperature(s weather.Station, r weather.Reading) string {
	return fmt.Sprintf("🌡️ **Temperatura atual em %s:**\n\n📅 **%s**\n🌡️ **%s°C - %s°C** (média: %s°C)",
		s.Name, r.Stamp(), r.TempMin, r.TempMax, r.TempMed)
}

func Climate(s weather.Station, r weather.Reading) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌤️ **Dados climáticos de %s:**\n\n", s.Name)
	fmt.Fprintf(&b, "📅 **%s**\n", r.Stamp())
	fmt.Fprintf(&b, "🌡️ **Temperatura:** %s°C - %s°C (média: %s°C)\n", r.TempMin, r.TempMax, r.TempMed)
	fmt.Fprintf(&b, "💧 **Umidade:** %s%%\n", r.Humidity)
	fmt.Fprintf(&b, "🌧️ **Chuva:** %smm\n", r.Rain)
	fmt.Fprintf(&b, "💨 **Vento:** %s km/h\n", r.Wind)
	fmt.Fprintf(&b, "☀️ **Radiação:** %s W/m²", r.Radiation)
	return b.String()
}

// Specific renders one of humidity, rain, wind or radiation. Other kinds
// fall back to Climate.
func Specific(s weather.Station, r weather.Reading, kind slots.DataKind) string {
	l, ok := specificLabels[kind]
	if !ok {
		return Climate(s, r)
	}
	return fmt.Sprintf("📊 **%s atual em %s:**\n\n📅 **%s**\n📊 **%s:** %s %s",
		l.name, s.Name, r.Stamp(), l.name, l.pick(r), l.unit)
}

// Hourly lists the newest HourlyLimit readings as given.
func Hourly(s weather.Station, readings []weather.Reading) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⏰ **Dados climáticos por hora de %s:**\n\n", s.Name)
	for i, r := range readings {
		if i == HourlyLimit {
			break
		}
		fmt.Fprintf(&b, "• **%s**: %s°C, %s%% umidade, %s km/h vento\n", r.Stamp(), r.TempMed, r.Humidity, r.Wind)
	}
	return b.String()
}

// Forecast lists the first ForecastLimit days of the horizon.
func Forecast(s weather.Station, records []weather.ForecastRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔮 **Previsão do tempo para %s:**\n\n", s.Name)
	for i, p := range records {
		if i == ForecastLimit {
			break
		}
		fmt.Fprintf(&b, "• **%s**: %s°C - %s°C\n", p.Date, p.TempMin, p.TempMax)
		fmt.Fprintf(&b, "  🌧️ Chuva: %s%% (%smm)\n", p.RainProb, p.RainTotal)
		fmt.Fprintf(&b, "  💨 Vento: %s km/h\n", p.WindSpeed)
		obs := p.Observation
		if obs == "" {
			obs = "-"
		}
		fmt.Fprintf(&b, "  ☁️ Observação: %s\n\n", obs)
	}
	return b.String()
}

// NoData is the reply when a resolved station has no records for kind.
func NoData(kind slots.DataKind) string {
	switch kind {
	case slots.KindForecast:
		return Failure + " Nenhuma previsão disponível para esta estação."
	case slots.KindClimate:
		return Failure + " Nenhum dado climático disponível para esta estação."
	}
	return fmt.Sprintf("%s Nenhum dado de %s disponível para esta estação.", Failure, KindName(kind))
}

// FetchError is the reply when the provider call for kind failed.
func FetchError(kind slots.DataKind, err error) string {
	return fmt.Sprintf("%s Erro ao buscar %s: %v", Failure, KindName(kind), err)
}
