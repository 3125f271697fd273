package weather

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Station is one entry of the iCrop station directory.
type Station struct {
	ID   int    `json:"id" validate:"required"`
	Name string `json:"nome" validate:"required"`
}

// Measure keeps a provider value as text. iCrop sends numbers, numeric
// strings or null depending on the endpoint and the sensor.
type Measure string

func (m *Measure) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = Measure(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*m = Measure(n.String())
	return nil
}

func (m Measure) MarshalJSON() ([]byte, error) {
	if m == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(m))
}

// String renders missing values as "-".
func (m Measure) String() string {
	if m == "" {
		return "-"
	}
	return string(m)
}

// Reading is a daily (Date set) or hourly (DateTime set) measurement.
// Both endpoints return readings newest first.
type Reading struct {
	Date      string  `json:"data,omitempty"`
	DateTime  string  `json:"datahora,omitempty"`
	TempMin   Measure `json:"temp_min"`
	TempMed   Measure `json:"temp_med"`
	TempMax   Measure `json:"temp_max"`
	Humidity  Measure `json:"umidade"`
	Rain      Measure `json:"chuva"`
	Wind      Measure `json:"vento"`
	Radiation Measure `json:"radiacao"`
}

// Stamp returns the hourly timestamp when present, else the date.
func (r Reading) Stamp() string {
	if r.DateTime != "" {
		return r.DateTime
	}
	return r.Date
}

// ForecastRecord is one day of the forecast horizon, oldest first.
type ForecastRecord struct {
	Date        string  `json:"data"`
	TempMin     Measure `json:"temp_min"`
	TempMax     Measure `json:"temp_max"`
	RainProb    Measure `json:"rain_prob"`
	RainTotal   Measure `json:"rain_total"`
	WindSpeed   Measure `json:"wind_spd"`
	Observation string  `json:"obs"`
}
