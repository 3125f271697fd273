package slots

import (
	"github.com/go-playground/validator/v10"
)

// DataKind is a kind of climate data a user can ask for.
type DataKind string

const (
	KindTemperature DataKind = "temperature"
	KindClimate     DataKind = "climate"
	KindForecast    DataKind = "forecast"
	KindHourly      DataKind = "hourly"
	KindHumidity    DataKind = "humidity"
	KindRain        DataKind = "rain"
	KindWind        DataKind = "wind"
	KindRadiation   DataKind = "radiation"
)

// StationReference is what the user said about the station. Name is the
// lower-cased fragment as typed.
type StationReference struct {
	Name  string `json:"name,omitempty"`
	ID    *int   `json:"id,omitempty"`
	Found bool   `json:"found"`
}

// StationByID and StationByName build found references.
func StationByID(id int) StationReference {
	return StationReference{ID: &id, Found: true}
}

func StationByName(name string) StationReference {
	return StationReference{Name: name, Found: true}
}

// DataTypeReference holds the requested kinds. Defaulted marks a Primary
// that was filled with KindClimate because nothing matched or was inherited.
type DataTypeReference struct {
	Primary   DataKind   `json:"primary" validate:"required,oneof=temperature climate forecast hourly humidity rain wind radiation"`
	Secondary []DataKind `json:"secondary" validate:"dive,oneof=temperature climate forecast hourly humidity rain wind radiation"`
	Specific  []DataKind `json:"specific" validate:"dive,oneof=temperature climate forecast hourly humidity rain wind radiation"`
	Defaulted bool       `json:"defaulted,omitempty"`
}

// DateTimeReference holds the raw matched date and time. IsCurrent is always
// the negation of IsSpecific.
type DateTimeReference struct {
	Date       string `json:"date,omitempty"`
	Time       string `json:"time,omitempty"`
	IsSpecific bool   `json:"is_specific"`
	IsCurrent  bool   `json:"is_current"`
}

// TurnRequest is the structured record of one user turn.
type TurnRequest struct {
	Station         StationReference  `json:"station"`
	DataType        DataTypeReference `json:"data_type"`
	DateTime        DateTimeReference `json:"datetime"`
	OriginalInput   string            `json:"original_input" validate:"required"`
	NeedsMoreInfo   bool              `json:"needs_more_info"`
	FriendlyMessage string            `json:"friendly_message,omitempty"`
}

// Clone returns a deep copy.
func (r *TurnRequest) Clone() *TurnRequest {
	if r == nil {
		return nil
	}
	out := *r
	if r.Station.ID != nil {
		id := *r.Station.ID
		out.Station.ID = &id
	}
	out.DataType.Secondary = append([]DataKind(nil), r.DataType.Secondary...)
	out.DataType.Specific = append([]DataKind(nil), r.DataType.Specific...)
	return &out
}

// Validate checks the field invariants of the record.
func (r *TurnRequest) Validate() error {
	return validate.Struct(r)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		ref := sl.Current().Interface().(StationReference)
		hasSlot := ref.Name != "" || ref.ID != nil
		if ref.Found && !hasSlot {
			sl.ReportError(ref.Found, "Found", "found", "station_slot", "")
		}
		if !ref.Found && hasSlot {
			sl.ReportError(ref.Found, "Found", "found", "station_found", "")
		}
	}, StationReference{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		dt := sl.Current().Interface().(DateTimeReference)
		if dt.IsCurrent == dt.IsSpecific {
			sl.ReportError(dt.IsCurrent, "IsCurrent", "is_current", "current_xor_specific", "")
		}
	}, DateTimeReference{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		r := sl.Current().Interface().(TurnRequest)
		if r.NeedsMoreInfo != (r.FriendlyMessage != "") {
			sl.ReportError(r.FriendlyMessage, "FriendlyMessage", "friendly_message", "needs_more_info", "")
		}
	}, TurnRequest{})
	return v
}
