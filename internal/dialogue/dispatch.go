package dialogue

import (
	"context"

	"clima/internal/report"
	"clima/internal/slots"
	"clima/internal/weather"
)

// dispatch fetches and formats the records for kind. The returned data is
// nil when the station had no records.
func (o *Orchestrator) dispatch(ctx context.Context, st weather.Station, kind slots.DataKind) (string, any, error) {
	switch kind {
	case slots.KindForecast:
		records, err := o.data.Forecast(ctx, st.ID)
		if err != nil {
			return "", nil, err
		}
		if len(records) == 0 {
			return report.NoData(kind), nil, nil
		}
		return report.Forecast(st, records), records, nil

	case slots.KindHourly:
		readings, err := o.data.Hourly(ctx, st.ID)
		if err != nil {
			return "", nil, err
		}
		if len(readings) == 0 {
			return report.NoData(kind), nil, nil
		}
		return report.Hourly(st, readings), readings, nil
	}

	r, ok, err := o.latest(ctx, st.ID)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return report.NoData(kind), nil, nil
	}
	switch kind {
	case slots.KindTemperature:
		return report.Temperature(st, r), r, nil
	case slots.KindHumidity, slots.KindRain, slots.KindWind, slots.KindRadiation:
		return report.Specific(st, r, kind), r, nil
	}
	return report.Climate(st, r), r, nil
}

// latest returns the newest non-midnight hourly reading. A failed or empty
// hourly fetch falls back once to the newest daily reading.
func (o *Orchestrator) latest(ctx context.Context, id int) (weather.Reading, bool, error) {
	hourly, err := o.data.Hourly(ctx, id)
	if err != nil {
		o.log.Debug("hourly fetch failed, using daily", "station", id, "err", err)
	} else if r, ok := report.MostRecent(hourly); ok {
		return r, true, nil
	}

	daily, err := o.data.Daily(ctx, id)
	if err != nil {
		return weather.Reading{}, false, err
	}
	if len(daily) == 0 {
		return weather.Reading{}, false, nil
	}
	return daily[0], true, nil
}
