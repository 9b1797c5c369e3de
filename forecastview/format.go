package forecastview

import (
	"fmt"
	"math"
	"time"

	"forecast-viewer/models"
)

const (
	// dateKeyLayout matches the month/day/year shape of an en-US locale date.
	dateKeyLayout   = "1/2/2006"
	timeLabelLayout = "15:04"

	kelvinOffset = 273.15
)

// Formatter turns sample timestamps and temperatures into display strings
// for a fixed time zone.
type Formatter struct {
	loc *time.Location
}

// NewFormatter creates a formatter for the given zone. A nil zone means UTC.
func NewFormatter(loc *time.Location) Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return Formatter{loc: loc}
}

// Location returns the zone used for grouping and labels.
func (f Formatter) Location() *time.Location {
	if f.loc == nil {
		return time.UTC
	}
	return f.loc
}

// LocalDateKey returns the calendar date of ts in the formatter's zone.
// It is stable for every timestamp within the same local day and is only
// used for grouping and display, never for ordering.
func (f Formatter) LocalDateKey(ts int64) string {
	return time.Unix(ts, 0).In(f.Location()).Format(dateKeyLayout)
}

// LocalTimeLabel returns the two-digit hour and minute of ts.
func (f Formatter) LocalTimeLabel(ts int64) string {
	return time.Unix(ts, 0).In(f.Location()).Format(timeLabelLayout)
}

// Celsius converts kelvin to whole degrees Celsius. Halves round up, so
// 272.65 K is 0 and 270.65 K is -2.
func Celsius(kelvin float64) int {
	return int(math.Floor(kelvin - kelvinOffset + 0.5))
}

// TemperatureLabel renders kelvin as whole-degree Celsius, e.g. "22°C".
func TemperatureLabel(kelvin float64) string {
	return fmt.Sprintf("%d°C", Celsius(kelvin))
}

// DisplaySample is a sample with its labels resolved for rendering.
type DisplaySample struct {
	Timestamp         int64   `json:"timestamp"`
	Time              string  `json:"time"`
	Description       string  `json:"description"`
	TemperatureKelvin float64 `json:"temperatureKelvin"`
	Temperature       string  `json:"temperature"`
}

// Display resolves time and temperature labels for each sample, keeping order.
func (f Formatter) Display(samples []models.ForecastSample) []DisplaySample {
	out := make([]DisplaySample, 0, len(samples))
	for _, s := range samples {
		out = append(out, DisplaySample{
			Timestamp:         s.Timestamp,
			Time:              f.LocalTimeLabel(s.Timestamp),
			Description:       s.Description,
			TemperatureKelvin: s.TemperatureKelvin,
			Temperature:       TemperatureLabel(s.TemperatureKelvin),
		})
	}
	return out
}
