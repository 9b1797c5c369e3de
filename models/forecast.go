package models

import (
	"time"
)

// ForecastSample is one 3-hour forecast point as handed to the view layer.
// Callers must fill every field; the view does not repair partial samples.
type ForecastSample struct {
	Timestamp         int64   `json:"timestamp"`         // Unix seconds, UTC
	TemperatureKelvin float64 `json:"temperatureKelvin"` // absolute temperature
	Description       string  `json:"description"`       // short condition text
}

// Time returns the sample's validity time.
func (s ForecastSample) Time() time.Time {
	return time.Unix(s.Timestamp, 0).UTC()
}

// ForecastSet is the full response for one forecast query
type ForecastSet struct {
	Provider string           `json:"provider"` // weather data provider name
	Location string           `json:"location"` // resolved location name
	Samples  []ForecastSample `json:"samples"`  // ascending by Timestamp
	Updated  time.Time        `json:"updated"`  // when this forecast was fetched
}

// Empty reports whether the set carries no samples.
func (f ForecastSet) Empty() bool {
	return len(f.Samples) == 0
}
