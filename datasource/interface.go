package datasource

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"forecast-viewer/models"
)

// ErrStatus is wrapped by providers when the API answers with a non-200 status
var ErrStatus = errors.New("unexpected API status")

// Coordinates is a point picked on the map or reported by the device
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point lies within latitude/longitude bounds
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Query selects a forecast either by city name or by coordinates
type Query struct {
	City        string
	Coordinates *Coordinates
}

// CityQuery builds a query for a city name
func CityQuery(city string) Query {
	return Query{City: strings.TrimSpace(city)}
}

// CoordinatesQuery builds a query for a map point
func CoordinatesQuery(lat, lon float64) Query {
	return Query{Coordinates: &Coordinates{Latitude: lat, Longitude: lon}}
}

// Key returns a stable identifier used for caching and logging
func (q Query) Key() string {
	if q.Coordinates != nil {
		return "coord:" + formatCoordinate(q.Coordinates.Latitude) + "," + formatCoordinate(q.Coordinates.Longitude)
	}
	return "city:" + strings.ToLower(q.City)
}

// String implements fmt.Stringer
func (q Query) String() string {
	if q.Coordinates != nil {
		return fmt.Sprintf("%s,%s", formatCoordinate(q.Coordinates.Latitude), formatCoordinate(q.Coordinates.Longitude))
	}
	return q.City
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// ForecastSource is an interface for services that can fetch a 5-day forecast
type ForecastSource interface {
	// FetchForecast fetches the forecast samples for a query
	FetchForecast(ctx context.Context, q Query) (models.ForecastSet, error)

	// Name returns the source's name
	Name() string
}
