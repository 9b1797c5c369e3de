// Package session drives one forecast viewing session: it fetches a
// forecast for a searched city, a picked map point or the current
// location, hands it to a forecastview.View and forwards day navigation.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"forecast-viewer/datasource"
	"forecast-viewer/forecastview"
	"forecast-viewer/metrics"
)

var (
	// ErrEmptyQuery is returned when a city search has no text
	ErrEmptyQuery = errors.New("empty city name")

	// ErrInvalidCoordinates is returned for points outside lat/lon bounds
	ErrInvalidCoordinates = errors.New("coordinates out of range")

	// ErrLocationDenied is returned by a LocationProvider when access is refused
	ErrLocationDenied = errors.New("permission to access location was denied")

	// ErrSuperseded is returned by a load that finished after a newer one started
	ErrSuperseded = errors.New("forecast superseded by a newer request")
)

// LocationProvider reports the device position
type LocationProvider interface {
	CurrentLocation(ctx context.Context) (datasource.Coordinates, error)
}

// StaticLocation is a LocationProvider with a fixed position. Nil
// Coordinates behave as if permission was denied.
type StaticLocation struct {
	Coordinates *datasource.Coordinates
}

// CurrentLocation implements LocationProvider
func (s StaticLocation) CurrentLocation(ctx context.Context) (datasource.Coordinates, error) {
	if s.Coordinates == nil {
		return datasource.Coordinates{}, ErrLocationDenied
	}
	return *s.Coordinates, nil
}

// Session owns one view and the location it was loaded for.
// It is safe for concurrent use.
type Session struct {
	source   datasource.ForecastSource
	location LocationProvider
	logger   *slog.Logger

	mu         sync.Mutex
	view       *forecastview.View
	query      *datasource.Query
	resolved   string
	generation uint64
}

// New creates a session without any forecast loaded
func New(source datasource.ForecastSource, location LocationProvider, format forecastview.Formatter, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if location == nil {
		location = StaticLocation{}
	}
	return &Session{
		source:   source,
		location: location,
		logger:   logger,
		view:     forecastview.New(format),
	}
}

// Formatter returns the formatter used for grouping and labels
func (s *Session) Formatter() forecastview.Formatter {
	return s.view.Formatter()
}

// SearchCity loads the forecast for a city name. Blank input leaves the
// session unchanged and returns ErrEmptyQuery.
func (s *Session) SearchCity(ctx context.Context, city string) (forecastview.ViewState, error) {
	q := datasource.CityQuery(city)
	if q.City == "" {
		return s.State(), ErrEmptyQuery
	}
	return s.load(ctx, q)
}

// SelectCoordinates loads the forecast for a map point
func (s *Session) SelectCoordinates(ctx context.Context, lat, lon float64) (forecastview.ViewState, error) {
	q := datasource.CoordinatesQuery(lat, lon)
	if !q.Coordinates.Valid() {
		return s.State(), fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinates, lat, lon)
	}
	return s.load(ctx, q)
}

// UseCurrentLocation loads the forecast for the device position
func (s *Session) UseCurrentLocation(ctx context.Context) (forecastview.ViewState, error) {
	coords, err := s.location.CurrentLocation(ctx)
	if err != nil {
		s.logger.Warn("current location unavailable", "error", err)
		return s.State(), err
	}
	return s.SelectCoordinates(ctx, coords.Latitude, coords.Longitude)
}

// load fetches q and installs the result. On failure the previously
// loaded forecast stays in place. Only the most recently started load
// may replace the view.
func (s *Session) load(ctx context.Context, q datasource.Query) (forecastview.ViewState, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	forecast, err := s.source.FetchForecast(ctx, q)
	if err != nil {
		s.logger.Error("error fetching weather data", "query", q.Key(), "source", s.source.Name(), "error", err)
		return s.State(), fmt.Errorf("fetch forecast for %s: %w", q, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("discarding stale forecast", "query", q.Key())
		return s.stateLocked(), fmt.Errorf("load %s: %w", q, ErrSuperseded)
	}

	s.view.Load(forecast.Samples)
	s.query = &q
	s.resolved = forecast.Location
	state := s.stateLocked()
	metrics.RecordLoad(state.DayCount)

	s.logger.Info("forecast loaded",
		"query", q.Key(),
		"location", forecast.Location,
		"provider", forecast.Provider,
		"samples", len(forecast.Samples),
		"days", state.DayCount,
	)
	return state, nil
}

// Next selects the following day
func (s *Session) Next() (forecastview.ViewState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := s.view.Next()
	metrics.RecordNavigation("next", moved)
	return s.stateLocked(), moved
}

// Previous selects the preceding day
func (s *Session) Previous() (forecastview.ViewState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := s.view.Previous()
	metrics.RecordNavigation("previous", moved)
	return s.stateLocked(), moved
}

// SelectDay jumps to a day index; out-of-range indexes are ignored
func (s *Session) SelectDay(index int) (forecastview.ViewState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := s.view.Select(index)
	return s.stateLocked(), moved
}

// State returns the view state for the selected day
func (s *Session) State() forecastview.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// stateLocked pairs the view state with the location it was loaded for.
// s.mu must be held.
func (s *Session) stateLocked() forecastview.ViewState {
	state := s.view.State()
	state.Location = s.resolved
	return state
}

// Location returns the resolved name of the loaded location, or "" when
// nothing has been loaded
func (s *Session) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// Query returns the query that produced the loaded forecast
func (s *Session) Query() (datasource.Query, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query == nil {
		return datasource.Query{}, false
	}
	return *s.query, true
}
