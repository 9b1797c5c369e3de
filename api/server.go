package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"forecast-viewer/forecastview"
	"forecast-viewer/session"
)

// Server represents the API server
type Server struct {
	session *session.Session
	server  *http.Server
	logger  *slog.Logger
}

// viewResponse is the JSON shape of a view state
type viewResponse struct {
	HasData       bool                         `json:"hasData"`
	Location      string                       `json:"location,omitempty"`
	SelectedDate  *string                      `json:"selectedDate"`
	DayIndex      int                          `json:"dayIndex"`
	DayCount      int                          `json:"dayCount"`
	Samples       []forecastview.DisplaySample `json:"samples"`
	CanGoPrevious bool                         `json:"canGoPrevious"`
	CanGoNext     bool                         `json:"canGoNext"`
	Moved         *bool                        `json:"moved,omitempty"`
	Timestamp     time.Time                    `json:"timestamp"`
}

// NewServer creates a new API server for one viewing session
func NewServer(sess *session.Session, port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	server := &Server{
		session: sess,
		logger:  logger,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	// Loading a forecast
	mux.HandleFunc("/api/forecast/search", server.handleSearch)
	mux.HandleFunc("/api/forecast/coordinates", server.handleCoordinates)
	mux.HandleFunc("/api/forecast/current", server.handleCurrentLocation)

	// Viewing and navigating the loaded forecast
	mux.HandleFunc("/api/forecast/view", server.handleView)
	mux.HandleFunc("/api/forecast/next", server.handleNext)
	mux.HandleFunc("/api/forecast/previous", server.handlePrevious)

	// Health check and metrics
	mux.HandleFunc("/api/health", server.handleHealthCheck)
	mux.Handle("/metrics", promhttp.Handler())

	return server
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins the API server
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the API server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleSearch loads the forecast for ?city=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, err := s.session.SearchCity(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	s.writeView(w, http.StatusOK, state, nil)
}

// handleCoordinates loads the forecast for ?lat=&lon=
func (s *Server) handleCoordinates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "lat and lon must be numbers")
		return
	}

	state, err := s.session.SelectCoordinates(r.Context(), lat, lon)
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	s.writeView(w, http.StatusOK, state, nil)
}

// handleCurrentLocation loads the forecast for the device position
func (s *Server) handleCurrentLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, err := s.session.UseCurrentLocation(r.Context())
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	s.writeView(w, http.StatusOK, state, nil)
}

// handleView returns the selected day, optionally jumping to ?day=
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dayStr := r.URL.Query().Get("day")
	if dayStr == "" {
		s.writeView(w, http.StatusOK, s.session.State(), nil)
		return
	}

	day, err := strconv.Atoi(dayStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "day must be an integer")
		return
	}
	state, moved := s.session.SelectDay(day)
	s.writeView(w, http.StatusOK, state, &moved)
}

// handleNext moves to the following day
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	state, moved := s.session.Next()
	s.writeView(w, http.StatusOK, state, &moved)
}

// handlePrevious moves to the preceding day
func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	state, moved := s.session.Previous()
	s.writeView(w, http.StatusOK, state, &moved)
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeView(w http.ResponseWriter, status int, state forecastview.ViewState, moved *bool) {
	resp := viewResponse{
		HasData:       state.HasData,
		Location:      state.Location,
		DayIndex:      state.DayIndex,
		DayCount:      state.DayCount,
		Samples:       s.session.Formatter().Display(state.Samples),
		CanGoPrevious: state.CanGoPrevious,
		CanGoNext:     state.CanGoNext,
		Moved:         moved,
		Timestamp:     time.Now(),
	}
	if state.HasData {
		date := state.SelectedDate
		resp.SelectedDate = &date
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeLoadError maps session errors to HTTP statuses
func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrEmptyQuery), errors.Is(err, session.ErrInvalidCoordinates):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrLocationDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, session.ErrSuperseded):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadGateway, fmt.Sprintf("Failed to fetch forecast: %v", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}
