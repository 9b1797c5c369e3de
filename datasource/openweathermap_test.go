package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owmForecastBody = `{
  "city": {"name": "London", "country": "GB"},
  "list": [
    {"dt": 1792108800, "main": {"temp": 295.15}, "weather": [{"description": "clear sky"}]},
    {"dt": 1792119600, "main": {"temp": 290.4}, "weather": [{"description": "light rain"}, {"description": "mist"}]},
    {"dt": 1792130400, "main": {"temp": 288.0}, "weather": []}
  ]
}`

func TestOpenWeatherMapProvider_FetchByCity(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(owmForecastBody))
	}))
	defer server.Close()

	provider := NewOpenWeatherMapProvider("secret", server.URL)
	forecast, err := provider.FetchForecast(context.Background(), CityQuery("  London "))
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/forecast", got.URL.Path)
	assert.Equal(t, "London", got.URL.Query().Get("q"))
	assert.Equal(t, "secret", got.URL.Query().Get("appid"))
	assert.Empty(t, got.URL.Query().Get("units"), "temperatures must stay in Kelvin")

	assert.Equal(t, "OpenWeatherMap", forecast.Provider)
	assert.Equal(t, "London,GB", forecast.Location)
	require.Len(t, forecast.Samples, 3)
	assert.Equal(t, int64(1792108800), forecast.Samples[0].Timestamp)
	assert.InDelta(t, 295.15, forecast.Samples[0].TemperatureKelvin, 1e-9)
	assert.Equal(t, "clear sky", forecast.Samples[0].Description)
	assert.Equal(t, "light rain", forecast.Samples[1].Description)
	assert.Empty(t, forecast.Samples[2].Description)
}

func TestOpenWeatherMapProvider_FetchByCoordinates(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"city": {}, "list": []}`))
	}))
	defer server.Close()

	provider := NewOpenWeatherMapProvider("secret", server.URL)
	forecast, err := provider.FetchForecast(context.Background(), CoordinatesQuery(51.5072, -0.1276))
	require.NoError(t, err)

	assert.Equal(t, []string{"51.5072"}, query["lat"])
	assert.Equal(t, []string{"-0.1276"}, query["lon"])
	assert.NotContains(t, query, "q")
	assert.True(t, forecast.Empty())
	assert.Equal(t, "51.5072,-0.1276", forecast.Location)
}

func TestOpenWeatherMapProvider_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus bool
	}{
		{name: "unknown city", status: http.StatusNotFound, body: `{"cod":"404","message":"city not found"}`, wantStatus: true},
		{name: "bad key", status: http.StatusUnauthorized, body: `{"cod":401}`, wantStatus: true},
		{name: "malformed body", status: http.StatusOK, body: `{"list": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewOpenWeatherMapProvider("k", server.URL).FetchForecast(context.Background(), CityQuery("Nowhere"))
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, errors.Is(err, ErrStatus))
		})
	}
}

func TestWeatherAPIProvider_ThinsToThreeHourSamples(t *testing.T) {
	var q string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{
		  "location": {"name": "Paris", "country": "France"},
		  "forecast": {"forecastday": [{"hour": [
		    {"time_epoch": 0, "temp_c": 22, "condition": {"text": "Sunny"}},
		    {"time_epoch": 3600, "temp_c": 21, "condition": {"text": "Sunny"}},
		    {"time_epoch": 7200, "temp_c": 20, "condition": {"text": "Sunny"}},
		    {"time_epoch": 10800, "temp_c": 19, "condition": {"text": "Cloudy"}}
		  ]}]}
		}`))
	}))
	defer server.Close()

	forecast, err := NewWeatherAPIProvider("k", server.URL).FetchForecast(context.Background(), CoordinatesQuery(48.85, 2.35))
	require.NoError(t, err)

	assert.Equal(t, "48.8500,2.3500", q)
	assert.Equal(t, "Paris,France", forecast.Location)
	require.Len(t, forecast.Samples, 2)
	assert.InDelta(t, 295.15, forecast.Samples[0].TemperatureKelvin, 1e-9)
	assert.Equal(t, int64(10800), forecast.Samples[1].Timestamp)
	assert.Equal(t, "Cloudy", forecast.Samples[1].Description)
}

func TestQueryKey(t *testing.T) {
	assert.Equal(t, "city:london", CityQuery(" London ").Key())
	assert.Equal(t, CityQuery("LONDON").Key(), CityQuery("london").Key())
	assert.Equal(t, "coord:51.5072,-0.1276", CoordinatesQuery(51.50721, -0.12759).Key())
	assert.NotEqual(t, CityQuery("1,2").Key(), CoordinatesQuery(1, 2).Key())
}

func TestCoordinatesValid(t *testing.T) {
	assert.True(t, Coordinates{Latitude: 90, Longitude: -180}.Valid())
	assert.False(t, Coordinates{Latitude: 90.1, Longitude: 0}.Valid())
	assert.False(t, Coordinates{Latitude: 0, Longitude: 181}.Valid())
}
