package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecast-viewer/datasource"
)

func TestNew_FallsBackAcrossProviders(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"location": {"name": "Lima", "country": "Peru"},
			"forecast": {"forecastday": [{"hour": [{"time_epoch": 0, "temp_c": 18, "condition": {"text": "Overcast"}}]}]}}`))
	}))
	defer up.Close()

	config := datasource.DefaultConfig()
	config.Timezone = "UTC"
	config.RateLimit.Enabled = false
	config.OpenWeatherMap.APIKey = "k"
	config.OpenWeatherMap.BaseURL = down.URL
	config.WeatherAPI.Enabled = true
	config.WeatherAPI.APIKey = "w"
	config.WeatherAPI.BaseURL = up.URL

	var logs bytes.Buffer
	application, err := New(config, NewLogger(&logs, "text", "debug"))
	require.NoError(t, err)
	assert.Equal(t, "OpenWeatherMap | WeatherAPI [Cached]", application.Source.Name())

	state, err := application.Session.SearchCity(context.Background(), "Lima")
	require.NoError(t, err)
	assert.True(t, state.HasData)
	assert.Equal(t, "Lima,Peru", application.Session.Location())
	assert.Contains(t, logs.String(), "forecast loaded")
}

func TestNew_InvalidConfig(t *testing.T) {
	config := datasource.DefaultConfig()
	_, err := New(config, NewLogger(&bytes.Buffer{}, "text", "info"))
	assert.ErrorContains(t, err, "no API key")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "json", "warn")
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"key":"value"`)

	buf.Reset()
	NewLogger(&buf, "text", "nonsense").Debug("dropped")
	assert.Empty(t, buf.String())
}

func newServeTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	config := datasource.DefaultConfig()
	config.Timezone = "UTC"
	config.OpenWeatherMap.APIKey = "k"
	config.OpenWeatherMap.BaseURL = "http://127.0.0.1:0"

	var logs bytes.Buffer
	application, err := New(config, NewLogger(&logs, "json", "info"))
	require.NoError(t, err)
	return application, &logs
}

func TestServe_StopsWhenContextDone(t *testing.T) {
	application, logs := newServeTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, application.Serve(ctx, 0, NewLogger(logs, "json", "info")))
	assert.Contains(t, logs.String(), `"msg":"shutdown complete"`)
	assert.Contains(t, logs.String(), `"cache_hits":0`)
}

func TestServe_ListenError(t *testing.T) {
	application, logs := newServeTestApp(t)

	err := application.Serve(context.Background(), -1, NewLogger(logs, "json", "info"))
	assert.Error(t, err)
	assert.Contains(t, logs.String(), `"msg":"shutdown complete"`)
}

func TestServe_InvalidPrefetchInterval(t *testing.T) {
	application, logs := newServeTestApp(t)
	application.Config.PrefetchInterval = "soon"

	err := application.Serve(context.Background(), 0, NewLogger(logs, "json", "info"))
	assert.ErrorContains(t, err, "prefetch interval")
	assert.NotContains(t, logs.String(), "shutting down")
}
