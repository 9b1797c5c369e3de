package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"forecast-viewer/datasource"
	"forecast-viewer/models"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) FetchForecast(ctx context.Context, q datasource.Query) (models.ForecastSet, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(models.ForecastSet), args.Error(1)
}

func newTestCache(source datasource.ForecastSource, ttl time.Duration) (*CachedForecastSource, *time.Time) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	c := NewCachedForecastSource(source, ttl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCachedForecastSource_HitAndExpiry(t *testing.T) {
	source := new(mockSource)
	london := datasource.CityQuery("London")
	source.On("FetchForecast", mock.Anything, london).Return(models.ForecastSet{Location: "London,GB"}, nil)

	c, now := newTestCache(source, 10*time.Minute)
	assert.Equal(t, "mock [Cached]", c.Name())

	for i := 0; i < 3; i++ {
		forecast, err := c.FetchForecast(context.Background(), london)
		require.NoError(t, err)
		assert.Equal(t, "London,GB", forecast.Location)
	}
	source.AssertNumberOfCalls(t, "FetchForecast", 1)

	hits, misses := c.CacheStats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)

	*now = now.Add(11 * time.Minute)
	_, err := c.FetchForecast(context.Background(), london)
	require.NoError(t, err)
	source.AssertNumberOfCalls(t, "FetchForecast", 2)
}

func TestCachedForecastSource_KeysByQuery(t *testing.T) {
	source := new(mockSource)
	source.On("FetchForecast", mock.Anything, mock.Anything).Return(models.ForecastSet{}, nil)

	c, _ := newTestCache(source, time.Hour)
	ctx := context.Background()
	_, _ = c.FetchForecast(ctx, datasource.CityQuery("London"))
	_, _ = c.FetchForecast(ctx, datasource.CityQuery("london"))
	_, _ = c.FetchForecast(ctx, datasource.CoordinatesQuery(51.5, -0.12))

	source.AssertNumberOfCalls(t, "FetchForecast", 2)
	assert.Equal(t, 2, c.Len())
}

func TestCachedForecastSource_ErrorsAreNotCached(t *testing.T) {
	source := new(mockSource)
	q := datasource.CityQuery("Atlantis")
	source.On("FetchForecast", mock.Anything, q).Return(models.ForecastSet{}, errors.New("city not found"))

	c, _ := newTestCache(source, time.Hour)
	_, err := c.FetchForecast(context.Background(), q)
	require.Error(t, err)
	_, err = c.FetchForecast(context.Background(), q)
	require.Error(t, err)

	source.AssertNumberOfCalls(t, "FetchForecast", 2)
	assert.Zero(t, c.Len())
}

func TestCachedForecastSource_ZeroTTLPassesThrough(t *testing.T) {
	source := new(mockSource)
	source.On("FetchForecast", mock.Anything, mock.Anything).Return(models.ForecastSet{}, nil)

	c, _ := newTestCache(source, 0)
	_, _ = c.FetchForecast(context.Background(), datasource.CityQuery("Rome"))
	_, _ = c.FetchForecast(context.Background(), datasource.CityQuery("Rome"))

	source.AssertNumberOfCalls(t, "FetchForecast", 2)
	assert.Zero(t, c.Len())
}

func TestCachedForecastSource_Prune(t *testing.T) {
	source := new(mockSource)
	source.On("FetchForecast", mock.Anything, mock.Anything).Return(models.ForecastSet{}, nil)

	c, now := newTestCache(source, time.Hour)
	_, _ = c.FetchForecast(context.Background(), datasource.CityQuery("Old"))
	*now = now.Add(30 * time.Minute)
	_, _ = c.FetchForecast(context.Background(), datasource.CityQuery("New"))

	assert.Equal(t, 1, c.Prune(20*time.Minute))
	assert.Equal(t, 1, c.Len())
}
