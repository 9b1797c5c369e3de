package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"forecast-viewer/models"
)

// FallbackSource tries each source in order and returns the first success
type FallbackSource struct {
	sources []ForecastSource
}

var _ ForecastSource = (*FallbackSource)(nil)

// NewFallbackSource creates a source that falls back across the given sources
func NewFallbackSource(sources ...ForecastSource) *FallbackSource {
	return &FallbackSource{sources: sources}
}

// Name lists the wrapped sources
func (f *FallbackSource) Name() string {
	names := make([]string, 0, len(f.sources))
	for _, s := range f.sources {
		names = append(names, s.Name())
	}
	return strings.Join(names, " | ")
}

// FetchForecast returns the first successful forecast. When every source
// fails the errors are joined.
func (f *FallbackSource) FetchForecast(ctx context.Context, q Query) (models.ForecastSet, error) {
	if len(f.sources) == 0 {
		return models.ForecastSet{}, errors.New("no forecast sources configured")
	}

	var errs []error
	for _, s := range f.sources {
		forecast, err := s.FetchForecast(ctx, q)
		if err == nil {
			return forecast, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return models.ForecastSet{}, errors.Join(errs...)
}

// SourcesFromConfig builds the enabled providers, rate limited when configured
func SourcesFromConfig(config *Config) ([]ForecastSource, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var sources []ForecastSource
	if config.OpenWeatherMap.Enabled {
		sources = append(sources, NewOpenWeatherMapProvider(config.OpenWeatherMap.APIKey, config.OpenWeatherMap.BaseURL))
	}
	if config.WeatherAPI.Enabled {
		sources = append(sources, NewWeatherAPIProvider(config.WeatherAPI.APIKey, config.WeatherAPI.BaseURL))
	}

	if config.RateLimit.Enabled {
		for i, s := range sources {
			sources[i] = NewRateLimitedForecastSource(s, config.RateLimit.RPS, config.RateLimit.Burst)
		}
	}

	return sources, nil
}
