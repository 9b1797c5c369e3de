// Package app wires configuration into a ready-to-use forecast session.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"forecast-viewer/cache"
	"forecast-viewer/collector"
	"forecast-viewer/datasource"
	"forecast-viewer/forecastview"
	"forecast-viewer/session"
)

// App bundles the components built from one configuration
type App struct {
	Config     *datasource.Config
	Source     *cache.CachedForecastSource
	Session    *session.Session
	Prefetcher *collector.Prefetcher
}

// New builds providers, the cache, the session and the prefetcher
func New(config *datasource.Config, logger *slog.Logger) (*App, error) {
	sources, err := datasource.SourcesFromConfig(config)
	if err != nil {
		return nil, err
	}

	var source datasource.ForecastSource = sources[0]
	if len(sources) > 1 {
		source = datasource.NewFallbackSource(sources...)
	}

	ttl, err := config.CacheDuration()
	if err != nil {
		return nil, err
	}
	cached := cache.NewCachedForecastSource(source, ttl, logger)

	loc, err := config.Location()
	if err != nil {
		return nil, err
	}

	sess := session.New(cached, session.StaticLocation{Coordinates: config.CurrentLocation}, forecastview.NewFormatter(loc), logger)

	logger.Debug("forecast source ready",
		"source", cached.Name(),
		"timezone", loc.String(),
		"cache_ttl", ttl,
	)

	return &App{
		Config:     config,
		Source:     cached,
		Session:    sess,
		Prefetcher: collector.NewPrefetcher(cached, config.Locations, logger),
	}, nil
}

// LoadConfig reads .env and the config file, then applies environment overrides
func LoadConfig(path string) (*datasource.Config, error) {
	if err := datasource.LoadEnv(); err != nil {
		return nil, err
	}
	config, err := datasource.LoadConfigOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.ApplyEnv()
	return config, nil
}

// NewLogger builds a slog logger. format is "text" or "json"; level is a
// slog level name and falls back to info.
func NewLogger(w io.Writer, format, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
