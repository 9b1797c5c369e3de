package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"forecast-viewer/api"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the prefetcher and the HTTP API until ctx is done or the
// listener fails, then shuts the server down.
func (a *App) Serve(ctx context.Context, port int, logger *slog.Logger) error {
	interval, err := a.Config.PrefetchEvery()
	if err != nil {
		return fmt.Errorf("prefetch interval: %w", err)
	}

	// Warm the cache for configured locations
	stopPrefetch := a.Prefetcher.Start(ctx, interval)
	defer stopPrefetch()

	// Load the current location once, as the app does on its first location fix
	if a.Config.CurrentLocation != nil {
		if _, err := a.Session.UseCurrentLocation(ctx); err != nil {
			logger.Warn("initial forecast not loaded", "error", err)
		}
	}

	server := api.NewServer(a.Session, port, logger)
	serveErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var result error
	select {
	case <-ctx.Done():
	case result = <-serveErr:
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}

	hits, misses := a.Source.CacheStats()
	logger.Info("shutdown complete", "cache_hits", hits, "cache_misses", misses)
	return result
}
