package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"forecast-viewer/datasource"
	"forecast-viewer/metrics"
	"forecast-viewer/models"
)

// CachedForecastSource wraps a ForecastSource and adds caching functionality
type CachedForecastSource struct {
	source         datasource.ForecastSource
	cache          map[string]forecastCacheEntry // key is Query.Key()
	mutex          sync.RWMutex
	cacheDuration  time.Duration
	cacheHitCount  int
	cacheMissCount int
	logger         *slog.Logger
	now            func() time.Time
}

// forecastCacheEntry represents a cached forecast with its timestamp
type forecastCacheEntry struct {
	Data      models.ForecastSet
	Timestamp time.Time
}

// NewCachedForecastSource creates a new cached wrapper around a forecast source.
// A zero cacheDuration passes every request through.
func NewCachedForecastSource(source datasource.ForecastSource, cacheDuration time.Duration, logger *slog.Logger) *CachedForecastSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedForecastSource{
		source:        source,
		cache:         make(map[string]forecastCacheEntry),
		cacheDuration: cacheDuration,
		logger:        logger,
		now:           time.Now,
	}
}

// Name returns the name of the underlying forecast source with [Cached] suffix
func (c *CachedForecastSource) Name() string {
	return c.source.Name() + " [Cached]"
}

// FetchForecast fetches forecast data, using cache when available
func (c *CachedForecastSource) FetchForecast(ctx context.Context, q datasource.Query) (models.ForecastSet, error) {
	key := q.Key()

	c.mutex.RLock()
	entry, found := c.cache[key]
	c.mutex.RUnlock()

	if found && c.now().Sub(entry.Timestamp) < c.cacheDuration {
		c.mutex.Lock()
		c.cacheHitCount++
		c.mutex.Unlock()
		metrics.RecordCacheHit()

		c.logger.Debug("forecast cache hit",
			"query", key,
			"source", c.source.Name(),
			"age", c.now().Sub(entry.Timestamp).Round(time.Second),
		)
		return entry.Data, nil
	}

	c.mutex.Lock()
	c.cacheMissCount++
	c.mutex.Unlock()
	metrics.RecordCacheMiss()

	c.logger.Debug("forecast cache miss, fetching fresh data", "query", key, "source", c.source.Name())

	start := time.Now()
	forecast, err := c.source.FetchForecast(ctx, q)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordFetch(c.source.Name(), "error", elapsed)
		return models.ForecastSet{}, err
	}
	metrics.RecordFetch(c.source.Name(), "ok", elapsed)

	if c.cacheDuration > 0 {
		c.mutex.Lock()
		c.cache[key] = forecastCacheEntry{
			Data:      forecast,
			Timestamp: c.now(),
		}
		c.mutex.Unlock()
	}

	return forecast, nil
}

// Prune removes entries older than maxAge and returns how many were dropped
func (c *CachedForecastSource) Prune(maxAge time.Duration) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	cutoff := c.now().Add(-maxAge)
	pruned := 0
	for key, entry := range c.cache {
		if entry.Timestamp.Before(cutoff) {
			delete(c.cache, key)
			pruned++
		}
	}
	return pruned
}

// Len returns the number of cached forecasts
func (c *CachedForecastSource) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cache)
}

// CacheStats returns statistics about cache hits and misses
func (c *CachedForecastSource) CacheStats() (hits, misses int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.cacheHitCount, c.cacheMissCount
}

// Ensure CachedForecastSource implements ForecastSource
var _ datasource.ForecastSource = (*CachedForecastSource)(nil)
