package collector

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"forecast-viewer/datasource"
)

// defaultConcurrency bounds in-flight fetches so a long location list does
// not drain the rate limiter in one burst
const defaultConcurrency = 4

// Prefetcher warms a forecast source for a fixed list of locations
type Prefetcher struct {
	source       datasource.ForecastSource
	locations    []string
	fetchTimeout time.Duration
	concurrency  int
	logger       *slog.Logger
}

// Result summarises one prefetch round
type Result struct {
	Fetched int
	Failed  int
}

// NewPrefetcher creates a prefetcher for the given locations
func NewPrefetcher(source datasource.ForecastSource, locations []string, logger *slog.Logger) *Prefetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prefetcher{
		source:       source,
		locations:    locations,
		fetchTimeout: 10 * time.Second,
		concurrency:  defaultConcurrency,
		logger:       logger,
	}
}

// SetFetchTimeout changes the per-location timeout
func (p *Prefetcher) SetFetchTimeout(timeout time.Duration) {
	p.fetchTimeout = timeout
}

// SetConcurrency changes how many locations are fetched at once
func (p *Prefetcher) SetConcurrency(n int) {
	if n > 0 {
		p.concurrency = n
	}
}

// Run fetches every location once. Individual failures are logged and
// counted; only cancellation of ctx is returned as an error.
func (p *Prefetcher) Run(ctx context.Context) (Result, error) {
	var fetched, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, location := range p.locations {
		location := location
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, p.fetchTimeout)
			defer cancel()

			forecast, err := p.source.FetchForecast(fetchCtx, datasource.CityQuery(location))
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				p.logger.Warn("prefetch failed", "location", location, "source", p.source.Name(), "error", err)
				return nil
			}

			fetched.Add(1)
			p.logger.Debug("prefetched forecast", "location", forecast.Location, "samples", len(forecast.Samples))
			return nil
		})
	}

	err := g.Wait()
	return Result{Fetched: int(fetched.Load()), Failed: int(failed.Load())}, err
}

// Start runs immediately and then on every interval until ctx is done.
// The returned function stops the loop and waits for it to exit.
func (p *Prefetcher) Start(ctx context.Context, interval time.Duration) func() {
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		p.round(loopCtx)
		if interval <= 0 {
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.round(loopCtx)
			case <-loopCtx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func (p *Prefetcher) round(ctx context.Context) {
	if len(p.locations) == 0 {
		return
	}
	result, err := p.Run(ctx)
	if err != nil {
		p.logger.Debug("prefetch round interrupted", "error", err)
		return
	}
	p.logger.Info("prefetch complete", "fetched", result.Fetched, "failed", result.Failed)
}
