// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
	"github.com/JakeFAU/bulletin-crawler/internal/candidate"
	"github.com/JakeFAU/bulletin-crawler/internal/config"
	collyfetcher "github.com/JakeFAU/bulletin-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/bulletin-crawler/internal/metrics"
	"github.com/JakeFAU/bulletin-crawler/internal/policy/ratelimit"
	"github.com/JakeFAU/bulletin-crawler/internal/storage"
	"github.com/JakeFAU/bulletin-crawler/internal/storage/local"
	"github.com/JakeFAU/bulletin-crawler/internal/worker"
)

// App holds the shared services of one command invocation: the logger, both stores
// and the optional export sink. It is built once in the root command and closed
// after the subcommand finishes.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	stores  *storage.Stores
	sink    bulletin.TextSink
	clock   clockwork.Clock
	fetcher bulletin.Fetcher
}

// Option customizes App construction.
type Option func(*App)

// WithClock replaces the real clock, e.g. with a clockwork.FakeClock in tests.
func WithClock(clock clockwork.Clock) Option {
	return func(a *App) { a.clock = clock }
}

// WithFetcher replaces the colly fetcher.
func WithFetcher(fetcher bulletin.Fetcher) Option {
	return func(a *App) { a.fetcher = fetcher }
}

// New opens the configured stores and export sink. It fails fast: a store that cannot
// be opened aborts the run before any work begins.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{cfg: cfg, logger: logger, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(a)
	}

	logger.Info("opening stores",
		zap.String("driver", cfg.Store.Driver),
		zap.String("database", cfg.Store.Database),
		zap.String("input_collection", cfg.Store.InputCollection),
		zap.String("output_collection", cfg.Store.OutputCollection),
	)
	stores, err := storage.Open(ctx, storage.Config{
		Driver:           cfg.Store.Driver,
		DSN:              cfg.Store.DSN,
		Database:         cfg.Store.Database,
		InputCollection:  cfg.Store.InputCollection,
		OutputCollection: cfg.Store.OutputCollection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize stores: %w", err)
	}
	a.stores = stores

	if cfg.Export.Dir != "" {
		exporter, err := local.New(local.Config{BaseDir: cfg.Export.Dir, Source: cfg.Export.Source}, a.clock)
		if err != nil {
			stores.Close()
			return nil, fmt.Errorf("failed to initialize export: %w", err)
		}
		logger.Info("exporting texts", zap.String("dir", exporter.Dir()))
		a.sink = exporter
	} else {
		a.sink = storage.NoOpSink{}
	}

	return a, nil
}

// GetLogger returns the shared zap logger.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetConfig returns the configuration the App was built from.
func (a *App) GetConfig() config.Config {
	return a.cfg
}

// GetStores exposes the report and text stores.
func (a *App) GetStores() *storage.Stores {
	return a.stores
}

// Candidates builds the candidate generator from the source settings.
func (a *App) Candidates() (*candidate.Generator, error) {
	gen, err := candidate.New(a.cfg.Source.BaseURL, a.cfg.Source.Templates)
	if err != nil {
		return nil, fmt.Errorf("candidate generator: %w", err)
	}
	return gen, nil
}

// Acquirer wires the acquisition pass.
func (a *App) Acquirer() (*worker.Acquirer, error) {
	gen, err := a.Candidates()
	if err != nil {
		return nil, err
	}
	minDelay, maxDelay := a.cfg.JitterWindow()
	pacer, err := ratelimit.NewJitter(ratelimit.JitterConfig{MinDelay: minDelay, MaxDelay: maxDelay}, a.clock)
	if err != nil {
		return nil, fmt.Errorf("jitter: %w", err)
	}
	fetcher := a.fetcher
	if fetcher == nil {
		fetcher = collyfetcher.New(collyfetcher.Config{
			UserAgent:     a.cfg.HTTP.UserAgent,
			RespectRobots: a.cfg.HTTP.RespectRobots,
			Timeout:       a.cfg.FetchTimeout(),
		})
	}
	return worker.NewAcquirer(worker.AcquirerDeps{
		Candidates: gen,
		Fetcher:    fetcher,
		Reports:    a.stores.Reports,
		Throttle:   ratelimit.New(ratelimit.Config{DefaultRPS: a.cfg.HTTP.HostRPS, DefaultBurst: a.cfg.HTTP.HostBurst}),
		Pacer:      pacer,
		Clock:      a.clock,
	}, a.logger.Named("acquire"))
}

// Processor wires the extraction pass.
func (a *App) Processor() (*worker.Processor, error) {
	return worker.NewProcessor(worker.ProcessorDeps{
		Reports: a.stores.Reports,
		Texts:   a.stores.Texts,
		Sink:    a.sink,
		Clock:   a.clock,
		Workers: a.cfg.Extract.Workers,
	}, a.logger.Named("extract"))
}

// Close releases the stores, writes the metrics textfile when configured and flushes the logger.
func (a *App) Close() {
	a.logger.Info("shutting down application services")
	a.stores.Close()
	if err := metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		a.logger.Warn("write metrics textfile failed", zap.Error(err))
	}
	// Best effort: stderr sync fails on some terminals.
	_ = a.logger.Sync()
}
