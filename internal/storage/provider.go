// Package storage opens the report and text stores for a configured driver.
// Callers depend on the bulletin store interfaces, so a run can switch between
// Postgres, a local SQLite file or process memory without code changes.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
	"github.com/JakeFAU/bulletin-crawler/internal/storage/memory"
	"github.com/JakeFAU/bulletin-crawler/internal/storage/postgres"
	"github.com/JakeFAU/bulletin-crawler/internal/storage/sqlite"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config selects a driver and names the two collections.
type Config struct {
	Driver           string
	DSN              string
	Database         string
	InputCollection  string
	OutputCollection string
}

// Stores bundles the raw report store and the extracted text store of one run.
type Stores struct {
	Reports bulletin.ReportStore
	Texts   bulletin.TextStore
}

// Close releases both stores.
func (s *Stores) Close() {
	if s == nil {
		return
	}
	if s.Reports != nil {
		s.Reports.Close()
	}
	if s.Texts != nil {
		s.Texts.Close()
	}
}

// Open connects both stores for cfg.Driver. A connection failure is returned as is;
// callers treat it as fatal.
func Open(ctx context.Context, cfg Config) (*Stores, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverPostgres:
		return openPostgres(ctx, cfg)
	case DriverSQLite:
		return openSQLite(ctx, cfg)
	case DriverMemory:
		return &Stores{Reports: memory.NewReportStore(), Texts: memory.NewTextStore()}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg Config) (*Stores, error) {
	reports, texts, err := postgres.Open(ctx, postgres.Config{
		DSN:      cfg.DSN,
		Database: cfg.Database,
	}, cfg.InputCollection, cfg.OutputCollection)
	if err != nil {
		return nil, fmt.Errorf("open postgres stores: %w", err)
	}
	return &Stores{Reports: reports, Texts: texts}, nil
}

// SQLitePath resolves the database file for the sqlite driver: the DSN when set,
// otherwise <database>.db in the working directory.
func SQLitePath(cfg Config) string {
	if cfg.DSN != "" {
		return strings.TrimPrefix(cfg.DSN, "file:")
	}
	name := cfg.Database
	if name == "" {
		name = "bulletins"
	}
	return name + ".db"
}

func openSQLite(ctx context.Context, cfg Config) (*Stores, error) {
	db, err := sqlite.Open(SQLitePath(cfg))
	if err != nil {
		return nil, err
	}
	reports, err := db.ReportStore(ctx, cfg.InputCollection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open report store: %w", err)
	}
	texts, err := db.TextStore(ctx, cfg.OutputCollection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open text store: %w", err)
	}
	return &Stores{Reports: reports, Texts: texts}, nil
}

// NoOpSink is a TextSink that discards everything. It is used when export is disabled.
type NoOpSink struct{}

// Write does nothing and always returns nil.
func (NoOpSink) Write(_ context.Context, _ bulletin.ExtractedText) error {
	return nil
}

// Finish does nothing and always returns nil.
func (NoOpSink) Finish(_ context.Context, _ int) error {
	return nil
}
