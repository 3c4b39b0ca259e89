// Package postgres provides Postgres-backed report and text stores.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool shared by the stores.
type Config struct {
	DSN string
	// Database overrides the database named in DSN when set.
	Database        string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// Pool is the subset of pgxpool.Pool the stores use.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Open connects once and returns a report store and a text store over the same pool,
// creating both tables if missing. The pool is closed after both stores are closed.
func Open(ctx context.Context, cfg Config, reportTable, textTable string) (*ReportStore, *TextStore, error) {
	pool, err := connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	reports, texts, err := openShared(ctx, pool, reportTable, textTable)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return reports, texts, nil
}

func openShared(ctx context.Context, pool Pool, reportTable, textTable string) (*ReportStore, *TextStore, error) {
	shared := &sharedPool{Pool: pool}
	shared.refs.Store(2)
	reports, err := NewReportStoreWithPool(&poolHandle{sharedPool: shared}, reportTable)
	if err != nil {
		return nil, nil, err
	}
	texts, err := NewTextStoreWithPool(&poolHandle{sharedPool: shared}, textTable)
	if err != nil {
		return nil, nil, err
	}
	if reports.table == texts.table {
		return nil, nil, fmt.Errorf("report and text tables must differ: %q", reports.table)
	}
	if err := reports.EnsureSchema(ctx); err != nil {
		return nil, nil, err
	}
	if err := texts.EnsureSchema(ctx); err != nil {
		return nil, nil, err
	}
	return reports, texts, nil
}

// sharedPool closes the underlying pool when its last handle is closed.
type sharedPool struct {
	Pool
	refs atomic.Int32
}

type poolHandle struct {
	*sharedPool
	once sync.Once
}

func (h *poolHandle) Close() {
	h.once.Do(func() {
		if h.refs.Add(-1) == 0 {
			h.sharedPool.Pool.Close()
		}
	})
}

func connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.Database != "" {
		poolCfg.ConnConfig.Database = cfg.Database
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func resolveTable(table, fallback string) (string, error) {
	if table == "" {
		table = fallback
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}
