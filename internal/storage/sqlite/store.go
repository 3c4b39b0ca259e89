// Package sqlite stores reports and extracted texts in a single SQLite file.
//
// It uses modernc.org/sqlite, so no CGO toolchain is needed. Both tables live in
// one database opened in WAL mode; dates are stored as YYYY-MM-DD text and
// timestamps as RFC 3339 text so the file stays readable with the sqlite3 shell.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Store owns the database handle shared by the report and text stores.
type Store struct {
	db        *sql.DB
	path      string
	closeOnce sync.Once
	closeErr  error
}

// Open opens (creating if needed) the database file at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database. It is safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// ReportStore returns a bulletin.ReportStore backed by table, creating it if missing.
func (s *Store) ReportStore(ctx context.Context, table string) (*ReportStore, error) {
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			report_date TEXT NOT NULL UNIQUE,
			source_url TEXT NOT NULL,
			raw_content TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		)`, table))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", table, err)
	}
	return &ReportStore{store: s, table: table}, nil
}

// TextStore returns a bulletin.TextStore backed by table, creating it if missing.
func (s *Store) TextStore(ctx context.Context, table string) (*TextStore, error) {
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			report_date TEXT NOT NULL UNIQUE,
			cleaned_text TEXT NOT NULL,
			derived_at TEXT NOT NULL
		)`, table))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", table, err)
	}
	return &TextStore{store: s, table: table}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}

func parseDay(value string) (time.Time, error) {
	t, err := bulletin.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", value, err)
	}
	return t, nil
}
