package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
)

// DefaultReportTable holds raw reports when no table is configured.
const DefaultReportTable = "isw_html"

// ReportStore keeps one raw report row per date.
type ReportStore struct {
	pool  Pool
	table string
}

// NewReportStoreWithPool constructs a store over pool. The table is not created; see EnsureSchema.
func NewReportStoreWithPool(pool Pool, table string) (*ReportStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table, err := resolveTable(table, DefaultReportTable)
	if err != nil {
		return nil, err
	}
	return &ReportStore{pool: pool, table: table}, nil
}

// EnsureSchema creates the report table and its date index if missing.
func (s *ReportStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	report_date DATE NOT NULL UNIQUE,
	source_url TEXT NOT NULL,
	raw_content TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

// Close releases the store's hold on its pool.
func (s *ReportStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Upsert inserts report or replaces the row already stored for its date. The row id is
// kept on replacement. The previous hash is read in the same statement so the change flag
// reflects the row this write replaced.
func (s *ReportStore) Upsert(ctx context.Context, report bulletin.Report) (bulletin.UpsertResult, error) {
	if report.Date.IsZero() {
		return bulletin.UpsertResult{}, fmt.Errorf("report date is required")
	}
	if report.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return bulletin.UpsertResult{}, fmt.Errorf("generate report id: %w", err)
		}
		report.ID = id.String()
	}
	query := fmt.Sprintf(`
WITH previous AS (
	SELECT content_hash FROM %[1]s WHERE report_date = $2
)
INSERT INTO %[1]s (id, report_date, source_url, raw_content, content_hash, fetched_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (report_date) DO UPDATE SET
	source_url = EXCLUDED.source_url,
	raw_content = EXCLUDED.raw_content,
	content_hash = EXCLUDED.content_hash,
	fetched_at = EXCLUDED.fetched_at
RETURNING (xmax = 0) AS inserted, COALESCE((SELECT content_hash FROM previous), '') AS previous_hash`, s.table)

	var (
		inserted     bool
		previousHash string
	)
	err := s.pool.QueryRow(ctx, query,
		report.ID,
		bulletin.Day(report.Date),
		report.SourceURL,
		report.RawContent,
		report.ContentHash,
		report.FetchedAt,
	).Scan(&inserted, &previousHash)
	if err != nil {
		return bulletin.UpsertResult{}, fmt.Errorf("upsert report: %w", err)
	}
	return bulletin.UpsertResult{
		Inserted:       inserted,
		ContentChanged: inserted || previousHash != report.ContentHash,
	}, nil
}

// Get returns the report stored for date.
func (s *ReportStore) Get(ctx context.Context, date time.Time) (bulletin.Report, error) {
	query := fmt.Sprintf(`
SELECT id::text, report_date, source_url, raw_content, content_hash, fetched_at
FROM %s WHERE report_date = $1`, s.table)
	report, err := scanReport(s.pool.QueryRow(ctx, query, bulletin.Day(date)))
	if errors.Is(err, pgx.ErrNoRows) {
		return bulletin.Report{}, bulletin.ErrNotFound
	}
	if err != nil {
		return bulletin.Report{}, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

// List returns every stored report ordered by date.
func (s *ReportStore) List(ctx context.Context) ([]bulletin.Report, error) {
	query := fmt.Sprintf(`
SELECT id::text, report_date, source_url, raw_content, content_hash, fetched_at
FROM %s ORDER BY report_date ASC`, s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []bulletin.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out, nil
}

func scanReport(row pgx.Row) (bulletin.Report, error) {
	var r bulletin.Report
	if err := row.Scan(&r.ID, &r.Date, &r.SourceURL, &r.RawContent, &r.ContentHash, &r.FetchedAt); err != nil {
		return bulletin.Report{}, err
	}
	r.Date = bulletin.Day(r.Date)
	r.FetchedAt = r.FetchedAt.UTC()
	return r, nil
}
