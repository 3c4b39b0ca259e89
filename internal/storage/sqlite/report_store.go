package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
)

// ReportStore keeps one raw report row per date.
type ReportStore struct {
	store *Store
	table string
}

// Upsert inserts report or replaces the row for its date inside one transaction.
func (s *ReportStore) Upsert(ctx context.Context, report bulletin.Report) (bulletin.UpsertResult, error) {
	if report.Date.IsZero() {
		return bulletin.UpsertResult{}, fmt.Errorf("report date is required")
	}
	day := bulletin.FormatDate(bulletin.Day(report.Date))

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return bulletin.UpsertResult{}, fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var previousHash string
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT content_hash FROM %s WHERE report_date = ?`, s.table), day,
	).Scan(&previousHash)

	var result bulletin.UpsertResult
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if report.ID == "" {
			id, idErr := uuid.NewV7()
			if idErr != nil {
				return bulletin.UpsertResult{}, fmt.Errorf("generate report id: %w", idErr)
			}
			report.ID = id.String()
		}
		_, err = tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (id, report_date, source_url, raw_content, content_hash, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?)`, s.table),
			report.ID, day, report.SourceURL, report.RawContent, report.ContentHash, formatTime(report.FetchedAt))
		if err != nil {
			return bulletin.UpsertResult{}, fmt.Errorf("insert report: %w", err)
		}
		result = bulletin.UpsertResult{Inserted: true, ContentChanged: true}
	case err != nil:
		return bulletin.UpsertResult{}, fmt.Errorf("read report: %w", err)
	default:
		_, err = tx.ExecContext(ctx, fmt.Sprintf(`
			UPDATE %s SET source_url = ?, raw_content = ?, content_hash = ?, fetched_at = ?
			WHERE report_date = ?`, s.table),
			report.SourceURL, report.RawContent, report.ContentHash, formatTime(report.FetchedAt), day)
		if err != nil {
			return bulletin.UpsertResult{}, fmt.Errorf("update report: %w", err)
		}
		result = bulletin.UpsertResult{ContentChanged: previousHash != report.ContentHash}
	}

	if err := tx.Commit(); err != nil {
		return bulletin.UpsertResult{}, fmt.Errorf("commit upsert: %w", err)
	}
	return result, nil
}

// Get returns the report stored for date.
func (s *ReportStore) Get(ctx context.Context, date time.Time) (bulletin.Report, error) {
	row := s.store.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, report_date, source_url, raw_content, content_hash, fetched_at
		FROM %s WHERE report_date = ?`, s.table), bulletin.FormatDate(bulletin.Day(date)))
	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return bulletin.Report{}, bulletin.ErrNotFound
	}
	if err != nil {
		return bulletin.Report{}, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

// List returns every stored report ordered by date.
func (s *ReportStore) List(ctx context.Context) ([]bulletin.Report, error) {
	rows, err := s.store.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, report_date, source_url, raw_content, content_hash, fetched_at
		FROM %s ORDER BY report_date ASC`, s.table))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []bulletin.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

// Close closes the shared database.
func (s *ReportStore) Close() {
	_ = s.store.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (bulletin.Report, error) {
	var (
		r                bulletin.Report
		day, fetchedText string
	)
	if err := row.Scan(&r.ID, &day, &r.SourceURL, &r.RawContent, &r.ContentHash, &fetchedText); err != nil {
		return bulletin.Report{}, err
	}
	var err error
	if r.Date, err = parseDay(day); err != nil {
		return bulletin.Report{}, err
	}
	if r.FetchedAt, err = parseTime(fetchedText); err != nil {
		return bulletin.Report{}, err
	}
	return r, nil
}
