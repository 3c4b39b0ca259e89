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

// DefaultTextTable holds extracted texts when no table is configured.
const DefaultTextTable = "isw_report"

// TextStore keeps at most one extracted text row per date.
type TextStore struct {
	pool  Pool
	table string
}

// NewTextStoreWithPool constructs a store over pool. The table is not created; see EnsureSchema.
func NewTextStoreWithPool(pool Pool, table string) (*TextStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table, err := resolveTable(table, DefaultTextTable)
	if err != nil {
		return nil, err
	}
	return &TextStore{pool: pool, table: table}, nil
}

// EnsureSchema creates the text table if missing.
func (s *TextStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	report_date DATE NOT NULL UNIQUE,
	cleaned_text TEXT NOT NULL,
	derived_at TIMESTAMPTZ NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

// Close releases the store's hold on its pool.
func (s *TextStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Exists reports whether a text row exists for date.
func (s *TextStore) Exists(ctx context.Context, date time.Time) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE report_date = $1)`, s.table)
	var exists bool
	if err := s.pool.QueryRow(ctx, query, bulletin.Day(date)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check text: %w", err)
	}
	return exists, nil
}

// Insert writes text. A row already present for the date yields bulletin.ErrAlreadyExists.
func (s *TextStore) Insert(ctx context.Context, text bulletin.ExtractedText) error {
	if text.Date.IsZero() {
		return fmt.Errorf("text date is required")
	}
	if text.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate text id: %w", err)
		}
		text.ID = id.String()
	}
	query := fmt.Sprintf(`
INSERT INTO %s (id, report_date, cleaned_text, derived_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (report_date) DO NOTHING`, s.table)
	tag, err := s.pool.Exec(ctx, query, text.ID, bulletin.Day(text.Date), text.CleanedText, text.DerivedAt)
	if err != nil {
		return fmt.Errorf("insert text: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return bulletin.ErrAlreadyExists
	}
	return nil
}

// Get returns the text stored for date.
func (s *TextStore) Get(ctx context.Context, date time.Time) (bulletin.ExtractedText, error) {
	query := fmt.Sprintf(`
SELECT id::text, report_date, cleaned_text, derived_at
FROM %s WHERE report_date = $1`, s.table)
	var text bulletin.ExtractedText
	err := s.pool.QueryRow(ctx, query, bulletin.Day(date)).
		Scan(&text.ID, &text.Date, &text.CleanedText, &text.DerivedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return bulletin.ExtractedText{}, bulletin.ErrNotFound
	}
	if err != nil {
		return bulletin.ExtractedText{}, fmt.Errorf("get text: %w", err)
	}
	text.Date = bulletin.Day(text.Date)
	text.DerivedAt = text.DerivedAt.UTC()
	return text, nil
}
