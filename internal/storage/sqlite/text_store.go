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

// TextStore keeps at most one extracted text row per date.
type TextStore struct {
	store *Store
	table string
}

// Exists reports whether a text row exists for date.
func (s *TextStore) Exists(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	err := s.store.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE report_date = ?)`, s.table),
		bulletin.FormatDate(bulletin.Day(date)),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check text: %w", err)
	}
	return exists, nil
}

// Insert writes text, returning bulletin.ErrAlreadyExists when the date already has a row.
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
	res, err := s.store.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, report_date, cleaned_text, derived_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (report_date) DO NOTHING`, s.table),
		text.ID, bulletin.FormatDate(bulletin.Day(text.Date)), text.CleanedText, formatTime(text.DerivedAt))
	if err != nil {
		return fmt.Errorf("insert text: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert text: %w", err)
	}
	if n == 0 {
		return bulletin.ErrAlreadyExists
	}
	return nil
}

// Get returns the text stored for date.
func (s *TextStore) Get(ctx context.Context, date time.Time) (bulletin.ExtractedText, error) {
	var (
		text              bulletin.ExtractedText
		day, derivedValue string
	)
	err := s.store.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, report_date, cleaned_text, derived_at
		FROM %s WHERE report_date = ?`, s.table), bulletin.FormatDate(bulletin.Day(date)),
	).Scan(&text.ID, &day, &text.CleanedText, &derivedValue)
	if errors.Is(err, sql.ErrNoRows) {
		return bulletin.ExtractedText{}, bulletin.ErrNotFound
	}
	if err != nil {
		return bulletin.ExtractedText{}, fmt.Errorf("get text: %w", err)
	}
	if text.Date, err = parseDay(day); err != nil {
		return bulletin.ExtractedText{}, err
	}
	if text.DerivedAt, err = parseTime(derivedValue); err != nil {
		return bulletin.ExtractedText{}, err
	}
	return text, nil
}

// Close closes the shared database.
func (s *TextStore) Close() {
	_ = s.store.Close()
}
