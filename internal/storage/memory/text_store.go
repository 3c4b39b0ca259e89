package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
)

// TextStore keeps at most one extracted text per calendar date.
type TextStore struct {
	mu    sync.RWMutex
	texts map[time.Time]bulletin.ExtractedText
}

// NewTextStore constructs a TextStore.
func NewTextStore() *TextStore {
	return &TextStore{texts: make(map[time.Time]bulletin.ExtractedText)}
}

// Exists reports whether a text has been stored for date.
func (s *TextStore) Exists(_ context.Context, date time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.texts[bulletin.Day(date)]
	return ok, nil
}

// Insert stores text. A second insert for the same date returns bulletin.ErrAlreadyExists.
func (s *TextStore) Insert(_ context.Context, text bulletin.ExtractedText) error {
	if text.Date.IsZero() {
		return fmt.Errorf("text date is required")
	}
	key := bulletin.Day(text.Date)
	text.Date = key
	if text.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate text id: %w", err)
		}
		text.ID = id.String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.texts[key]; exists {
		return bulletin.ErrAlreadyExists
	}
	s.texts[key] = text
	return nil
}

// Get returns the text stored for date.
func (s *TextStore) Get(_ context.Context, date time.Time) (bulletin.ExtractedText, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.texts[bulletin.Day(date)]
	if !ok {
		return bulletin.ExtractedText{}, bulletin.ErrNotFound
	}
	return text, nil
}

// Close is a no-op.
func (s *TextStore) Close() {}
