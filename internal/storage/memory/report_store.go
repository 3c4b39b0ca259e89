// Package memory provides in-process stores for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
)

// ReportStore keeps one raw report per calendar date.
type ReportStore struct {
	mu      sync.RWMutex
	reports map[time.Time]bulletin.Report
}

// NewReportStore constructs a ReportStore.
func NewReportStore() *ReportStore {
	return &ReportStore{reports: make(map[time.Time]bulletin.Report)}
}

// Upsert stores report under its date, replacing any earlier report for that date.
// The first ID assigned to a date is kept across replacements.
func (s *ReportStore) Upsert(_ context.Context, report bulletin.Report) (bulletin.UpsertResult, error) {
	if report.Date.IsZero() {
		return bulletin.UpsertResult{}, fmt.Errorf("report date is required")
	}
	key := bulletin.Day(report.Date)
	report.Date = key

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.reports[key]
	if ok {
		report.ID = existing.ID
		s.reports[key] = report
		return bulletin.UpsertResult{ContentChanged: existing.ContentHash != report.ContentHash}, nil
	}
	if report.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return bulletin.UpsertResult{}, fmt.Errorf("generate report id: %w", err)
		}
		report.ID = id.String()
	}
	s.reports[key] = report
	return bulletin.UpsertResult{Inserted: true, ContentChanged: true}, nil
}

// Get returns the report stored for date.
func (s *ReportStore) Get(_ context.Context, date time.Time) (bulletin.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[bulletin.Day(date)]
	if !ok {
		return bulletin.Report{}, bulletin.ErrNotFound
	}
	return report, nil
}

// List returns a copy of all reports ordered by date.
func (s *ReportStore) List(_ context.Context) ([]bulletin.Report, error) {
	s.mu.RLock()
	out := make([]bulletin.Report, 0, len(s.reports))
	for _, report := range s.reports {
		out = append(out, report)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Close is a no-op.
func (s *ReportStore) Close() {}
