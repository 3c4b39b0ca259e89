package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
)

// Sink collects exported texts in memory.
type Sink struct {
	mu       sync.Mutex
	texts    map[string]bulletin.ExtractedText
	finished bool
	total    int
}

// NewSink creates an empty Sink.
func NewSink() *Sink {
	return &Sink{texts: make(map[string]bulletin.ExtractedText)}
}

// Write records text under its date, replacing any earlier write.
func (s *Sink) Write(_ context.Context, text bulletin.ExtractedText) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts[bulletin.FormatDate(text.Date)] = text
	return nil
}

// Finish marks the run complete.
func (s *Sink) Finish(_ context.Context, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = true
	s.total = total
	return nil
}

// Texts returns the written texts ordered by date.
func (s *Sink) Texts() []bulletin.ExtractedText {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bulletin.ExtractedText, 0, len(s.texts))
	for _, text := range s.texts {
		out = append(out, text)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Finished reports whether Finish was called and the total it was given.
func (s *Sink) Finished() (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished, s.total
}
