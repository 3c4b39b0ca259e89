package bulletin

import (
	"context"
	"time"
)

// Fetcher retrieves one candidate address. Implementations must bound every call with a timeout.
type Fetcher interface {
	Fetch(ctx context.Context, url string) FetchResult
}

// CandidateGenerator maps a calendar date to ordered candidate addresses.
type CandidateGenerator interface {
	Candidates(date time.Time) []string
}

// ReportStore persists raw reports, one per date.
type ReportStore interface {
	Upsert(ctx context.Context, report Report) (UpsertResult, error)
	Get(ctx context.Context, date time.Time) (Report, error)
	List(ctx context.Context) ([]Report, error)
	Close()
}

// TextStore persists extracted texts, at most one per date.
type TextStore interface {
	Exists(ctx context.Context, date time.Time) (bool, error)
	Insert(ctx context.Context, text ExtractedText) error
	Get(ctx context.Context, date time.Time) (ExtractedText, error)
	Close()
}

// TextSink receives every newly derived text, e.g. for file export.
type TextSink interface {
	Write(ctx context.Context, text ExtractedText) error
	Finish(ctx context.Context, total int) error
}

// Throttle paces outbound requests.
type Throttle interface {
	Wait(ctx context.Context, url string) error
}

// Pacer inserts the delay between successive dates.
type Pacer interface {
	Pause() time.Duration
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}
