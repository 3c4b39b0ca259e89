package bulletin

import (
	"errors"
	"time"
)

// DateLayout is the calendar-date layout used on the command line and in logs.
const DateLayout = "2006-01-02"

var (
	// ErrNotFound is returned by store lookups when no row exists for the key.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when an ExtractedText is inserted for a date that already has one.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidRange is returned when a run is requested with start after end.
	ErrInvalidRange = errors.New("start date must be before or equal to end date")
)

// FetchStatus classifies the outcome of a single candidate fetch.
type FetchStatus string

// Fetch outcomes. Only FetchSuccess carries a body.
const (
	FetchSuccess        FetchStatus = "success"
	FetchNotFound       FetchStatus = "not_found"
	FetchTransientError FetchStatus = "transient_error"
)

// RobotsStatus indicates what happened while consulting robots.txt for a fetch.
type RobotsStatus string

// Robots status values attached to fetch results.
const (
	RobotsStatusUnknown       RobotsStatus = ""
	RobotsStatusIndeterminate RobotsStatus = "indeterminate"
)

// FetchResult is the tagged outcome of a Fetcher call. Expected failures are
// reported through Status and Err rather than as a returned error.
type FetchResult struct {
	URL          string
	Status       FetchStatus
	StatusCode   int
	Body         []byte
	Duration     time.Duration
	Err          error
	RobotsStatus RobotsStatus
	RobotsReason string
}

// OK reports whether the fetch produced a usable page.
func (r FetchResult) OK() bool {
	return r.Status == FetchSuccess
}

// Report is one raw bulletin page acquired for a calendar date.
type Report struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	SourceURL   string    `json:"source_url"`
	RawContent  string    `json:"raw_content"`
	ContentHash string    `json:"content_hash"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// ExtractedText is the cleaned narrative derived from a Report. It is immutable once stored.
type ExtractedText struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	CleanedText string    `json:"cleaned_text"`
	DerivedAt   time.Time `json:"derived_at"`
}

// UpsertResult describes what a ReportStore upsert did.
type UpsertResult struct {
	Inserted       bool
	ContentChanged bool
}

// AcquireSummary aggregates the per-date outcomes of one acquisition run.
type AcquireSummary struct {
	Dates       int
	Saved       int
	Failed      int
	StoreErrors int
	FailedDates []string
}

// ExtractSummary aggregates the per-document outcomes of one extraction run.
type ExtractSummary struct {
	Documents int
	Extracted int
	Skipped   int
	Empty     int
	Failed    int
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date into midnight UTC.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, errors.New("invalid date format, use YYYY-MM-DD")
	}
	return t, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
