package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
)

type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]bulletin.FetchResult
	calls     []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{responses: make(map[string]bulletin.FetchResult)}
}

func (f *fakeFetcher) succeed(url, body string) {
	f.responses[url] = bulletin.FetchResult{URL: url, Status: bulletin.FetchSuccess, StatusCode: 200, Body: []byte(body)}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) bulletin.FetchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if res, ok := f.responses[url]; ok {
		return res
	}
	return bulletin.FetchResult{URL: url, Status: bulletin.FetchNotFound, StatusCode: 404}
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeThrottle struct {
	waits int
	err   error
}

func (f *fakeThrottle) Wait(_ context.Context, _ string) error {
	f.waits++
	return f.err
}

type fakePacer struct {
	pauses  int
	onPause func()
}

func (f *fakePacer) Pause() time.Duration {
	f.pauses++
	if f.onPause != nil {
		f.onPause()
	}
	return 0
}

type failingReportStore struct {
	bulletin.ReportStore
	err error
}

func (f failingReportStore) Upsert(context.Context, bulletin.Report) (bulletin.UpsertResult, error) {
	return bulletin.UpsertResult{}, f.err
}

func (f failingReportStore) List(context.Context) ([]bulletin.Report, error) {
	return nil, f.err
}

// flakyTextStore fails Exists for the listed dates.
type flakyTextStore struct {
	bulletin.TextStore
	failDates map[string]bool
}

func (f flakyTextStore) Exists(ctx context.Context, date time.Time) (bool, error) {
	if f.failDates[bulletin.FormatDate(date)] {
		return false, errors.New("connection reset")
	}
	return f.TextStore.Exists(ctx, date)
}
