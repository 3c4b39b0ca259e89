package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
	"github.com/JakeFAU/bulletin-crawler/internal/storage"
	"github.com/JakeFAU/bulletin-crawler/internal/storage/memory"
)

const narrativePage = `<html><body><div class="content">
<p>Jane Doe</p>
<p>March 3, 2025</p>
<p>Forces advanced near the city [3] amid continued fighting.</p>
<p>https://example.com/source</p>
</div></body></html>`

func seedReports(t *testing.T, store *memory.ReportStore, pages map[string]string) {
	t.Helper()
	for day, raw := range pages {
		_, err := store.Upsert(context.Background(), bulletin.Report{
			Date:        date(t, day),
			SourceURL:   "https://example.com/" + day,
			RawContent:  raw,
			ContentHash: contentHash([]byte(raw)),
		})
		require.NoError(t, err)
	}
}

func TestProcessor_ExtractsAndStoresEmptyText(t *testing.T) {
	t.Parallel()

	reports := memory.NewReportStore()
	texts := memory.NewTextStore()
	sink := memory.NewSink()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC))
	seedReports(t, reports, map[string]string{
		"2025-03-01": narrativePage,
		"2025-03-02": "<html><body><footer><p>nothing</p></footer></body></html>",
	})

	p, err := NewProcessor(ProcessorDeps{Reports: reports, Texts: texts, Sink: sink, Clock: clock}, zap.NewNop())
	require.NoError(t, err)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bulletin.ExtractSummary{Documents: 2, Extracted: 2, Empty: 1}, summary)

	first, err := texts.Get(context.Background(), date(t, "2025-03-01"))
	require.NoError(t, err)
	assert.Equal(t, "Forces advanced near the city amid continued fighting.", first.CleanedText)
	assert.Equal(t, clock.Now(), first.DerivedAt)

	empty, err := texts.Get(context.Background(), date(t, "2025-03-02"))
	require.NoError(t, err)
	assert.Equal(t, "", empty.CleanedText)

	assert.Len(t, sink.Texts(), 2)
	done, total := sink.Finished()
	assert.True(t, done)
	assert.Equal(t, 2, total)
}

func TestProcessor_SecondRunSkipsEverything(t *testing.T) {
	t.Parallel()

	reports := memory.NewReportStore()
	texts := memory.NewTextStore()
	seedReports(t, reports, map[string]string{"2025-03-01": narrativePage, "2025-03-02": narrativePage})

	p, err := NewProcessor(ProcessorDeps{Reports: reports, Texts: texts}, nil)
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.NoError(t, err)
	before, err := texts.Get(context.Background(), date(t, "2025-03-01"))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, before.DerivedAt.Location())
	assert.WithinDuration(t, time.Now().UTC(), before.DerivedAt, time.Minute)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bulletin.ExtractSummary{Documents: 2, Skipped: 2}, summary)

	after, err := texts.Get(context.Background(), date(t, "2025-03-01"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestProcessor_PerDocumentFailuresDoNotAbort(t *testing.T) {
	t.Parallel()

	reports := memory.NewReportStore()
	texts := memory.NewTextStore()
	seedReports(t, reports, map[string]string{
		"2025-03-01": "boom",
		"2025-03-02": "panic",
		"2025-03-03": "fine",
		"2025-03-04": "fine",
	})
	derive := func(raw string) (string, error) {
		switch raw {
		case "boom":
			return "", errors.New("malformed")
		case "panic":
			panic("nil node")
		default:
			return "text", nil
		}
	}
	flaky := flakyTextStore{TextStore: texts, failDates: map[string]bool{"2025-03-04": true}}

	p, err := NewProcessor(ProcessorDeps{Reports: reports, Texts: flaky, Derive: derive}, zap.NewNop())
	require.NoError(t, err)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bulletin.ExtractSummary{Documents: 4, Extracted: 1, Failed: 3}, summary)

	ok, err := texts.Exists(context.Background(), date(t, "2025-03-03"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = texts.Exists(context.Background(), date(t, "2025-03-01"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProcessor_ParallelWorkersWriteOncePerDate(t *testing.T) {
	t.Parallel()

	reports := memory.NewReportStore()
	texts := memory.NewTextStore()
	pages := make(map[string]string)
	start := date(t, "2025-01-01")
	for i := range 40 {
		pages[bulletin.FormatDate(start.AddDate(0, 0, i))] = fmt.Sprintf("<p>Day %d narrative.</p>", i)
	}
	seedReports(t, reports, pages)

	p, err := NewProcessor(ProcessorDeps{Reports: reports, Texts: texts, Workers: 8}, zap.NewNop())
	require.NoError(t, err)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, summary.Extracted)

	text, err := texts.Get(context.Background(), start.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, "Day 7 narrative.", text.CleanedText)
}

func TestProcessor_ExportFailuresAreNotFatal(t *testing.T) {
	t.Parallel()

	reports := memory.NewReportStore()
	texts := memory.NewTextStore()
	seedReports(t, reports, map[string]string{"2025-03-01": narrativePage})

	sink := &storage.MockSink{}
	sink.On("Write", mock.Anything, mock.AnythingOfType("bulletin.ExtractedText")).Return(errors.New("disk full")).Once()
	sink.On("Finish", mock.Anything, 1).Return(errors.New("disk full")).Once()

	p, err := NewProcessor(ProcessorDeps{Reports: reports, Texts: texts, Sink: sink}, zap.NewNop())
	require.NoError(t, err)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Extracted)
	sink.AssertExpectations(t)
}

func TestProcessor_ListFailureIsReturned(t *testing.T) {
	t.Parallel()

	p, err := NewProcessor(ProcessorDeps{
		Reports: failingReportStore{err: errors.New("connection refused")},
		Texts:   memory.NewTextStore(),
	}, zap.NewNop())
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.ErrorContains(t, err, "connection refused")
}

func TestProcessor_CanceledContextStopsDispatch(t *testing.T) {
	t.Parallel()

	reports := memory.NewReportStore()
	seedReports(t, reports, map[string]string{"2025-03-01": narrativePage, "2025-03-02": narrativePage})
	p, err := NewProcessor(ProcessorDeps{Reports: reports, Texts: memory.NewTextStore()}, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Extracted)
	assert.Equal(t, 2, summary.Documents)
}
