// Package app_test contains unit tests for the app package.
package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/bulletin-crawler/internal/app"
	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
	"github.com/JakeFAU/bulletin-crawler/internal/config"
)

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Store.Driver = "memory"
	cfg.RateLimit.MinDelayMs = 0
	cfg.RateLimit.MaxDelayMs = 0
	return cfg
}

// pageFetcher serves body for exactly one URL.
type pageFetcher struct {
	url  string
	body string
}

func (f pageFetcher) Fetch(_ context.Context, url string) bulletin.FetchResult {
	if url == f.url {
		return bulletin.FetchResult{URL: url, Status: bulletin.FetchSuccess, StatusCode: 200, Body: []byte(f.body)}
	}
	return bulletin.FetchResult{URL: url, Status: bulletin.FetchNotFound, StatusCode: 404}
}

func TestNewFailsOnUnopenableStore(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Store.Driver = "postgres"
	cfg.Store.DSN = "postgres://bulletin@127.0.0.1:1/bulletins?connect_timeout=1&sslmode=disable"

	_, err := app.New(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

func TestNewFailsOnUnwritableExportDir(t *testing.T) {
	cfg := baseConfig(t)
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	cfg.Export.Dir = file

	_, err := app.New(context.Background(), cfg, nil)
	require.ErrorContains(t, err, "export")
}

func TestAcquireThenExtractEndToEnd(t *testing.T) {
	cfg := baseConfig(t)
	exportDir := t.TempDir()
	cfg.Export.Dir = exportDir
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "bulletin.prom")

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 2, 6, 0, 0, 0, time.UTC))
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	// The fetcher only knows the last of the ten candidates.
	target := "https://www.understandingwar.org/backgrounder/russian-offensive-campaign-assessment-march-1-0"
	body := `<html><body><div class="content"><p>Jane Doe</p><p>Forces advanced [1] near the city.</p></div></body></html>`

	a, err := app.New(context.Background(), cfg, zap.NewNop(),
		app.WithClock(clock),
		app.WithFetcher(pageFetcher{url: target, body: body}),
	)
	require.NoError(t, err)

	acq, err := a.Acquirer()
	require.NoError(t, err)
	summary, err := acq.Run(context.Background(), day, day)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Saved)

	report, err := a.GetStores().Reports.Get(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, target, report.SourceURL)

	proc, err := a.Processor()
	require.NoError(t, err)
	extracted, err := proc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, extracted.Extracted)

	text, err := a.GetStores().Texts.Get(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, "Forces advanced near the city.", text.CleanedText)

	assert.FileExists(t, filepath.Join(exportDir, "isw_report_2025-03-01.txt"))
	assert.FileExists(t, filepath.Join(exportDir, "manifest.json"))

	a.Close()
	assert.FileExists(t, cfg.Metrics.Textfile)
}

func TestCandidatesRejectsBadTemplates(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Source.Templates = []string{"no-placeholder"}
	a, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Candidates()
	require.Error(t, err)
	_, err = a.Acquirer()
	require.Error(t, err)
}
