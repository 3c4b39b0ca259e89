// Package worker runs the acquisition and extraction passes over the bulletin archive.
package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
	"github.com/JakeFAU/bulletin-crawler/internal/metrics"
)

// Date outcomes recorded in metrics.
const (
	outcomeSaved      = "saved"
	outcomeExhausted  = "exhausted"
	outcomeStoreError = "store_error"
)

// AcquirerDeps wires an Acquirer. Throttle and Pacer are optional.
type AcquirerDeps struct {
	Candidates bulletin.CandidateGenerator
	Fetcher    bulletin.Fetcher
	Reports    bulletin.ReportStore
	Throttle   bulletin.Throttle
	Pacer      bulletin.Pacer
	Clock      bulletin.Clock
}

// Acquirer fetches one bulletin per calendar date and stores it. Dates are processed
// one at a time in ascending order, and candidates within a date in generator order.
type Acquirer struct {
	candidates bulletin.CandidateGenerator
	fetcher    bulletin.Fetcher
	reports    bulletin.ReportStore
	throttle   bulletin.Throttle
	pacer      bulletin.Pacer
	clock      bulletin.Clock
	logger     *zap.Logger
}

// NewAcquirer constructs an Acquirer.
func NewAcquirer(deps AcquirerDeps, logger *zap.Logger) (*Acquirer, error) {
	if deps.Candidates == nil || deps.Fetcher == nil || deps.Reports == nil {
		return nil, fmt.Errorf("candidates, fetcher and reports are required")
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Acquirer{
		candidates: deps.Candidates,
		fetcher:    deps.Fetcher,
		reports:    deps.Reports,
		throttle:   deps.Throttle,
		pacer:      deps.Pacer,
		clock:      deps.Clock,
		logger:     logger,
	}, nil
}

// Run acquires every date in [start, end]. Per-date failures are logged and counted but
// never abort the run. The context is consulted only between dates; a canceled run
// returns the partial summary with ctx.Err().
func (a *Acquirer) Run(ctx context.Context, start, end time.Time) (bulletin.AcquireSummary, error) {
	start, end = bulletin.Day(start), bulletin.Day(end)
	if start.After(end) {
		return bulletin.AcquireSummary{}, bulletin.ErrInvalidRange
	}

	var summary bulletin.AcquireSummary
	a.logger.Info("acquisition started",
		zap.String("start", bulletin.FormatDate(start)),
		zap.String("end", bulletin.FormatDate(end)),
	)
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if !date.Equal(start) && a.pacer != nil {
			delay := a.pacer.Pause()
			a.logger.Debug("paused between dates", zap.Duration("delay", delay))
		}
		if err := ctx.Err(); err != nil {
			a.logger.Warn("acquisition canceled",
				zap.String("next_date", bulletin.FormatDate(date)),
				zap.Int("dates_done", summary.Dates),
			)
			return summary, err
		}

		summary.Dates++
		outcome := a.acquireDate(ctx, date)
		metrics.ObserveDate(outcome)
		switch outcome {
		case outcomeSaved:
			summary.Saved++
		case outcomeStoreError:
			summary.StoreErrors++
			summary.FailedDates = append(summary.FailedDates, bulletin.FormatDate(date))
		default:
			summary.Failed++
			summary.FailedDates = append(summary.FailedDates, bulletin.FormatDate(date))
		}
	}

	a.logger.Info("acquisition finished",
		zap.Int("dates", summary.Dates),
		zap.Int("saved", summary.Saved),
		zap.Int("failed", summary.Failed),
		zap.Int("store_errors", summary.StoreErrors),
	)
	return summary, nil
}

// acquireDate walks the candidates for date until one fetch succeeds.
func (a *Acquirer) acquireDate(ctx context.Context, date time.Time) string {
	day := bulletin.FormatDate(date)
	candidates := a.candidates.Candidates(date)
	for i, url := range candidates {
		if a.throttle != nil {
			if err := a.throttle.Wait(ctx, url); err != nil {
				a.logger.Warn("throttle wait aborted", zap.String("date", day), zap.String("url", url), zap.Error(err))
				break
			}
		}
		res := a.fetcher.Fetch(ctx, url)
		if !res.OK() {
			a.logger.Debug("candidate failed",
				zap.String("date", day),
				zap.Int("attempt", i+1),
				zap.String("url", url),
				zap.String("status", string(res.Status)),
				zap.Int("status_code", res.StatusCode),
				zap.Error(res.Err),
			)
			continue
		}

		report := bulletin.Report{
			Date:        date,
			SourceURL:   url,
			RawContent:  string(res.Body),
			ContentHash: contentHash(res.Body),
			FetchedAt:   a.clock.Now().UTC(),
		}
		upsert, err := a.reports.Upsert(ctx, report)
		if err != nil {
			a.logger.Error("store report failed", zap.String("date", day), zap.String("url", url), zap.Error(err))
			return outcomeStoreError
		}
		a.logger.Info("report saved",
			zap.String("date", day),
			zap.String("url", url),
			zap.Int("attempt", i+1),
			zap.Bool("inserted", upsert.Inserted),
			zap.Bool("content_changed", upsert.ContentChanged),
		)
		return outcomeSaved
	}

	a.logger.Warn("no candidate succeeded", zap.String("date", day), zap.Int("candidates", len(candidates)))
	return outcomeExhausted
}

func contentHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
