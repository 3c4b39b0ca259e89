package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
	"github.com/JakeFAU/bulletin-crawler/internal/extract"
	"github.com/JakeFAU/bulletin-crawler/internal/metrics"
)

// Document outcomes recorded in metrics.
const (
	docExtracted = "extracted"
	docEmpty     = "empty"
	docSkipped   = "skipped"
	docFailed    = "failed"
)

// DeriveFunc turns raw markup into cleaned text.
type DeriveFunc func(raw string) (string, error)

// ProcessorDeps wires a Processor. Sink, Clock and Derive are optional.
type ProcessorDeps struct {
	Reports bulletin.ReportStore
	Texts   bulletin.TextStore
	Sink    bulletin.TextSink
	Clock   bulletin.Clock
	Derive  DeriveFunc
	Workers int
}

// Processor derives an ExtractedText for every stored report that lacks one.
type Processor struct {
	reports bulletin.ReportStore
	texts   bulletin.TextStore
	sink    bulletin.TextSink
	clock   bulletin.Clock
	derive  DeriveFunc
	workers int
	logger  *zap.Logger
}

// NewProcessor constructs a Processor.
func NewProcessor(deps ProcessorDeps, logger *zap.Logger) (*Processor, error) {
	if deps.Reports == nil || deps.Texts == nil {
		return nil, fmt.Errorf("reports and texts are required")
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Derive == nil {
		deps.Derive = extract.Derive
	}
	if deps.Workers < 1 {
		deps.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		reports: deps.Reports,
		texts:   deps.Texts,
		sink:    deps.Sink,
		clock:   deps.Clock,
		derive:  deps.Derive,
		workers: deps.Workers,
		logger:  logger,
	}, nil
}

// Run processes every stored report once. Dates that already have text are skipped, so
// repeated runs converge. Per-document failures are logged and counted. Only a failure
// to list reports, or cancellation, is returned as an error.
func (p *Processor) Run(ctx context.Context) (bulletin.ExtractSummary, error) {
	reports, err := p.reports.List(ctx)
	if err != nil {
		return bulletin.ExtractSummary{}, fmt.Errorf("list reports: %w", err)
	}
	p.logger.Info("extraction started", zap.Int("documents", len(reports)), zap.Int("workers", p.workers))

	var (
		mu      sync.Mutex
		summary = bulletin.ExtractSummary{Documents: len(reports)}
		wg      sync.WaitGroup
		jobs    = make(chan bulletin.Report)
	)
	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for report := range jobs {
				outcome := p.processOne(ctx, report)
				metrics.ObserveDocument(outcome)
				mu.Lock()
				switch outcome {
				case docExtracted:
					summary.Extracted++
				case docEmpty:
					summary.Extracted++
					summary.Empty++
				case docSkipped:
					summary.Skipped++
				default:
					summary.Failed++
				}
				mu.Unlock()
			}
		}()
	}

	var runErr error
dispatch:
	for _, report := range reports {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break dispatch
		case jobs <- report:
		}
	}
	close(jobs)
	wg.Wait()

	if p.sink != nil {
		if err := p.sink.Finish(ctx, summary.Extracted); err != nil {
			p.logger.Warn("export finish failed", zap.Error(err))
		}
	}
	p.logger.Info("extraction finished",
		zap.Int("documents", summary.Documents),
		zap.Int("extracted", summary.Extracted),
		zap.Int("empty", summary.Empty),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, runErr
}

func (p *Processor) processOne(ctx context.Context, report bulletin.Report) string {
	day := bulletin.FormatDate(report.Date)
	exists, err := p.texts.Exists(ctx, report.Date)
	if err != nil {
		p.logger.Error("check existing text failed", zap.String("date", day), zap.Error(err))
		return docFailed
	}
	if exists {
		p.logger.Debug("text already derived", zap.String("date", day))
		return docSkipped
	}

	cleaned, err := p.safeDerive(report.RawContent)
	if err != nil {
		p.logger.Error("extraction failed", zap.String("date", day), zap.String("url", report.SourceURL), zap.Error(err))
		return docFailed
	}

	text := bulletin.ExtractedText{
		Date:        report.Date,
		CleanedText: cleaned,
		DerivedAt:   p.clock.Now().UTC(),
	}
	if err := p.texts.Insert(ctx, text); err != nil {
		if errors.Is(err, bulletin.ErrAlreadyExists) {
			p.logger.Debug("text written concurrently", zap.String("date", day))
			return docSkipped
		}
		p.logger.Error("store text failed", zap.String("date", day), zap.Error(err))
		return docFailed
	}

	if p.sink != nil {
		if err := p.sink.Write(ctx, text); err != nil {
			p.logger.Warn("export failed", zap.String("date", day), zap.Error(err))
		}
	}
	if cleaned == "" {
		p.logger.Info("no extractable text", zap.String("date", day))
		return docEmpty
	}
	p.logger.Debug("text derived", zap.String("date", day), zap.Int("chars", len(cleaned)))
	return docExtracted
}

// safeDerive runs the derive step, converting a panic on malformed input into an error.
func (p *Processor) safeDerive(raw string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("derive panic", zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("derive panicked: %v", r)
		}
	}()
	return p.derive(raw)
}
