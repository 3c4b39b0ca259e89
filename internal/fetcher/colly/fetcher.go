// Package collyfetcher implements bulletin.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
	"github.com/JakeFAU/bulletin-crawler/internal/metrics"
)

// DefaultTimeout bounds a candidate fetch when Config.Timeout is unset.
const DefaultTimeout = 20 * time.Second

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
}

// Fetcher implements bulletin.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := colly.NewCollector(colly.Async(false))
	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &Fetcher{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
	}
}

// Timeout reports the per-call bound applied to every fetch.
func (f *Fetcher) Timeout() time.Duration {
	return f.cfg.Timeout
}

// Fetch executes a single HTTP GET and classifies the outcome. It never returns
// an error: failures are reported through the result status.
func (f *Fetcher) Fetch(ctx context.Context, url string) bulletin.FetchResult {
	var (
		captured bulletin.FetchResult
		fetchErr error
	)
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	collector, robotsState := f.buildCollector(start, &captured, &fetchErr)
	finished, err := f.runCollector(ctx, collector, url, &fetchErr)

	// The collector goroutine owns captured until it finishes.
	result := bulletin.FetchResult{URL: url}
	if finished {
		result.StatusCode = captured.StatusCode
		result.Body = captured.Body
		if robotsState != nil {
			robotsState.apply(&result)
		}
	}
	result.Duration = time.Since(start)
	classify(&result, err)
	metrics.ObserveFetch(string(result.Status), result.Duration)
	return result
}

func (f *Fetcher) buildCollector(
	start time.Time,
	result *bulletin.FetchResult,
	fetchErr *error,
) (*colly.Collector, *robotsProbeState) {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = !f.cfg.RespectRobots
	// Bulletin slugs are retried across runs and every status is classified by the caller.
	collector.AllowURLRevisit = true
	collector.ParseHTTPErrorResponse = true
	collector.SetRequestTimeout(f.cfg.Timeout)

	var robotsState *robotsProbeState
	baseTransport := f.transport
	if baseTransport == nil {
		baseTransport = newHTTPTransport()
	}
	if f.cfg.RespectRobots {
		robotsState = newRobotsProbeState()
		collector.WithTransport(&robotsAwareTransport{
			base:  baseTransport,
			state: robotsState,
		})
	} else {
		collector.WithTransport(baseTransport)
	}

	f.configureCollectorHooks(collector, start, result, fetchErr)
	return collector, robotsState
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	start time.Time,
	result *bulletin.FetchResult,
	fetchErr *error,
) {
	hooks.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.Body = append([]byte(nil), r.Body...)
		result.Duration = time.Since(start)
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			result.StatusCode = r.StatusCode
		}
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(
	ctx context.Context,
	collector *colly.Collector,
	url string,
	fetchErr *error,
) (bool, error) {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return true, fmt.Errorf("colly visit failed: %w", err)
		}
		if *fetchErr != nil {
			return true, fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		return true, nil
	}
}

// classify maps the raw visit outcome onto the tagged fetch status.
func classify(result *bulletin.FetchResult, err error) {
	switch {
	case err != nil && errors.Is(err, colly.ErrRobotsTxtBlocked):
		result.Status = bulletin.FetchNotFound
		result.Err = err
	case err != nil:
		result.Status = bulletin.FetchTransientError
		result.Err = err
	case result.StatusCode == http.StatusOK:
		result.Status = bulletin.FetchSuccess
	case result.StatusCode == http.StatusNotFound || result.StatusCode == http.StatusGone:
		result.Status = bulletin.FetchNotFound
		result.Err = fmt.Errorf("unexpected status: %d", result.StatusCode)
	default:
		result.Status = bulletin.FetchTransientError
		result.Err = fmt.Errorf("unexpected status: %d", result.StatusCode)
	}
	if !result.OK() {
		result.Body = nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
