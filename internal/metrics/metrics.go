// Package metrics exposes Prometheus collectors for the bulletin pipeline.
package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	datesTotal                    *prometheus.CounterVec
	candidateFetchesTotal         *prometheus.CounterVec
	fetchDurationSeconds          prometheus.Histogram
	documentsTotal                *prometheus.CounterVec
	jitterDelaySeconds            prometheus.Histogram
	rateLimitDelaysSeconds        *prometheus.HistogramVec
	probeTLSHandshakeTimeoutTotal prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		datesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulletin_dates_total",
				Help: "Dates processed by acquisition, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		candidateFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulletin_candidate_fetches_total",
				Help: "Candidate URL fetches, labeled by classified status.",
			},
			[]string{"status"},
		)

		fetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bulletin_fetch_duration_seconds",
				Help:    "Latency of candidate URL fetches.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
		)

		documentsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulletin_documents_total",
				Help: "Reports visited by extraction, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		jitterDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bulletin_jitter_delay_seconds",
				Help:    "Randomized pauses inserted between dates.",
				Buckets: []float64{0.1, 0.2, 0.4, 0.6, 0.8, 1, 2},
			},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bulletin_rate_limit_delays_seconds",
				Help:    "Histogram of per-host rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)

		probeTLSHandshakeTimeoutTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bulletin_probe_tls_handshake_timeout_total",
				Help: "Total TLS handshake timeouts encountered while probing robots.txt.",
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// ObserveDate counts one acquisition date outcome (saved, failed, store_error).
func ObserveDate(outcome string) {
	Init()
	datesTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records one classified candidate fetch.
func ObserveFetch(status string, duration time.Duration) {
	Init()
	candidateFetchesTotal.WithLabelValues(status).Inc()
	fetchDurationSeconds.Observe(duration.Seconds())
}

// ObserveDocument counts one extraction outcome (extracted, skipped, empty, failed).
func ObserveDocument(outcome string) {
	Init()
	documentsTotal.WithLabelValues(outcome).Inc()
}

// ObserveJitterDelay records a pause inserted between dates.
func ObserveJitterDelay(delay time.Duration) {
	Init()
	jitterDelaySeconds.Observe(delay.Seconds())
}

// ObserveRateLimitDelay records the duration of a per-host rate limit wait.
func ObserveRateLimitDelay(site string, delay time.Duration) {
	Init()
	rateLimitDelaysSeconds.WithLabelValues(SanitizeSite(site)).Observe(delay.Seconds())
}

// ObserveProbeTLSHandshakeTimeout increments the probe-specific handshake timeout counter.
func ObserveProbeTLSHandshakeTimeout() {
	Init()
	probeTLSHandshakeTimeoutTotal.Inc()
}

// WriteTextfile dumps the default registry in the node_exporter textfile format.
// An empty path is a no-op.
func WriteTextfile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	Init()
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
