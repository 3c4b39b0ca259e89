package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/path", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestObserversAreSafeWithoutExplicitInit(t *testing.T) {
	before := func() float64 {
		Init()
		return testutil.ToFloat64(datesTotal.WithLabelValues("saved"))
	}()

	ObserveDate("saved")
	ObserveFetch("not_found", 120*time.Millisecond)
	ObserveDocument("extracted")
	ObserveJitterDelay(300 * time.Millisecond)
	ObserveRateLimitDelay("https://www.understandingwar.org/backgrounder/x", 50*time.Millisecond)
	ObserveProbeTLSHandshakeTimeout()

	require.InDelta(t, before+1, testutil.ToFloat64(datesTotal.WithLabelValues("saved")), 0.0001)
}

func TestWriteTextfile(t *testing.T) {
	require.NoError(t, WriteTextfile(""))

	ObserveDocument("skipped")
	path := filepath.Join(t.TempDir(), "bulletin.prom")
	require.NoError(t, WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "bulletin_documents_total")
}

// Fuzz test for SanitizeSite.
func FuzzSanitizeSite(f *testing.F) {
	testcases := []string{"http://example.com", "https://understandingwar.org", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		if SanitizeSite(orig) == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
