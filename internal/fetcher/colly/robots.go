package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
	"github.com/JakeFAU/bulletin-crawler/internal/metrics"
)

const robotsFallbackReasonTLSHandshake = "TLS handshake timeout"

// allowAllRobots is served in place of robots.txt when the host never answers the probe.
const allowAllRobots = "User-agent: *\nAllow: /"

var defaultRobotsBackoff = []time.Duration{
	250 * time.Millisecond,
	500 * time.Millisecond,
	time.Second,
}

// robotsAwareTransport retries robots.txt probes on transient TLS failures and passes
// every other request straight to base.
type robotsAwareTransport struct {
	base  http.RoundTripper
	state *robotsProbeState
}

func (t *robotsAwareTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("robots transport received nil request")
	}
	if t.state == nil || !isRobotsTxtRequest(req) {
		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, fmt.Errorf("robots transport base roundtrip: %w", err)
		}
		return resp, nil
	}
	return t.state.probe(req, t.base)
}

func isRobotsTxtRequest(req *http.Request) bool {
	if req == nil || req.URL == nil {
		return false
	}
	return strings.EqualFold(req.URL.Path, "/robots.txt")
}

// robotsProbeState remembers whether the robots.txt probe for one fetch had to fall back.
type robotsProbeState struct {
	backoff []time.Duration
	status  bulletin.RobotsStatus
	reason  string
}

func newRobotsProbeState() *robotsProbeState {
	return &robotsProbeState{backoff: defaultRobotsBackoff}
}

func (s *robotsProbeState) apply(result *bulletin.FetchResult) {
	if s == nil || result == nil || s.status == bulletin.RobotsStatusUnknown {
		return
	}
	result.RobotsStatus = s.status
	result.RobotsReason = s.reason
}

func (s *robotsProbeState) probe(req *http.Request, base http.RoundTripper) (*http.Response, error) {
	attempts := len(s.backoff) + 1
	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := base.RoundTrip(cloneRequest(req))
		if err == nil {
			return resp, nil
		}
		if !isTransientTLSError(err) {
			return nil, fmt.Errorf("robots probe: %w", err)
		}
		if attempt == attempts-1 {
			break
		}
		if err := sleepWithContext(req.Context(), s.backoff[attempt]); err != nil {
			return nil, fmt.Errorf("robots probe backoff: %w", err)
		}
	}
	s.markIndeterminate(robotsFallbackReasonTLSHandshake)
	return allowAllResponse(req), nil
}

func (s *robotsProbeState) markIndeterminate(reason string) {
	if s.status == bulletin.RobotsStatusIndeterminate {
		return
	}
	s.status = bulletin.RobotsStatusIndeterminate
	s.reason = reason
	metrics.ObserveProbeTLSHandshakeTimeout()
}

func cloneRequest(req *http.Request) *http.Request {
	clone := req.Clone(req.Context())
	clone.Body = req.Body
	return clone
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("sleep interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func allowAllResponse(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode:    http.StatusOK,
		Status:        "200 OK",
		Body:          io.NopCloser(strings.NewReader(allowAllRobots)),
		ContentLength: int64(len(allowAllRobots)),
		Header:        make(http.Header),
		Request:       req,
	}
}

func isTransientTLSError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "tls: handshake timeout")
}
