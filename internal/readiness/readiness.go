// Package readiness waits for the server under test to report itself ready on
// its status endpoint.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"jaspiharness/internal/restclient"
	"jaspiharness/pkg/logging"

	"k8s.io/apimachinery/pkg/util/wait"
)

// ErrNotReady is returned when the status endpoint did not report ready before
// the deadline.
var ErrNotReady = errors.New("server not ready")

// DefaultInterval is the poll cadence used when Options.Interval is zero.
const DefaultInterval = 500 * time.Millisecond

// StatusProber fetches the status code of url. Any error means "not ready yet".
type StatusProber interface {
	Probe(ctx context.Context, url string) (int, error)
}

// ProberFunc adapts a function to StatusProber.
type ProberFunc func(ctx context.Context, url string) (int, error)

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, url string) (int, error) {
	return f(ctx, url)
}

// HTTPProber probes with a GET request.
type HTTPProber struct {
	Client *restclient.Client
}

// NewHTTPProber creates a prober backed by a fresh REST client.
func NewHTTPProber(opts ...restclient.Option) *HTTPProber {
	return &HTTPProber{Client: restclient.New("", opts...)}
}

// Probe issues GET url and returns the status code.
func (p *HTTPProber) Probe(ctx context.Context, url string) (int, error) {
	resp, err := p.Client.Get(ctx, url, nil)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

// Options control WaitForStatus.
type Options struct {
	// Interval between probes. Zero means DefaultInterval.
	Interval time.Duration
	// Timeout bounds the whole wait. Zero means wait until ctx is done.
	Timeout time.Duration
	// Expected status code. Zero means 200.
	Expected int
}

// WaitForStatus probes url immediately and then every interval until it
// answers with the expected status. Probe errors are swallowed. It returns the
// number of probes issued.
//
// When the timeout elapses the error satisfies errors.Is(err, ErrNotReady).
// When ctx itself is cancelled the context error is returned.
func WaitForStatus(ctx context.Context, prober StatusProber, url string, opts Options) (int, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	expected := opts.Expected
	if expected == 0 {
		expected = http.StatusOK
	}

	var attempts atomic.Int64
	condition := func(ctx context.Context) (bool, error) {
		n := attempts.Add(1)
		code, err := prober.Probe(ctx, url)
		if err != nil {
			logging.Debug("Readiness", "Probe %d of %s failed: %v", n, url, err)
			return false, nil
		}
		if code != expected {
			logging.Debug("Readiness", "Probe %d of %s returned %d", n, url, code)
			return false, nil
		}
		return true, nil
	}

	var err error
	if opts.Timeout > 0 {
		err = wait.PollUntilContextTimeout(ctx, interval, opts.Timeout, true, condition)
	} else {
		err = wait.PollUntilContextCancel(ctx, interval, true, condition)
	}

	n := int(attempts.Load())
	if err == nil {
		logging.Info("Readiness", "%s ready after %d probe(s)", url, n)
		return n, nil
	}
	if ctx.Err() != nil {
		return n, fmt.Errorf("waiting for %s: %w", url, ctx.Err())
	}
	if wait.Interrupted(err) {
		return n, fmt.Errorf("%w: %s did not return %d within %s (%d probes)", ErrNotReady, url, expected, opts.Timeout, n)
	}
	return n, err
}
