// Package restclient is a thin HTTP client for talking to the server under test.
//
// The verb methods issue exactly one request and hand back the raw response;
// they never retry and never look at the status code. AuthenticatedPut is the
// one higher-level helper: it checks the status and decodes a JSON body.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jaspiharness/pkg/logging"

	"github.com/google/uuid"
)

const (
	// HeaderRequestID carries a fresh UUID on every request so server logs can be
	// matched against harness logs.
	HeaderRequestID = "X-Request-Id"

	defaultUserAgent = "jaspi-harness"
)

// Response is the unmodified result of a single request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client issues HTTP requests against a URL prefix.
type Client struct {
	prefix     string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses a copy of hc for requests. Its transport is wrapped so
// the User-Agent and request ID headers are still added.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.httpClient = &cp
	}
}

// WithTimeout sets the per-request timeout. It applies regardless of where it
// appears relative to WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent sent when the caller does not set one.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// New creates a client. prefix is prepended verbatim to path suffixes by
// AuthenticatedPut; the verb methods take complete URLs.
func New(prefix string, opts ...Option) *Client {
	c := &Client{
		prefix:     prefix,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}

	next := c.httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	c.httpClient.Transport = &headerTransport{next: next, userAgent: c.userAgent}
	return c
}

// Prefix returns the URL prefix used by AuthenticatedPut.
func (c *Client) Prefix() string {
	return c.prefix
}

// URL concatenates the prefix and a path suffix without adding or removing
// slashes.
func (c *Client) URL(suffix string) string {
	return c.prefix + suffix
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, url, headers, nil)
}

// Head issues a HEAD request.
func (c *Client) Head(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, http.MethodHead, url, headers, nil)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, url, headers, nil)
}

// Post issues a POST request with body.
func (c *Client) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error) {
	return c.Do(ctx, http.MethodPost, url, headers, body)
}

// Put issues a PUT request with body.
func (c *Client) Put(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error) {
	return c.Do(ctx, http.MethodPut, url, headers, body)
}

// Patch issues a PATCH request with body.
func (c *Client) Patch(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, url, headers, body)
}

// Do issues a single request and reads the whole response body.
func (c *Client) Do(ctx context.Context, method, url string, headers map[string]string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request for %s: %w", method, url, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s %s: %w", method, url, err)
	}

	logging.Debug("RESTClient", "%s %s -> %d (%d bytes)", method, url, resp.StatusCode, len(data))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// AuthenticatedPut PUTs body to prefix+suffix with a JSON content type merged
// under headers, and decodes the JSON response. Any status other than 200 or
// 201 yields *UnexpectedStatusError; an undecodable body yields
// *MalformedResponseError.
func (c *Client) AuthenticatedPut(ctx context.Context, suffix string, body []byte, headers map[string]string) (interface{}, error) {
	merged := MergeHeaders(map[string]string{"Content-Type": "application/json"}, headers)

	resp, err := c.Put(ctx, c.URL(suffix), merged, body)
	if err != nil {
		return nil, err
	}
	return DecodeJSON(resp, http.StatusOK, http.StatusCreated)
}

// DecodeJSON checks resp against the accepted status codes and decodes its body.
func DecodeJSON(resp *Response, accepted ...int) (interface{}, error) {
	if !statusAccepted(resp.StatusCode, accepted) {
		return nil, &UnexpectedStatusError{Code: resp.StatusCode, Body: resp.Body}
	}

	var result interface{}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, &MalformedResponseError{Body: resp.Body, Err: err}
	}
	return result, nil
}

func statusAccepted(code int, accepted []int) bool {
	for _, a := range accepted {
		if code == a {
			return true
		}
	}
	return false
}

// MergeHeaders returns defaults overlaid with overrides. Keys are compared in
// canonical form, so "content-type" in overrides replaces "Content-Type".
func MergeHeaders(defaults, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	for k, v := range overrides {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	return merged
}

type headerTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if len(r.Header.Values("User-Agent")) == 0 {
		r.Header.Set("User-Agent", t.userAgent)
	}
	if r.Header.Get(HeaderRequestID) == "" {
		r.Header.Set(HeaderRequestID, uuid.NewString())
	}
	return t.next.RoundTrip(r)
}
