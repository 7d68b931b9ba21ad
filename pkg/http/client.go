// Package http wraps net/http with the small JSON-over-REST surface the
// upstream market and signal APIs need: query params, header injection, and
// bounded retries on throttling responses.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	MethodGet  = http.MethodGet
	MethodPost = http.MethodPost
)

const defaultUserAgent = "boostpull/1.0"

// ClientOption configures Client.
type ClientOption func(*Client)

// RequestOptions holds the parameters of one request.
type RequestOptions struct {
	Method      string
	URL         string
	Headers     map[string]string
	QueryParams map[string][]string
	Body        interface{} // marshaled as JSON when non-nil
}

// Client is an HTTP client with a hard timeout and retry on 429/5xx.
type Client struct {
	timeout    time.Duration
	maxRetries int
	retryWait  time.Duration
	userAgent  string
	client     *http.Client
}

// NewClient creates a client. Defaults: 30s timeout, 2 retries, 1s base wait.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:    30 * time.Second,
		maxRetries: 2,
		retryWait:  time.Second,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.client = &http.Client{Timeout: c.timeout}
	return c
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.timeout = timeout }
}

// WithRetries sets how many times a throttled or failed request is retried.
func WithRetries(n int) ClientOption {
	return func(c *Client) { c.maxRetries = n }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// SendAndParse issues the request and decodes the JSON response into dest.
// A nil dest discards the body. Status 429 and 5xx are retried with linear
// backoff, honoring Retry-After when the upstream sends one.
func (c *Client) SendAndParse(ctx context.Context, opts *RequestOptions, dest interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.retryWait * time.Duration(attempt)
			if ra := retryAfter(lastErr); ra > wait {
				wait = ra
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		done, err := c.attempt(ctx, opts, dest)
		if done {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// statusError carries the status and Retry-After of a rejected response.
type statusError struct {
	status     int
	body       string
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

// attempt runs one request. done=false means the error is retryable.
func (c *Client) attempt(ctx context.Context, opts *RequestOptions, dest interface{}) (done bool, err error) {
	req, err := c.buildRequest(ctx, opts)
	if err != nil {
		return true, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		se := &statusError{status: resp.StatusCode, body: string(body)}
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, perr := strconv.Atoi(s); perr == nil {
				se.retryAfter = time.Duration(secs) * time.Second
			}
		}
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return !retryable, se
	}

	if dest == nil {
		return true, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return true, fmt.Errorf("decode json: %w", err)
	}
	return true, nil
}

func (c *Client) buildRequest(ctx context.Context, opts *RequestOptions) (*http.Request, error) {
	var body io.Reader
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, body)
	if err != nil {
		return nil, err
	}

	if len(opts.QueryParams) > 0 {
		q := req.URL.Query()
		for key, values := range opts.QueryParams {
			for _, value := range values {
				q.Add(key, value)
			}
		}
		req.URL.RawQuery = q.Encode()
	}

	req.Header.Set("User-Agent", c.userAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func retryAfter(err error) time.Duration {
	if se, ok := err.(*statusError); ok {
		return se.retryAfter
	}
	return 0
}
