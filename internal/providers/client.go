package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"soba-backend/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxAttempts = 3
	DefaultRetryBase   = 500 * time.Millisecond
)

// rest is the shared HTTP layer underneath every provider client. It performs
// GET requests with a bounded retry loop: HTTP 429 retries with delay
// base * 2^attempt up to maxAttempts total attempts, everything else fails
// immediately.
type rest struct {
	provider    string
	baseURL     string
	headers     map[string]string
	httpClient  *http.Client
	maxAttempts int
	retryBase   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// Option configures a provider client.
type Option func(*rest)

// WithBaseURL overrides the provider base URL (used in tests).
func WithBaseURL(u string) Option {
	return func(c *rest) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *rest) {
		c.httpClient = client
	}
}

// WithMaxAttempts sets the total attempt budget for rate-limited calls.
func WithMaxAttempts(n int) Option {
	return func(c *rest) {
		c.maxAttempts = n
	}
}

// WithRetryBase sets the initial backoff delay.
func WithRetryBase(d time.Duration) Option {
	return func(c *rest) {
		c.retryBase = d
	}
}

func newREST(provider, baseURL string, headers map[string]string, opts ...Option) *rest {
	c := &rest{
		provider:    provider,
		baseURL:     baseURL,
		headers:     headers,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		maxAttempts: DefaultMaxAttempts,
		retryBase:   DefaultRetryBase,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// getJSON performs a GET with the bounded retry policy and decodes the
// response body into out.
func (c *rest) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return &Error{Provider: c.provider, Endpoint: path, Message: "create request", Err: err}
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		reqStart := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			observability.RecordProviderRequest(c.provider, "error", time.Since(reqStart))
			// Network errors and timeouts are not retried.
			return &Error{Provider: c.provider, Endpoint: path, Message: "http request", Err: err}
		}
		observability.RecordProviderRequest(c.provider, strconv.Itoa(resp.StatusCode), time.Since(reqStart))

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return &Error{Provider: c.provider, Endpoint: path, Status: resp.StatusCode, Message: "read response", Err: err}
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt == c.maxAttempts-1 {
				return &Error{Provider: c.provider, Endpoint: path, Status: resp.StatusCode, Message: "rate limited, retries exhausted"}
			}
			// delay = base * 2^attempt
			if err := c.sleep(ctx, c.retryBase<<uint(attempt)); err != nil {
				return &Error{Provider: c.provider, Endpoint: path, Message: "backoff interrupted", Err: err}
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &Error{Provider: c.provider, Endpoint: path, Status: resp.StatusCode, Message: string(body)}
		}

		if out != nil {
			if err := json.Unmarshal(body, out); err != nil {
				return &Error{Provider: c.provider, Endpoint: path, Status: resp.StatusCode, Message: "malformed payload", Err: err}
			}
		}
		return nil
	}

	// Unreachable: the loop always returns.
	return &Error{Provider: c.provider, Endpoint: path, Message: "no attempts made"}
}
