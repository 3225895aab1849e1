package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds every provider request. Rate-limit negotiation is
// out of scope: a single attempt, and a timeout becomes a ProviderError.
const DefaultTimeout = 10 * time.Second

// client is the shared HTTP plumbing for providers: URL construction and
// JSON field extraction are the only provider-specific parts.
type client struct {
	baseURL string
	http    *http.Client
}

// Option configures a provider's HTTP client.
type Option func(*client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *client) {
		c.http = h
	}
}

func newClient(baseURL string, opts ...Option) client {
	c := client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// errStatus marks a non-2xx response inside a ProviderError so callers can
// branch on the status code.
var errStatus = errors.New("unexpected status")

// getJSON issues a GET and decodes a 2xx JSON body into out.
// Every failure mode comes back as a *ProviderError tagged with name.
func (c client) getJSON(ctx context.Context, name, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &ProviderError{Provider: name, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &ProviderError{Provider: name, Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderError{Provider: name, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProviderError{Provider: name, StatusCode: resp.StatusCode, Err: errStatus}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ProviderError{Provider: name, Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	return nil
}

// statusOf extracts the HTTP status from a provider error, 0 if none.
func statusOf(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode
	}
	return 0
}
