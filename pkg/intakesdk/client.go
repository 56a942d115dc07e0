package intakesdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Default retry policy for transient failures.
const (
	DefaultMaxRetries = 2
	DefaultBackoff    = 250 * time.Millisecond
)

// Client talks to the intake service. The zero Token makes anonymous
// requests; use WithToken for bearer-authenticated calls.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Token is sent as a bearer token when non-empty.
	Token string

	// MaxRetries bounds the retries of a transient failure. Backoff doubles
	// after every attempt.
	MaxRetries int
	Backoff    time.Duration
}

// NewClient creates an anonymous client with the default retry policy.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		MaxRetries: DefaultMaxRetries,
		Backoff:    DefaultBackoff,
	}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}

// backoff returns c's backoff for the given zero-based retry.
func (c *Client) backoff(retry int) time.Duration {
	return c.Backoff << retry
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
