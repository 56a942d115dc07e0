package intakesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// url builds a complete URL by appending the path to the base URL.
func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// doRequest sends a request and retries 502, 503, 504 and network errors.
// The body is held as bytes so every attempt can resend it.
func (c *Client) doRequest(
	ctx context.Context,
	method, path string,
	body []byte,
	headers map[string]string,
) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.url(path), rd)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}
		if c.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.Token)
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("failed to send request: %w", err)
		}

		transient := err != nil || retryableStatus(resp.StatusCode)
		if !transient || attempt >= c.MaxRetries {
			if err != nil {
				return nil, fmt.Errorf("failed to send request: %w", err)
			}
			return resp, nil
		}

		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
		if err := sleep(ctx, c.backoff(attempt)); err != nil {
			return nil, err
		}
	}
}

// doJSON marshals in (when non-nil) as the request body.
func (c *Client) doJSON(ctx context.Context, method, path string, in any) (*http.Response, error) {
	if in == nil {
		return c.doRequest(ctx, method, path, nil, nil)
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return c.doRequest(ctx, method, path, body, map[string]string{"Content-Type": "application/json"})
}

// decodeJSON decodes a JSON response into target, or returns an *APIError
// when the status is not expectedStatus.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// checkStatusNoContent returns an *APIError if the response is not 204.
func checkStatusNoContent(resp *http.Response) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, bodyBytes)
	}
	return nil
}
