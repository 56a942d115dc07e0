package intakesdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// Submit sends an anonymous intake submission. A failed submission returns
// both the decoded SubmitResponse (which may carry a DocumentID) and an
// *APIError.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	f := newForm()
	f.field("name", req.Name)
	f.field("email", req.Email)
	if len(req.Answers) > 0 {
		answers, err := json.Marshal(req.Answers)
		if err != nil {
			return nil, fmt.Errorf("failed to encode answers: %w", err)
		}
		f.field("answers", string(answers))
	}
	if req.File != nil {
		f.file("file", *req.File)
	}
	body, contentType, err := f.finish()
	if err != nil {
		return nil, err
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/intake/submissions", body, map[string]string{
		"Content-Type":       contentType,
		IdempotencyKeyHeader: key,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var out SubmitResponse
	if jsonErr := json.Unmarshal(raw, &out); jsonErr != nil || resp.StatusCode != http.StatusCreated {
		apiErr := parseErrorResponse(resp, raw)
		if jsonErr != nil {
			if resp.StatusCode == http.StatusCreated {
				return nil, fmt.Errorf("failed to decode response: %w", jsonErr)
			}
			return nil, apiErr
		}
		return &out, apiErr
	}
	return &out, nil
}

// Claim sets the password on the account for challengeID and links the
// challenge to it.
func (c *Client) Claim(ctx context.Context, challengeID, password string) (*ClaimResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/challenges/"+url.PathEscape(challengeID)+"/claim", ClaimRequest{Password: password})
	if err != nil {
		return nil, err
	}

	var out ClaimResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}
