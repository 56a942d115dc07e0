package intakesdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ChallengeFilter narrows a challenge listing. UserID is honoured for admins
// only; Search applies to the admin listing.
type ChallengeFilter struct {
	UserID   string
	Status   string
	Search   string
	Page     int
	PageSize int
}

func (f ChallengeFilter) query() string {
	v := url.Values{}
	setQuery(v, "userId", f.UserID)
	setQuery(v, "status", f.Status)
	setQuery(v, "q", f.Search)
	setPage(v, f.Page, f.PageSize)
	return encodeQuery(v)
}

// ListChallenges lists the caller's challenges.
func (c *Client) ListChallenges(ctx context.Context, f ChallengeFilter) (*ListResponse[ChallengeResponse], error) {
	return getJSON[ListResponse[ChallengeResponse]](ctx, c, "/v1/challenges"+f.query())
}

// SearchChallenges is the admin listing across every user.
func (c *Client) SearchChallenges(ctx context.Context, f ChallengeFilter) (*ListResponse[ChallengeResponse], error) {
	return getJSON[ListResponse[ChallengeResponse]](ctx, c, "/v1/admin/challenges"+f.query())
}

// GetChallenge fetches one challenge.
func (c *Client) GetChallenge(ctx context.Context, id string) (*ChallengeResponse, error) {
	return getJSON[ChallengeResponse](ctx, c, "/v1/challenges/"+url.PathEscape(id))
}

// UpdateChallengeStatus moves a challenge to status. Admin only.
func (c *Client) UpdateChallengeStatus(ctx context.Context, id string, req StatusUpdateRequest) (*ChallengeResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPatch, "/v1/challenges/"+url.PathEscape(id)+"/status", req)
	if err != nil {
		return nil, err
	}

	var out ChallengeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListChallengeDocuments lists the documents referenced by a challenge.
func (c *Client) ListChallengeDocuments(ctx context.Context, id string) ([]DocumentResponse, error) {
	out, err := getJSON[[]DocumentResponse](ctx, c, "/v1/challenges/"+url.PathEscape(id)+"/documents")
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func getJSON[T any](ctx context.Context, c *Client, path string) (*T, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var out T
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func setQuery(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setPage(v url.Values, page, size int) {
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		v.Set("pageSize", strconv.Itoa(size))
	}
}

func encodeQuery(v url.Values) string {
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}
