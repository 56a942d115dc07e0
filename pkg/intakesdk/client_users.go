package intakesdk

import (
	"context"
	"net/http"
	"net/url"
)

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search   string
	Role     string
	Page     int
	PageSize int
}

// GetMe fetches the caller's profile.
func (c *Client) GetMe(ctx context.Context) (*UserResponse, error) {
	return getJSON[UserResponse](ctx, c, "/v1/users/me")
}

// GetUser fetches a profile by id.
func (c *Client) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	return getJSON[UserResponse](ctx, c, "/v1/users/"+url.PathEscape(id))
}

// UpdateUser changes profile fields.
func (c *Client) UpdateUser(ctx context.Context, id string, req UserUpdateRequest) (*UserResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPatch, "/v1/users/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUserDocuments lists the documents owned by a user.
func (c *Client) ListUserDocuments(ctx context.Context, id string) ([]DocumentResponse, error) {
	out, err := getJSON[[]DocumentResponse](ctx, c, "/v1/users/"+url.PathEscape(id)+"/documents")
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// CreateUser creates an account directly. Admin only.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/admin/users", req)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers pages through users. Admin only.
func (c *Client) ListUsers(ctx context.Context, f UserFilter) (*ListResponse[UserResponse], error) {
	v := url.Values{}
	setQuery(v, "q", f.Search)
	setQuery(v, "role", f.Role)
	setPage(v, f.Page, f.PageSize)
	return getJSON[ListResponse[UserResponse]](ctx, c, "/v1/admin/users"+encodeQuery(v))
}

// Orphans reports documents no challenge references. Admin only.
func (c *Client) Orphans(ctx context.Context) (*OrphanReport, error) {
	return getJSON[OrphanReport](ctx, c, "/v1/admin/orphans")
}
