package intakesdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DocumentMetadata describes uploaded files.
type DocumentMetadata struct {
	DocumentType       string
	Description        string
	Tags               []string
	RelatedChallengeID string
	RelatedUserID      string
	IsPublic           bool
}

func (m DocumentMetadata) write(f *form) {
	f.field("documentType", m.DocumentType)
	f.field("description", m.Description)
	f.field("tags", strings.Join(m.Tags, ","))
	f.field("relatedChallengeId", m.RelatedChallengeID)
	f.field("relatedUserId", m.RelatedUserID)
	if m.IsPublic {
		f.field("isPublic", strconv.FormatBool(true))
	}
}

// UploadDocument stores one file.
func (c *Client) UploadDocument(ctx context.Context, file File, meta DocumentMetadata) (*DocumentResponse, error) {
	f := newForm()
	meta.write(f)
	f.file("file", file)
	body, contentType, err := f.finish()
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/documents", body, map[string]string{"Content-Type": contentType})
	if err != nil {
		return nil, err
	}

	var out DocumentResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// BulkUpload stores several files with shared metadata. Individual
// rejections are reported in the response, not as an error.
func (c *Client) BulkUpload(ctx context.Context, files []File, meta DocumentMetadata) (*BulkUploadResponse, error) {
	f := newForm()
	meta.write(f)
	for _, file := range files {
		f.file("files", file)
	}
	body, contentType, err := f.finish()
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/documents/bulk", body, map[string]string{"Content-Type": contentType})
	if err != nil {
		return nil, err
	}

	var out BulkUploadResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDocument fetches document metadata.
func (c *Client) GetDocument(ctx context.Context, id string) (*DocumentResponse, error) {
	return getJSON[DocumentResponse](ctx, c, "/v1/documents/"+url.PathEscape(id))
}

// DownloadDocument fetches the stored bytes and their content type.
func (c *Client) DownloadDocument(ctx context.Context, id string) ([]byte, string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/documents/"+url.PathEscape(id)+"/content", nil, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", parseErrorResponse(resp, data)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// UpdateDocument changes document metadata.
func (c *Client) UpdateDocument(ctx context.Context, id string, req DocumentUpdateRequest) (*DocumentResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPatch, "/v1/documents/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var out DocumentResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDocument removes a document and its reference from the challenge.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/documents/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
