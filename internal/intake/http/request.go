package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
)

const (
	// multipartOverhead is allowed on top of the file bytes for form fields
	// and part headers.
	multipartOverhead = 1 << 20

	// multipartMemory is held in memory before parts spill to disk.
	multipartMemory = 32 << 20

	maxBulkFiles = 20
)

// parseMultipart caps the body at files*maxFileBytes plus overhead and
// parses it. An oversized body is reported as ErrPayloadTooLarge.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxFileBytes int64, files int) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileBytes*int64(files)+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes", service.ErrPayloadTooLarge, tooLarge.Limit)
		}
		return &service.ValidationError{Fields: map[string]string{"body": "must be a valid multipart/form-data body"}}
	}
	return nil
}

// formFile reads the single file in field. It returns nil when the field is
// absent.
func formFile(r *http.Request, field string) (*service.Upload, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	up, err := readUpload(r.MultipartForm.File[field][0])
	if err != nil {
		return nil, err
	}
	return &up, nil
}

func readUpload(fh *multipart.FileHeader) (service.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.Upload{}, fmt.Errorf("read upload %q: %w", fh.Filename, err)
	}
	return service.Upload{
		Filename: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

// documentMetadata reads the shared metadata fields of an upload form.
func documentMetadata(r *http.Request) (service.DocumentMetadata, error) {
	meta := service.DocumentMetadata{
		DocumentType:       domain.DocumentType(r.FormValue("documentType")),
		Description:        r.FormValue("description"),
		RelatedChallengeID: r.FormValue("relatedChallengeId"),
		RelatedUserID:      r.FormValue("relatedUserId"),
	}
	if meta.DocumentType != "" && !meta.DocumentType.Valid() {
		return meta, &service.ValidationError{Fields: map[string]string{"documentType": "must be one of initial-submission completion-document supporting-document"}}
	}
	for _, tag := range r.MultipartForm.Value["tags"] {
		meta.Tags = append(meta.Tags, strings.Split(tag, ",")...)
	}
	if v := r.FormValue("isPublic"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return meta, &service.ValidationError{Fields: map[string]string{"isPublic": "must be a boolean"}}
		}
		meta.IsPublic = b
	}
	return meta, nil
}

// pageRequest reads page and pageSize. Missing or invalid values fall back
// to the service defaults.
func pageRequest(r *http.Request) service.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	return service.PageRequest{Page: page, PageSize: size}
}
