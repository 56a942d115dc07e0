package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/pkg/httpx"
	"github.com/aussiebroadwan/leadflow/pkg/intakesdk"
)

type DocumentsHandler struct {
	DocumentService *service.DocumentService
}

// HandleUpload godoc
//
//	@Summary		Upload Document
//	@Description	Store one file. With relatedChallengeId the document is appended to that challenge.
//	@Tags			Documents
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file				formData	file						true	"Document"
//	@Param			documentType		formData	string						false	"initial-submission, completion-document or supporting-document"
//	@Param			description			formData	string						false	"Description"
//	@Param			tags				formData	string						false	"Comma separated tags"
//	@Param			relatedChallengeId	formData	string						false	"Challenge to link"
//	@Param			relatedUserId		formData	string						false	"Owning user"
//	@Param			isPublic			formData	bool						false	"Visible to every authenticated user"
//	@Success		201					{object}	intakesdk.DocumentResponse	"document"
//	@Failure		400					{object}	intakesdk.ErrorResponse		"invalid request"
//	@Failure		403					{object}	intakesdk.ErrorResponse		"access denied"
//	@Failure		413					{object}	intakesdk.ErrorResponse		"file too large"
//	@Failure		415					{object}	intakesdk.ErrorResponse		"file type not supported"
//	@Failure		503					{object}	intakesdk.ErrorResponse		"document storage unavailable"
//	@Router			/v1/documents [post].
func (h *DocumentsHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if err := parseMultipart(w, r, h.DocumentService.Limits.For(p), 1); err != nil {
		writeServiceError(w, r, err, "upload document")
		return
	}
	meta, err := documentMetadata(r)
	if err != nil {
		writeServiceError(w, r, err, "upload document")
		return
	}
	up, err := formFile(r, "file")
	if err != nil {
		writeServiceError(w, r, err, "upload document")
		return
	}
	if up == nil {
		writeBadRequest(w, "file is required", map[string]string{"file": "is required"})
		return
	}

	d, err := h.DocumentService.UploadDocument(r.Context(), p, *up, meta)
	if err != nil {
		writeServiceError(w, r, err, "upload document")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, documentResponse(d))
}

// HandleBulkUpload godoc
//
//	@Summary		Bulk Upload Documents
//	@Description	Store several files with shared metadata. Each file is accepted or rejected on its own.
//	@Tags			Documents
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			files				formData	file							true	"Documents (repeat the field)"
//	@Param			documentType		formData	string							false	"Document type for every file"
//	@Param			relatedChallengeId	formData	string							false	"Challenge to link"
//	@Success		200					{object}	intakesdk.BulkUploadResponse	"succeeded, failed, documents, errors"
//	@Failure		400					{object}	intakesdk.ErrorResponse			"invalid request"
//	@Failure		413					{object}	intakesdk.ErrorResponse			"request too large"
//	@Router			/v1/documents/bulk [post].
func (h *DocumentsHandler) HandleBulkUpload(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if err := parseMultipart(w, r, h.DocumentService.Limits.For(p), maxBulkFiles); err != nil {
		writeServiceError(w, r, err, "bulk upload documents")
		return
	}
	meta, err := documentMetadata(r)
	if err != nil {
		writeServiceError(w, r, err, "bulk upload documents")
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeBadRequest(w, "at least one file is required", map[string]string{"files": "is required"})
		return
	}
	if len(headers) > maxBulkFiles {
		writeBadRequest(w, "too many files", map[string]string{"files": "at most " + strconv.Itoa(maxBulkFiles) + " files"})
		return
	}

	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		up, err := readUpload(fh)
		if err != nil {
			writeServiceError(w, r, err, "bulk upload documents")
			return
		}
		uploads = append(uploads, up)
	}

	res := h.DocumentService.BulkUpload(r.Context(), p, uploads, meta)
	errs := make([]intakesdk.BulkUploadError, 0, len(res.Errors))
	for _, e := range res.Errors {
		errs = append(errs, intakesdk.BulkUploadError{Filename: e.Filename, Error: e.Error})
	}
	httpx.WriteJSON(w, http.StatusOK, intakesdk.BulkUploadResponse{
		Succeeded: res.Succeeded,
		Failed:    res.Failed,
		Documents: documentResponses(res.Documents),
		Errors:    errs,
	})
}

// HandleGet godoc
//
//	@Summary		Get Document
//	@Description	Fetch document metadata.
//	@Tags			Documents
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string						true	"Document ID"
//	@Success		200	{object}	intakesdk.DocumentResponse	"document"
//	@Failure		403	{object}	intakesdk.ErrorResponse		"access denied"
//	@Failure		404	{object}	intakesdk.ErrorResponse		"document not found"
//	@Router			/v1/documents/{id} [get].
func (h *DocumentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.DocumentService.GetDocument(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "get document")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, documentResponse(d))
}

// HandleContent godoc
//
//	@Summary		Download Document
//	@Description	Stream the stored bytes with their recorded media type.
//	@Tags			Documents
//	@Produce		octet-stream
//	@Security		BearerAuth
//	@Param			id	path		string					true	"Document ID"
//	@Success		200	{file}		binary					"content"
//	@Failure		403	{object}	intakesdk.ErrorResponse	"access denied"
//	@Failure		404	{object}	intakesdk.ErrorResponse	"document not found"
//	@Failure		503	{object}	intakesdk.ErrorResponse	"document storage unavailable"
//	@Router			/v1/documents/{id}/content [get].
func (h *DocumentsHandler) HandleContent(w http.ResponseWriter, r *http.Request) {
	d, data, err := h.DocumentService.OpenDocument(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "open document")
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", d.File.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", `attachment; filename="`+safeFilename(d.File.Filename)+`"`)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleUpdate godoc
//
//	@Summary		Update Document
//	@Description	Change description, tags or visibility. Omitted fields are left unchanged.
//	@Tags			Documents
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Document ID"
//	@Param			request	body		intakesdk.DocumentUpdateRequest	true	"fields to change"
//	@Success		200		{object}	intakesdk.DocumentResponse		"updated document"
//	@Failure		403		{object}	intakesdk.ErrorResponse			"access denied"
//	@Failure		404		{object}	intakesdk.ErrorResponse			"document not found"
//	@Router			/v1/documents/{id} [patch].
func (h *DocumentsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req intakesdk.DocumentUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, "request body must be a JSON object", nil)
		return
	}

	d, err := h.DocumentService.UpdateDocument(r.Context(), principal(r), r.PathValue("id"), service.DocumentUpdate{
		Description: req.Description,
		Tags:        req.Tags,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeServiceError(w, r, err, "update document")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, documentResponse(d))
}

// HandleDelete godoc
//
//	@Summary		Delete Document
//	@Description	Remove the document's reference from its challenge, then the stored bytes and the record.
//	@Tags			Documents
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Document ID"
//	@Success		204	"deleted"
//	@Failure		403	{object}	intakesdk.ErrorResponse	"access denied"
//	@Failure		404	{object}	intakesdk.ErrorResponse	"document not found"
//	@Failure		503	{object}	intakesdk.ErrorResponse	"document storage unavailable; the record is kept"
//	@Router			/v1/documents/{id} [delete].
func (h *DocumentsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.DocumentService.DeleteDocument(r.Context(), principal(r), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, "delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// safeFilename strips characters that would break the Content-Disposition header.
func safeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == '"' || r == '\\' || r < 0x20 || r == 0x7f {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return "document"
	}
	return string(out)
}
