package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/pkg/httpx"
	"github.com/aussiebroadwan/leadflow/pkg/intakesdk"
)

type IntakeHandler struct {
	IntakeService *service.IntakeService
	Limits        service.UploadLimits
}

// ServeHTTP godoc
//
//	@Summary		Submit Intake Form
//	@Description	Accept an anonymous submission: store the file, record the challenge and resolve the submitter's identity.
//	@Description	A matching user links the challenge immediately and redirects to login; otherwise the redirect points at the claim page.
//	@Tags			Intake
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			Idempotency-Key	header		string						false	"Makes retries of the same submission safe"
//	@Param			name			formData	string						true	"Submitter name"
//	@Param			email			formData	string						true	"Submitter email"
//	@Param			answers			formData	string						false	"Form answers as a JSON object of strings"
//	@Param			file			formData	file						true	"Supporting document"
//	@Success		201				{object}	intakesdk.SubmitResponse	"success, challengeId, documentId, redirectTarget"
//	@Failure		400				{object}	intakesdk.SubmitResponse	"success=false, error, fields"
//	@Failure		409				{object}	intakesdk.SubmitResponse	"submission in progress"
//	@Failure		413				{object}	intakesdk.SubmitResponse	"file too large"
//	@Failure		415				{object}	intakesdk.SubmitResponse	"file type not supported"
//	@Failure		500				{object}	intakesdk.SubmitResponse	"success=false, error, documentId"
//	@Failure		503				{object}	intakesdk.SubmitResponse	"document storage unavailable"
//	@Router			/v1/intake/submissions [post].
func (h *IntakeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := parseMultipart(w, r, h.Limits.For(domain.Anonymous{}), 1); err != nil {
		h.writeFailure(w, service.SubmitResult{Error: service.CallerMessage(err)}, err)
		return
	}

	req := service.SubmitRequest{
		Name:  strings.TrimSpace(r.FormValue("name")),
		Email: strings.TrimSpace(r.FormValue("email")),
	}
	if raw := r.FormValue("answers"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Answers); err != nil {
			err := &service.ValidationError{Fields: map[string]string{"answers": "must be a JSON object of strings"}}
			h.writeFailure(w, service.SubmitResult{Error: service.CallerMessage(err)}, err)
			return
		}
	}

	file, err := formFile(r, "file")
	if err != nil {
		h.writeFailure(w, service.SubmitResult{Error: "the file could not be read"}, err)
		return
	}
	req.File = file

	res, err := h.IntakeService.Submit(ctx, req, r.Header.Get(intakesdk.IdempotencyKeyHeader))
	if err != nil {
		h.writeFailure(w, res, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, submitResponse(res))
}

func (h *IntakeHandler) writeFailure(w http.ResponseWriter, res service.SubmitResult, err error) {
	status, code := classify(err)
	body := submitResponse(res)
	body.Success = false
	body.Code = code
	body.Fields = fieldErrors(err)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	httpx.WriteJSON(w, status, body)
}

func submitResponse(res service.SubmitResult) intakesdk.SubmitResponse {
	return intakesdk.SubmitResponse{
		Success:        res.Success,
		ChallengeID:    res.ChallengeID,
		DocumentID:     res.DocumentID,
		RedirectTarget: res.RedirectTarget,
		Error:          res.Error,
	}
}
