package http

import (
	"net/http"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/pkg/httpx"
	"github.com/aussiebroadwan/leadflow/pkg/intakesdk"
)

type ChallengesHandler struct {
	ChallengeService *service.ChallengeService
	DocumentService  *service.DocumentService
}

// HandleList godoc
//
//	@Summary		List Challenges
//	@Description	List the caller's challenges, most recent first. Admins may pass userId to list another user's challenges.
//	@Tags			Challenges
//	@Produce		json
//	@Security		BearerAuth
//	@Param			userId		query		string													false	"Owner (admin only)"
//	@Param			status		query		string													false	"Status filter"
//	@Param			page		query		int														false	"Page number, from 1"
//	@Param			pageSize	query		int														false	"Page size, at most 100"
//	@Success		200			{object}	intakesdk.ListResponse[intakesdk.ChallengeResponse]		"items, totalCount, page, totalPages"
//	@Failure		400			{object}	intakesdk.ErrorResponse									"invalid status"
//	@Failure		401			{object}	intakesdk.ErrorResponse									"missing or invalid token"
//	@Failure		403			{object}	intakesdk.ErrorResponse									"access denied"
//	@Router			/v1/challenges [get].
func (h *ChallengesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = domain.PrincipalID(p)
	}

	page, err := h.ChallengeService.ListChallengesForUser(r.Context(), p, userID, pageRequest(r),
		domain.ChallengeStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeServiceError(w, r, err, "list challenges")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse(page, challengeResponse))
}

// HandleGet godoc
//
//	@Summary		Get Challenge
//	@Description	Fetch one challenge. Clients may only read their own.
//	@Tags			Challenges
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string						true	"Challenge ID"
//	@Success		200	{object}	intakesdk.ChallengeResponse	"challenge"
//	@Failure		403	{object}	intakesdk.ErrorResponse		"access denied"
//	@Failure		404	{object}	intakesdk.ErrorResponse		"challenge not found"
//	@Router			/v1/challenges/{id} [get].
func (h *ChallengesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.ChallengeService.GetChallenge(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "get challenge")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, challengeResponse(c))
}

// HandleUpdateStatus godoc
//
//	@Summary		Update Challenge Status
//	@Description	Move a challenge to a new status and optionally replace its notes. Completion is stamped once.
//	@Tags			Challenges
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Challenge ID"
//	@Param			request	body		intakesdk.StatusUpdateRequest	true	"status, notes"
//	@Success		200		{object}	intakesdk.ChallengeResponse		"updated challenge"
//	@Failure		400		{object}	intakesdk.ErrorResponse			"invalid status"
//	@Failure		403		{object}	intakesdk.ErrorResponse			"admin role required"
//	@Failure		404		{object}	intakesdk.ErrorResponse			"challenge not found"
//	@Router			/v1/challenges/{id}/status [patch].
func (h *ChallengesHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req intakesdk.StatusUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, "request body must be a JSON object with a status", nil)
		return
	}

	c, err := h.ChallengeService.UpdateStatus(r.Context(), principal(r), r.PathValue("id"),
		domain.ChallengeStatus(req.Status), req.Notes)
	if err != nil {
		writeServiceError(w, r, err, "update challenge status")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, challengeResponse(c))
}

// HandleDocuments godoc
//
//	@Summary		List Challenge Documents
//	@Description	List the documents referenced by a challenge, in reference order.
//	@Tags			Challenges
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string						true	"Challenge ID"
//	@Success		200	{array}		intakesdk.DocumentResponse	"documents"
//	@Failure		403	{object}	intakesdk.ErrorResponse		"access denied"
//	@Failure		404	{object}	intakesdk.ErrorResponse		"challenge not found"
//	@Router			/v1/challenges/{id}/documents [get].
func (h *ChallengesHandler) HandleDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.DocumentService.ListDocumentsByChallenge(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "list challenge documents")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, documentResponses(docs))
}
