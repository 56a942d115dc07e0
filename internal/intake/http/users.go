package http

import (
	"net/http"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/pkg/httpx"
	"github.com/aussiebroadwan/leadflow/pkg/intakesdk"
)

type UsersHandler struct {
	UserService     *service.UserService
	DocumentService *service.DocumentService
}

// HandleMe godoc
//
//	@Summary		Current User
//	@Description	Fetch the caller's own profile.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	intakesdk.UserResponse	"profile"
//	@Failure		401	{object}	intakesdk.ErrorResponse	"missing or invalid token"
//	@Failure		404	{object}	intakesdk.ErrorResponse	"no profile for this subject"
//	@Router			/v1/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	u, err := h.UserService.GetUser(r.Context(), p, domain.PrincipalID(p))
	if err != nil {
		writeServiceError(w, r, err, "get user")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(u))
}

// HandleGet godoc
//
//	@Summary		Get User
//	@Description	Fetch a profile. Clients may only read their own.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"User ID"
//	@Success		200	{object}	intakesdk.UserResponse	"profile"
//	@Failure		403	{object}	intakesdk.ErrorResponse	"access denied"
//	@Failure		404	{object}	intakesdk.ErrorResponse	"user not found"
//	@Router			/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetUser(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "get user")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(u))
}

// HandleUpdate godoc
//
//	@Summary		Update User
//	@Description	Change profile fields. A role change from a non-admin is ignored; the other fields still apply.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		intakesdk.UserUpdateRequest	true	"fields to change"
//	@Success		200		{object}	intakesdk.UserResponse		"updated profile"
//	@Failure		400		{object}	intakesdk.ErrorResponse		"invalid fields"
//	@Failure		403		{object}	intakesdk.ErrorResponse		"access denied"
//	@Failure		404		{object}	intakesdk.ErrorResponse		"user not found"
//	@Router			/v1/users/{id} [patch].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req intakesdk.UserUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, "request body must be a JSON object", nil)
		return
	}

	upd := service.UserUpdate{
		Name:         req.Name,
		Phone:        req.Phone,
		Address:      req.Address,
		AnnualIncome: req.AnnualIncome,
	}
	if req.EmploymentStatus != nil {
		es := domain.EmploymentStatus(*req.EmploymentStatus)
		upd.EmploymentStatus = &es
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		upd.Role = &role
	}

	u, err := h.UserService.UpdateUser(r.Context(), principal(r), r.PathValue("id"), upd)
	if err != nil {
		writeServiceError(w, r, err, "update user")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(u))
}

// HandleDocuments godoc
//
//	@Summary		List User Documents
//	@Description	List the documents related to or uploaded by a user.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string						true	"User ID"
//	@Success		200	{array}		intakesdk.DocumentResponse	"documents"
//	@Failure		403	{object}	intakesdk.ErrorResponse		"access denied"
//	@Router			/v1/users/{id}/documents [get].
func (h *UsersHandler) HandleDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.DocumentService.ListDocumentsByUser(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "list user documents")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, documentResponses(docs))
}
