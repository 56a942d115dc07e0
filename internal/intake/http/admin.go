package http

import (
	"net/http"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/pkg/httpx"
	"github.com/aussiebroadwan/leadflow/pkg/intakesdk"
)

type AdminHandler struct {
	UserService        *service.UserService
	ChallengeService   *service.ChallengeService
	OrphanAuditService *service.OrphanAuditService
}

// HandleListUsers godoc
//
//	@Summary		List Users
//	@Description	Page through users, optionally searching email, username and name.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			q			query		string												false	"Free-text search"
//	@Param			role		query		string												false	"admin or client"
//	@Param			page		query		int													false	"Page number, from 1"
//	@Param			pageSize	query		int													false	"Page size, at most 100"
//	@Success		200			{object}	intakesdk.ListResponse[intakesdk.UserResponse]		"items, totalCount, page, totalPages"
//	@Failure		403			{object}	intakesdk.ErrorResponse								"admin role required"
//	@Router			/v1/admin/users [get].
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.UserService.ListUsers(r.Context(), principal(r), service.UserQuery{
		Search:      q.Get("q"),
		Role:        domain.Role(q.Get("role")),
		PageRequest: pageRequest(r),
	})
	if err != nil {
		writeServiceError(w, r, err, "list users")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse(page, userResponse))
}

// HandleCreateUser godoc
//
//	@Summary		Create User
//	@Description	Create an account directly, e.g. for staff.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		intakesdk.CreateUserRequest	true	"email, username, password, role"
//	@Success		201		{object}	intakesdk.UserResponse		"created user"
//	@Failure		400		{object}	intakesdk.ErrorResponse		"invalid fields"
//	@Failure		403		{object}	intakesdk.ErrorResponse		"admin role required"
//	@Failure		409		{object}	intakesdk.ErrorResponse		"email_in_use or username_taken"
//	@Router			/v1/admin/users [post].
func (h *AdminHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req intakesdk.CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, "request body must be a JSON object", nil)
		return
	}

	u, err := h.UserService.CreateUser(r.Context(), principal(r), service.NewUser{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		writeServiceError(w, r, err, "create user")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, userResponse(u))
}

// HandleListChallenges godoc
//
//	@Summary		Search Challenges
//	@Description	Page through every challenge with free-text search over name and email.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			q			query		string												false	"Free-text search"
//	@Param			status		query		string												false	"Status filter"
//	@Param			userId		query		string												false	"Owner filter"
//	@Param			page		query		int													false	"Page number, from 1"
//	@Param			pageSize	query		int													false	"Page size, at most 100"
//	@Success		200			{object}	intakesdk.ListResponse[intakesdk.ChallengeResponse]	"items, totalCount, page, totalPages"
//	@Failure		400			{object}	intakesdk.ErrorResponse								"invalid status"
//	@Failure		403			{object}	intakesdk.ErrorResponse								"admin role required"
//	@Router			/v1/admin/challenges [get].
func (h *AdminHandler) HandleListChallenges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.ChallengeService.ListChallenges(r.Context(), principal(r), service.ChallengeQuery{
		Search:      q.Get("q"),
		Status:      domain.ChallengeStatus(q.Get("status")),
		UserID:      q.Get("userId"),
		PageRequest: pageRequest(r),
	})
	if err != nil {
		writeServiceError(w, r, err, "list challenges")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse(page, challengeResponse))
}

// HandleOrphans godoc
//
//	@Summary		Orphaned Documents
//	@Description	List documents older than the grace period that no challenge references.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	intakesdk.OrphanReport	"count, documents"
//	@Failure		403	{object}	intakesdk.ErrorResponse	"admin role required"
//	@Router			/v1/admin/orphans [get].
func (h *AdminHandler) HandleOrphans(w http.ResponseWriter, r *http.Request) {
	docs, err := h.OrphanAuditService.Audit(r.Context(), principal(r))
	if err != nil {
		writeServiceError(w, r, err, "audit orphaned documents")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, intakesdk.OrphanReport{
		Count:     len(docs),
		Documents: documentResponses(docs),
	})
}
