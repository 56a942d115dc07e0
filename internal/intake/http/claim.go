package http

import (
	"net/http"

	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/pkg/httpx"
	"github.com/aussiebroadwan/leadflow/pkg/intakesdk"
)

type ClaimHandler struct {
	IdentityService *service.IdentityService
}

// ServeHTTP godoc
//
//	@Summary		Claim Challenge
//	@Description	Create the account for an unclaimed challenge with the submitter's chosen password.
//	@Description	The username is generated from the submitter's name; the challenge becomes verified and its documents move to the new user.
//	@Tags			Intake
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Challenge ID"
//	@Param			request	body		intakesdk.ClaimRequest	true	"password"
//	@Success		201		{object}	intakesdk.ClaimResponse	"user, challenge, redirectTarget"
//	@Failure		400		{object}	intakesdk.ErrorResponse	"password does not meet the policy"
//	@Failure		404		{object}	intakesdk.ErrorResponse	"challenge not found"
//	@Failure		409		{object}	intakesdk.ErrorResponse	"already_claimed or email_in_use"
//	@Failure		500		{object}	intakesdk.ErrorResponse	"error, error_description"
//	@Router			/v1/challenges/{id}/claim [post].
func (h *ClaimHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req intakesdk.ClaimRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, "request body must be a JSON object with a password", nil)
		return
	}

	res, err := h.IdentityService.ClaimChallenge(r.Context(), r.PathValue("id"), req.Password)
	if err != nil {
		writeServiceError(w, r, err, "claim challenge")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, intakesdk.ClaimResponse{
		User:           userResponse(res.User),
		Challenge:      challengeResponse(res.Challenge),
		RedirectTarget: res.RedirectTarget,
	})
}
