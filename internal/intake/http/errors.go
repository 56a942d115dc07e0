package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/pkg/httpx"
	"github.com/aussiebroadwan/leadflow/pkg/intakesdk"
	"github.com/aussiebroadwan/leadflow/pkg/slogx"
)

// classify maps a service error onto an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest, intakesdk.ErrorCodeInvalidRequest
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden, intakesdk.ErrorCodeAccessDenied
	case errors.Is(err, service.ErrChallengeNotFound),
		errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, intakesdk.ErrorCodeNotFound
	case errors.Is(err, service.ErrAlreadyClaimed):
		return http.StatusConflict, intakesdk.ErrorCodeAlreadyClaimed
	case errors.Is(err, service.ErrEmailInUse):
		return http.StatusConflict, intakesdk.ErrorCodeEmailInUse
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict, intakesdk.ErrorCodeUsernameTaken
	case errors.Is(err, service.ErrSubmissionInProgress):
		return http.StatusConflict, intakesdk.ErrorCodeSubmissionInProgress
	case errors.Is(err, service.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, intakesdk.ErrorCodePayloadTooLarge
	case errors.Is(err, service.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, intakesdk.ErrorCodeUnsupportedMediaType
	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, intakesdk.ErrorCodeStoreUnavailable
	}
	return http.StatusInternalServerError, intakesdk.ErrorCodeServerError
}

// fieldErrors returns the per-field messages of a validation failure.
func fieldErrors(err error) map[string]string {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// writeServiceError writes err as an ErrorResponse. Server-side failures are
// logged and described only by action.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status, code := classify(err)
	body := intakesdk.ErrorResponse{
		Error:            code,
		ErrorDescription: err.Error(),
		Fields:           fieldErrors(err),
	}

	log := slogx.FromContext(r.Context())
	switch {
	case status == http.StatusServiceUnavailable:
		log.Warn("failed to "+action, slog.Any("error", err))
		body.ErrorDescription = "document storage is temporarily unavailable"
		w.Header().Set("Retry-After", "1")
	case status >= http.StatusInternalServerError:
		log.Error("failed to "+action, slog.Any("error", err))
		body.ErrorDescription = "failed to " + action
	}

	httpx.WriteJSON(w, status, body)
}

func writeBadRequest(w http.ResponseWriter, desc string, fields map[string]string) {
	httpx.WriteJSON(w, http.StatusBadRequest, intakesdk.ErrorResponse{
		Error:            intakesdk.ErrorCodeInvalidRequest,
		ErrorDescription: desc,
		Fields:           fields,
	})
}
