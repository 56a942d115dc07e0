package intakesdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes returned by the service.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeInvalidToken         = "invalid_token"
	ErrorCodeAccessDenied         = "access_denied"
	ErrorCodeNotFound             = "not_found"
	ErrorCodeAlreadyClaimed       = "already_claimed"
	ErrorCodeEmailInUse           = "email_in_use"
	ErrorCodeUsernameTaken        = "username_taken"
	ErrorCodeSubmissionInProgress = "submission_in_progress"
	ErrorCodePayloadTooLarge      = "payload_too_large"
	ErrorCodeUnsupportedMediaType = "unsupported_media_type"
	ErrorCodeStoreUnavailable     = "store_unavailable"
	ErrorCodeRateLimited          = "rate_limit_exceeded"
	ErrorCodeServerError          = "server_error"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
	Fields      map[string]string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Description)
}

// Temporary reports whether the request may succeed if retried.
func (e *APIError) Temporary() bool {
	return retryableStatus(e.StatusCode)
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// parseErrorResponse builds an APIError from an error body. Bodies that are
// not JSON still produce an error carrying the status.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Code: ErrorCodeServerError}

	// Intake failures answer with a SubmitResponse, recognisable by its
	// success flag.
	var sub struct {
		Success *bool `json:"success"`
		SubmitResponse
	}
	if err := json.Unmarshal(body, &sub); err == nil && sub.Success != nil {
		apiErr.Code = sub.Code
		if apiErr.Code == "" {
			apiErr.Code = codeForStatus(resp.StatusCode)
		}
		apiErr.Description = sub.Error
		apiErr.Fields = sub.Fields
		return apiErr
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Error
		apiErr.Description = errResp.ErrorDescription
		apiErr.Fields = errResp.Fields
		return apiErr
	}

	apiErr.Code = codeForStatus(resp.StatusCode)
	apiErr.Description = http.StatusText(resp.StatusCode)
	return apiErr
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrorCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrorCodeInvalidToken
	case http.StatusForbidden:
		return ErrorCodeAccessDenied
	case http.StatusNotFound:
		return ErrorCodeNotFound
	case http.StatusRequestEntityTooLarge:
		return ErrorCodePayloadTooLarge
	case http.StatusUnsupportedMediaType:
		return ErrorCodeUnsupportedMediaType
	case http.StatusTooManyRequests:
		return ErrorCodeRateLimited
	case http.StatusServiceUnavailable:
		return ErrorCodeStoreUnavailable
	}
	return ErrorCodeServerError
}
