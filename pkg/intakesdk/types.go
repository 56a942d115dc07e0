package intakesdk

import "time"

// IdempotencyKeyHeader names the header that makes intake submissions safe
// to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the JSON body of every non-2xx response except intake
// submissions, which answer with a SubmitResponse.
type ErrorResponse struct {
	// Error is the machine readable code (e.g. "invalid_request", "already_claimed")
	Error string `json:"error"`

	// ErrorDescription is a human readable description of the error
	ErrorDescription string `json:"error_description,omitempty"`

	// Fields holds per-field validation messages keyed by JSON field name
	Fields map[string]string `json:"fields,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	// Status is "ok" or "degraded"
	Status string `json:"status"`

	// Uptime is the service uptime as a duration string (e.g. "1h2m3s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks is only populated by /readyz
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Search   string `json:"search"`
	Events   string `json:"events"`
}

// ============================================================================
// Intake Types
// ============================================================================

// File is one uploaded file.
type File struct {
	Name     string
	MimeType string // optional; detected by the service when empty
	Data     []byte
}

// SubmitRequest is the anonymous intake form.
type SubmitRequest struct {
	Name    string
	Email   string
	Answers map[string]string
	File    *File

	// IdempotencyKey is generated when empty.
	IdempotencyKey string
}

// SubmitResponse is the outcome of an intake submission. On failure Success
// is false, Error holds a message safe to show the submitter and DocumentID
// is set if the file was stored before the failure. Code is the machine
// readable error code of a failure.
type SubmitResponse struct {
	Success        bool              `json:"success"`
	ChallengeID    string            `json:"challengeId,omitempty"`
	DocumentID     string            `json:"documentId,omitempty"`
	RedirectTarget string            `json:"redirectTarget,omitempty"`
	Error          string            `json:"error,omitempty"`
	Code           string            `json:"code,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
}

// ClaimRequest sets the password for the account created from a challenge.
type ClaimRequest struct {
	Password string `json:"password"`
}

// ClaimResponse is returned by a successful claim.
type ClaimResponse struct {
	User           UserResponse      `json:"user"`
	Challenge      ChallengeResponse `json:"challenge"`
	RedirectTarget string            `json:"redirectTarget"`
}

// ============================================================================
// Resource Types
// ============================================================================

// DocumentRef is one entry of a challenge's document list.
type DocumentRef struct {
	DocumentID string `json:"documentId"`
}

// ChallengeResponse is a recorded submission.
type ChallengeResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Answers     map[string]string `json:"answers"`
	Documents   []DocumentRef     `json:"documents"`
	UserID      string            `json:"userId,omitempty"`
	Status      string            `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	SubmittedAt time.Time         `json:"submittedAt"`
	VerifiedAt  *time.Time        `json:"verifiedAt,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// StatusUpdateRequest moves a challenge to a new status.
type StatusUpdateRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

// DocumentResponse is a stored document's metadata.
type DocumentResponse struct {
	ID                 string    `json:"id"`
	Filename           string    `json:"filename"`
	MimeType           string    `json:"mimeType"`
	Size               int64     `json:"size"`
	DocumentType       string    `json:"documentType"`
	Description        string    `json:"description,omitempty"`
	Tags               []string  `json:"tags"`
	RelatedUserID      string    `json:"relatedUserId,omitempty"`
	RelatedChallengeID string    `json:"relatedChallengeId,omitempty"`
	IsPublic           bool      `json:"isPublic"`
	UploadedBy         string    `json:"uploadedBy,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// DocumentUpdateRequest changes document metadata. Nil fields are left
// unchanged.
type DocumentUpdateRequest struct {
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	IsPublic    *bool     `json:"isPublic,omitempty"`
}

// BulkUploadResponse reports a multi-file upload. Failed files do not abort
// the others.
type BulkUploadResponse struct {
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Documents []DocumentResponse `json:"documents"`
	Errors    []BulkUploadError  `json:"errors"`
}

// BulkUploadError names one rejected file.
type BulkUploadError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// UserResponse is a user profile. Password hashes never leave the service.
type UserResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	Role             string    `json:"role"`
	Name             string    `json:"name,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Address          string    `json:"address,omitempty"`
	EmploymentStatus string    `json:"employmentStatus,omitempty"`
	AnnualIncome     *int64    `json:"annualIncome,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// UserUpdateRequest changes profile fields. Nil fields are left unchanged;
// Role is ignored unless the caller is an admin.
type UserUpdateRequest struct {
	Name             *string `json:"name,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Address          *string `json:"address,omitempty"`
	EmploymentStatus *string `json:"employmentStatus,omitempty"`
	AnnualIncome     *int64  `json:"annualIncome,omitempty"`
	Role             *string `json:"role,omitempty"`
}

// CreateUserRequest is the admin user creation body.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// ListResponse is one page of a paginated listing.
type ListResponse[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

// OrphanReport lists documents that have no challenge referencing them.
type OrphanReport struct {
	Count     int                `json:"count"`
	Documents []DocumentResponse `json:"documents"`
}
