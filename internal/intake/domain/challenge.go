package domain

import (
	"slices"
	"time"
)

type ChallengeStatus string

const (
	StatusSubmitted           ChallengeStatus = "submitted"
	StatusPendingVerification ChallengeStatus = "pending_verification"
	StatusVerified            ChallengeStatus = "verified"
	StatusInProgress          ChallengeStatus = "in_progress"
	StatusCompleted           ChallengeStatus = "completed"
	StatusRejected            ChallengeStatus = "rejected"
)

var challengeStatuses = []ChallengeStatus{
	StatusSubmitted,
	StatusPendingVerification,
	StatusVerified,
	StatusInProgress,
	StatusCompleted,
	StatusRejected,
}

func (s ChallengeStatus) Valid() bool { return slices.Contains(challengeStatuses, s) }

// ChallengeStatuses lists every status in lifecycle order.
func ChallengeStatuses() []ChallengeStatus { return slices.Clone(challengeStatuses) }

// DocumentRef is one entry of a challenge's document list.
type DocumentRef struct {
	DocumentID string `json:"documentId"`
}

// Challenge is a prospect's submission, recorded before any account exists.
type Challenge struct {
	ID        string
	Name      string
	Email     string
	Answers   map[string]string
	Documents []DocumentRef
	UserID    string // empty until linked or claimed
	Status    ChallengeStatus
	Notes     string

	SubmittedAt time.Time
	VerifiedAt  *time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// HasDocument reports whether docID is referenced.
func (c Challenge) HasDocument(docID string) bool {
	return slices.ContainsFunc(c.Documents, func(r DocumentRef) bool { return r.DocumentID == docID })
}

// WithDocument returns the refs with docID appended, unless already present.
func (c Challenge) WithDocument(docID string) []DocumentRef {
	if c.HasDocument(docID) {
		return slices.Clone(c.Documents)
	}
	return append(slices.Clone(c.Documents), DocumentRef{DocumentID: docID})
}

// WithoutDocument returns the refs with every occurrence of docID removed.
func (c Challenge) WithoutDocument(docID string) []DocumentRef {
	return slices.DeleteFunc(slices.Clone(c.Documents), func(r DocumentRef) bool { return r.DocumentID == docID })
}

// EnterStatus moves c to status, stamping verifiedAt and completedAt the
// first time those states are entered.
func (c *Challenge) EnterStatus(status ChallengeStatus, now time.Time) {
	c.Status = status
	switch status {
	case StatusVerified:
		if c.VerifiedAt == nil {
			c.VerifiedAt = &now
		}
	case StatusCompleted:
		if c.CompletedAt == nil {
			c.CompletedAt = &now
		}
	}
	c.UpdatedAt = now
}
