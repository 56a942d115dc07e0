package domain

import (
	"strings"
	"time"
)

type DocumentType string

const (
	DocumentInitialSubmission DocumentType = "initial-submission"
	DocumentCompletion        DocumentType = "completion-document"
	DocumentSupporting        DocumentType = "supporting-document"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentInitialSubmission, DocumentCompletion, DocumentSupporting:
		return true
	}
	return false
}

// File is the stored object behind a document.
type File struct {
	Filename string
	MimeType string
	Size     int64
	Locator  string
}

type Document struct {
	ID           string
	File         File
	DocumentType DocumentType
	Description  string
	Tags         []string

	RelatedUserID      string
	RelatedChallengeID string
	IsPublic           bool
	UploadedBy         string // empty for anonymous uploads

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnerID resolves the document's owner for access checks: the related
// user, else the uploader, else challengeOwner (the owning user of the
// related challenge, looked up by the caller).
func (d Document) OwnerID(challengeOwner string) string {
	switch {
	case d.RelatedUserID != "":
		return d.RelatedUserID
	case d.UploadedBy != "":
		return d.UploadedBy
	default:
		return challengeOwner
	}
}

// NormalizeTags trims, drops empties and de-duplicates, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
