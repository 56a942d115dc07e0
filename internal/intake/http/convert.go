package http

import (
	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/pkg/intakesdk"
)

func challengeResponse(c domain.Challenge) intakesdk.ChallengeResponse {
	refs := make([]intakesdk.DocumentRef, 0, len(c.Documents))
	for _, ref := range c.Documents {
		refs = append(refs, intakesdk.DocumentRef{DocumentID: ref.DocumentID})
	}
	answers := c.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	return intakesdk.ChallengeResponse{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Answers:     answers,
		Documents:   refs,
		UserID:      c.UserID,
		Status:      string(c.Status),
		Notes:       c.Notes,
		SubmittedAt: c.SubmittedAt,
		VerifiedAt:  c.VerifiedAt,
		CompletedAt: c.CompletedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func documentResponse(d domain.Document) intakesdk.DocumentResponse {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return intakesdk.DocumentResponse{
		ID:                 d.ID,
		Filename:           d.File.Filename,
		MimeType:           d.File.MimeType,
		Size:               d.File.Size,
		DocumentType:       string(d.DocumentType),
		Description:        d.Description,
		Tags:               tags,
		RelatedUserID:      d.RelatedUserID,
		RelatedChallengeID: d.RelatedChallengeID,
		IsPublic:           d.IsPublic,
		UploadedBy:         d.UploadedBy,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func documentResponses(docs []domain.Document) []intakesdk.DocumentResponse {
	out := make([]intakesdk.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentResponse(d))
	}
	return out
}

func userResponse(u domain.User) intakesdk.UserResponse {
	return intakesdk.UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		Username:         u.Username,
		Role:             string(u.Role),
		Name:             u.Name,
		Phone:            u.Phone,
		Address:          u.Address,
		EmploymentStatus: string(u.EmploymentStatus),
		AnnualIncome:     u.AnnualIncome,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func listResponse[T, R any](p service.Page[T], conv func(T) R) intakesdk.ListResponse[R] {
	items := make([]R, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, conv(it))
	}
	return intakesdk.ListResponse[R]{
		Items:      items,
		TotalCount: p.TotalCount,
		Page:       p.Page,
		TotalPages: p.TotalPages,
	}
}
