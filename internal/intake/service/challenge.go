package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/access"
	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/events"
	"github.com/aussiebroadwan/leadflow/internal/intake/search"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/aussiebroadwan/leadflow/pkg/idx"
	"github.com/aussiebroadwan/leadflow/pkg/slogx"
)

// ChallengeService owns challenge records and their status machine.
type ChallengeService struct {
	Store  store.Store
	Events events.Publisher
	Search search.Index
	Now    func() time.Time
}

type CreateChallengeInput struct {
	Name        string            `json:"name" validate:"required,max=200"`
	Email       string            `json:"email" validate:"required,email,max=320"`
	Answers     map[string]string `json:"answers"`
	Status      domain.ChallengeStatus
	DocumentIDs []string
}

type ChallengeQuery struct {
	Search string
	Status domain.ChallengeStatus
	UserID string
	PageRequest
}

// ChallengeEvent is the payload of every challenge.* event.
type ChallengeEvent struct {
	ChallengeID string `json:"challengeId"`
	Email       string `json:"email"`
	UserID      string `json:"userId,omitempty"`
	Status      string `json:"status"`
	PrevStatus  string `json:"previousStatus,omitempty"`
}

func challengeEvent(typ string, c domain.Challenge) events.Event {
	return events.New(typ, c.ID, ChallengeEvent{
		ChallengeID: c.ID,
		Email:       c.Email,
		UserID:      c.UserID,
		Status:      string(c.Status),
	})
}

func clock(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}

// CreateChallenge records a new submission. Status defaults to submitted
// and documents to an empty list.
func (s *ChallengeService) CreateChallenge(ctx context.Context, in CreateChallengeInput) (domain.Challenge, error) {
	if err := validateStruct(in); err != nil {
		return domain.Challenge{}, err
	}
	if in.Status == "" {
		in.Status = domain.StatusSubmitted
	}
	if !in.Status.Valid() {
		return domain.Challenge{}, ErrInvalidStatus
	}

	now := clock(s.Now)
	c := domain.Challenge{
		ID:          idx.NewAt(now).String(),
		Name:        in.Name,
		Email:       in.Email,
		Answers:     in.Answers,
		Documents:   []domain.DocumentRef{},
		Status:      in.Status,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	if c.Answers == nil {
		c.Answers = map[string]string{}
	}
	for _, id := range in.DocumentIDs {
		c.Documents = c.WithDocument(id)
	}

	if err := s.Store.Challenges().CreateChallenge(ctx, c); err != nil {
		return domain.Challenge{}, fmt.Errorf("create challenge: %w", err)
	}

	slogx.FromContext(ctx).Info("challenge created",
		slog.String("challenge_id", c.ID),
		slog.String("status", string(c.Status)),
	)
	s.index(ctx, c)
	return c, nil
}

// GetChallenge returns the challenge if p may read it. A missing challenge
// is reported as ErrAccessDenied to non-admins.
func (s *ChallengeService) GetChallenge(ctx context.Context, p domain.Principal, id string) (domain.Challenge, error) {
	c, err := s.Store.Challenges().GetChallengeByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		if domain.IsAdmin(p) {
			return domain.Challenge{}, ErrChallengeNotFound
		}
		return domain.Challenge{}, ErrAccessDenied
	}
	if err != nil {
		return domain.Challenge{}, err
	}
	if !access.Evaluate(p, access.Challenge, access.Read, c.UserID).Permits() {
		return domain.Challenge{}, ErrAccessDenied
	}
	return c, nil
}

// ListChallengesForUser pages through the challenges owned by userID, most
// recent first.
func (s *ChallengeService) ListChallengesForUser(ctx context.Context, p domain.Principal, userID string, req PageRequest, status domain.ChallengeStatus) (Page[domain.Challenge], error) {
	if userID == "" {
		return Page[domain.Challenge]{}, invalidField("userId", "is required")
	}
	if !access.Evaluate(p, access.Challenge, access.List, userID).Permits() {
		return Page[domain.Challenge]{}, ErrAccessDenied
	}
	if status != "" && !status.Valid() {
		return Page[domain.Challenge]{}, ErrInvalidStatus
	}

	items, total, err := s.Store.Challenges().ListChallenges(ctx, store.ChallengeFilter{
		UserID: userID,
		Status: status,
		Page:   req.storePage(),
	})
	if err != nil {
		return Page[domain.Challenge]{}, fmt.Errorf("list challenges: %w", err)
	}
	return newPage(items, total, req), nil
}

// ListChallenges is the admin directory: free-text search over name and
// email with optional status and owner filters.
func (s *ChallengeService) ListChallenges(ctx context.Context, p domain.Principal, q ChallengeQuery) (Page[domain.Challenge], error) {
	if access.Evaluate(p, access.Challenge, access.List, "") != access.Allow {
		return Page[domain.Challenge]{}, ErrAccessDenied
	}
	if q.Status != "" && !q.Status.Valid() {
		return Page[domain.Challenge]{}, ErrInvalidStatus
	}

	page := q.storePage()
	if q.Search != "" && s.Search != nil && s.Search.Healthy() {
		hits, err := s.Search.SearchChallenges(ctx, search.Query{
			Text:    q.Search,
			Filters: map[string]string{"status": string(q.Status), "userId": q.UserID},
			Limit:   page.Limit,
			Offset:  page.Offset,
		})
		if err == nil {
			items, _, err := s.Store.Challenges().ListChallenges(ctx, store.ChallengeFilter{IDs: hits.IDs})
			if err != nil {
				return Page[domain.Challenge]{}, fmt.Errorf("load challenges: %w", err)
			}
			items = orderByIDs(items, hits.IDs, func(c domain.Challenge) string { return c.ID })
			return newPage(items, hits.Total, q.PageRequest), nil
		}
		slogx.FromContext(ctx).Warn("challenge search failed, falling back to sql", slog.Any("error", err))
	}

	items, total, err := s.Store.Challenges().ListChallenges(ctx, store.ChallengeFilter{
		UserID: q.UserID,
		Status: q.Status,
		Search: q.Search,
		Page:   page,
	})
	if err != nil {
		return Page[domain.Challenge]{}, fmt.Errorf("list challenges: %w", err)
	}
	return newPage(items, total, q.PageRequest), nil
}

// UpdateStatus moves a challenge to status. Only admins may do this.
// verifiedAt and completedAt are stamped on first entry only.
func (s *ChallengeService) UpdateStatus(ctx context.Context, p domain.Principal, id string, status domain.ChallengeStatus, notes *string) (domain.Challenge, error) {
	// Owners may read and update their challenge but never its status.
	if access.Evaluate(p, access.Challenge, access.Update, "") != access.Allow {
		return domain.Challenge{}, ErrAccessDenied
	}
	if !status.Valid() {
		return domain.Challenge{}, ErrInvalidStatus
	}

	var (
		c    domain.Challenge
		prev domain.ChallengeStatus
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		c, err = tx.Challenges().GetChallengeByID(ctx, id)
		if err != nil {
			return notFound(err, ErrChallengeNotFound)
		}
		prev = c.Status
		if notes != nil {
			c.Notes = *notes
		}
		return transition(ctx, tx, &c, status, clock(s.Now))
	})
	if err != nil {
		return domain.Challenge{}, err
	}

	slogx.FromContext(ctx).Info("challenge status updated",
		slog.String("challenge_id", c.ID),
		slog.String("from", string(prev)),
		slog.String("to", string(c.Status)),
	)
	e := challengeEvent(events.ChallengeStatusChanged, c)
	if payload, ok := e.Data.(ChallengeEvent); ok {
		payload.PrevStatus = string(prev)
		e.Data = payload
	}
	publish(ctx, s.Events, e)
	s.index(ctx, c)
	return c, nil
}

func (s *ChallengeService) index(ctx context.Context, cs ...domain.Challenge) {
	indexChallenges(ctx, s.Search, cs...)
}

// transition applies status to c and persists it within tx.
func transition(ctx context.Context, tx store.Tx, c *domain.Challenge, status domain.ChallengeStatus, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	c.EnterStatus(status, now)
	if err := tx.Challenges().UpdateChallengeState(ctx, *c); err != nil {
		return notFound(err, ErrChallengeNotFound)
	}
	return nil
}

// appendDocumentRef adds docID to the challenge's document list unless it
// is already present.
func appendDocumentRef(ctx context.Context, tx store.Tx, challengeID, docID string, now time.Time) error {
	c, err := tx.Challenges().GetChallengeByID(ctx, challengeID)
	if err != nil {
		return notFound(err, ErrChallengeNotFound)
	}
	if c.HasDocument(docID) {
		return nil
	}
	return tx.Challenges().SetDocumentRefs(ctx, challengeID, c.WithDocument(docID), now)
}

// removeDocumentRef drops docID from the challenge's document list. A
// missing reference is a no-op.
func removeDocumentRef(ctx context.Context, tx store.Tx, challengeID, docID string, now time.Time) error {
	c, err := tx.Challenges().GetChallengeByID(ctx, challengeID)
	if err != nil {
		return notFound(err, ErrChallengeNotFound)
	}
	if !c.HasDocument(docID) {
		return nil
	}
	return tx.Challenges().SetDocumentRefs(ctx, challengeID, c.WithoutDocument(docID), now)
}

func indexChallenges(ctx context.Context, index search.Index, cs ...domain.Challenge) {
	if index == nil || !index.Healthy() || len(cs) == 0 {
		return
	}
	records := make([]search.ChallengeRecord, len(cs))
	for i, c := range cs {
		records[i] = search.ChallengeRecordOf(c)
	}
	if err := index.IndexChallenges(ctx, records...); err != nil {
		slogx.FromContext(ctx).Warn("failed to index challenges", slog.Any("error", err))
	}
}

func indexUsers(ctx context.Context, index search.Index, us ...domain.User) {
	if index == nil || !index.Healthy() || len(us) == 0 {
		return
	}
	records := make([]search.UserRecord, len(us))
	for i, u := range us {
		records[i] = search.UserRecordOf(u)
	}
	if err := index.IndexUsers(ctx, records...); err != nil {
		slogx.FromContext(ctx).Warn("failed to index users", slog.Any("error", err))
	}
}
