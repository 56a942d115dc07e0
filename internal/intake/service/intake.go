package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/events"
	"github.com/aussiebroadwan/leadflow/internal/intake/idempotency"
	"github.com/aussiebroadwan/leadflow/pkg/slogx"
)

var errUnreadableResult = errors.New("idempotency: cached result cannot be decoded")

// IntakeService runs an anonymous submission end to end: store the file,
// record the challenge, link the two and resolve the submitter's identity.
type IntakeService struct {
	Documents   *DocumentService
	Challenges  *ChallengeService
	Identity    *IdentityService
	Idempotency idempotency.Store
	Events      events.Publisher
}

type SubmitRequest struct {
	Name    string            `json:"name" validate:"required,max=200"`
	Email   string            `json:"email" validate:"required,email,max=320"`
	Answers map[string]string `json:"answers"`
	File    *Upload           `json:"-"`
}

type SubmitResult struct {
	Success        bool   `json:"success"`
	ChallengeID    string `json:"challengeId,omitempty"`
	DocumentID     string `json:"documentId,omitempty"`
	RedirectTarget string `json:"redirectTarget,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Submit processes one submission. The result is always populated; on
// failure Success is false, Error holds caller-safe text and DocumentID is
// set if the upload got that far. The returned error carries the cause.
//
// A non-empty idempotencyKey makes retries safe: a completed submission is
// replayed and a concurrent one is rejected with ErrSubmissionInProgress.
func (s *IntakeService) Submit(ctx context.Context, req SubmitRequest, idempotencyKey string) (SubmitResult, error) {
	log := slogx.FromContext(ctx)

	if idempotencyKey == "" || s.Idempotency == nil {
		return s.submit(ctx, req)
	}

	cached, replay, err := s.reserve(ctx, idempotencyKey)
	switch {
	case errors.Is(err, idempotency.ErrInProgress):
		return SubmitResult{Error: "a submission with this key is already in progress"}, ErrSubmissionInProgress
	case err != nil:
		log.Warn("idempotency store unavailable, processing without replay protection", slog.Any("error", err))
		return s.submit(ctx, req)
	case replay:
		log.Info("replaying completed submission", slog.String("challenge_id", cached.ChallengeID))
		return cached, nil
	}

	res, err := s.submit(ctx, req)
	if err != nil {
		if rerr := s.Idempotency.Release(context.WithoutCancel(ctx), idempotencyKey); rerr != nil {
			log.Warn("failed to release idempotency key", slog.Any("error", rerr))
		}
		return res, err
	}
	if raw, merr := json.Marshal(res); merr == nil {
		if cerr := s.Idempotency.Complete(context.WithoutCancel(ctx), idempotencyKey, raw); cerr != nil {
			log.Warn("failed to record completed submission", slog.Any("error", cerr))
		}
	}
	return res, nil
}

// reserve begins key. A completed result that cannot be decoded is released
// and the key reserved again, so this request runs under a reservation like
// any first attempt.
func (s *IntakeService) reserve(ctx context.Context, key string) (SubmitResult, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		cached, replay, err := s.Idempotency.Begin(ctx, key)
		if err != nil || !replay {
			return SubmitResult{}, false, err
		}
		var res SubmitResult
		if err := json.Unmarshal(cached, &res); err == nil {
			return res, true, nil
		}
		slogx.FromContext(ctx).Warn("discarding unreadable cached submission")
		if err := s.Idempotency.Release(ctx, key); err != nil {
			return SubmitResult{}, false, fmt.Errorf("release unreadable result: %w", err)
		}
	}
	return SubmitResult{}, false, errUnreadableResult
}

func (s *IntakeService) submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	log := slogx.FromContext(ctx)
	var res SubmitResult

	fail := func(stage string, err error) (SubmitResult, error) {
		log.Error("intake submission failed",
			slog.String("stage", stage),
			slog.String("document_id", res.DocumentID),
			slog.String("challenge_id", res.ChallengeID),
			slog.Any("error", err),
		)
		res.Success = false
		res.RedirectTarget = ""
		res.Error = CallerMessage(err)
		return res, err
	}

	if err := validateStruct(req); err != nil {
		return fail("validate", err)
	}
	if req.File == nil || len(req.File.Data) == 0 {
		return fail("validate", invalidField("file", "is required"))
	}

	doc, err := s.Documents.UploadDocument(ctx, domain.Anonymous{}, *req.File, DocumentMetadata{
		DocumentType: domain.DocumentInitialSubmission,
	})
	if err != nil {
		return fail("upload", err)
	}
	res.DocumentID = doc.ID

	c, err := s.Challenges.CreateChallenge(ctx, CreateChallengeInput{
		Name:        req.Name,
		Email:       req.Email,
		Answers:     req.Answers,
		Status:      domain.StatusPendingVerification,
		DocumentIDs: []string{doc.ID},
	})
	if err != nil {
		return fail("create_challenge", err)
	}
	res.ChallengeID = c.ID

	if err := s.Documents.linkToChallenge(ctx, doc.ID, c.ID); err != nil {
		return fail("link_document", err)
	}
	publish(ctx, s.Events, challengeEvent(events.ChallengeSubmitted, c))

	resolution, err := s.Identity.Resolve(ctx, c.ID)
	if err != nil {
		return fail("resolve_identity", err)
	}

	res.Success = true
	res.RedirectTarget = resolution.RedirectTarget
	log.Info("intake submission accepted",
		slog.String("challenge_id", c.ID),
		slog.String("document_id", doc.ID),
		slog.String("status", string(resolution.Challenge.Status)),
	)
	return res, nil
}

// CallerMessage turns a failure into text that is safe to show the
// submitter.
func CallerMessage(err error) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, ErrPayloadTooLarge):
		return "the file exceeds the maximum upload size"
	case errors.Is(err, ErrUnsupportedMediaType):
		return "the file type is not supported"
	case errors.Is(err, ErrStoreUnavailable):
		return "document storage is temporarily unavailable, please try again"
	case errors.Is(err, ErrSubmissionInProgress):
		return "a submission with this key is already in progress"
	}
	return "the submission could not be processed"
}
