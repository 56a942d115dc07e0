package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/events"
	"github.com/aussiebroadwan/leadflow/internal/intake/idempotency"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/stretchr/testify/require"
)

func janeDoe(file service.Upload) service.SubmitRequest {
	return service.SubmitRequest{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Answers: map[string]string{"purchasePrice": "650000", "firstHome": "yes"},
		File:    &file,
	}
}

func (h *harness) challengeCount(t *testing.T) int {
	t.Helper()
	_, total, err := h.store.Challenges().ListChallenges(context.Background(), store.ChallengeFilter{})
	require.NoError(t, err)
	return total
}

func TestSubmitNewProspect(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, err := h.intake.Submit(context.Background(), janeDoe(pdf("payslip.pdf", 4096)), "")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotEmpty(t, res.ChallengeID)
	require.NotEmpty(t, res.DocumentID)
	require.Equal(t, "/claim?challenge="+res.ChallengeID, res.RedirectTarget)
	require.Empty(t, res.Error)

	c := h.challenge(t, res.ChallengeID)
	require.Equal(t, domain.StatusPendingVerification, c.Status)
	require.Empty(t, c.UserID)
	require.Equal(t, "650000", c.Answers["purchasePrice"])
	h.requireLinked(t, c.ID, res.DocumentID)

	d := h.document(t, res.DocumentID)
	require.Equal(t, domain.DocumentInitialSubmission, d.DocumentType)
	require.Empty(t, d.UploadedBy)
	require.Empty(t, d.RelatedUserID)

	require.Equal(t, []string{events.DocumentUploaded, events.ChallengeSubmitted}, h.events.Types())
}

func TestSubmitExistingUser(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	jane := h.seedUser(t, "jane@example.com", "jane", domain.RoleClient)

	res, err := h.intake.Submit(context.Background(), janeDoe(pdf("payslip.pdf", 4096)), "")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "/login?challenge="+res.ChallengeID, res.RedirectTarget)

	c := h.challenge(t, res.ChallengeID)
	require.Equal(t, domain.StatusVerified, c.Status)
	require.Equal(t, jane.ID, c.UserID)
	require.NotNil(t, c.VerifiedAt)
	h.requireLinked(t, c.ID, res.DocumentID)

	// Jane reaches the document through the challenge she now owns.
	_, err = h.documents.GetDocument(context.Background(), client(jane), res.DocumentID)
	require.NoError(t, err)

	require.Equal(t, []string{events.DocumentUploaded, events.ChallengeSubmitted, events.ChallengeVerified}, h.events.Types())
}

func TestSubmitRejectsOversizedAnonymousFile(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, err := h.intake.Submit(context.Background(), janeDoe(pdf("scan.pdf", 60_000_000)), "")
	require.ErrorIs(t, err, service.ErrPayloadTooLarge)
	require.False(t, res.Success)
	require.Empty(t, res.DocumentID)
	require.Empty(t, res.ChallengeID)
	require.Equal(t, "the file exceeds the maximum upload size", res.Error)

	require.Zero(t, h.challengeCount(t))
	require.Zero(t, h.blob.Len())
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	req := janeDoe(pdf("a.pdf", 10))
	req.Email = "jane"
	res, err := h.intake.Submit(ctx, req, "")
	require.True(t, isValidation(err, "email"))
	require.False(t, res.Success)
	require.Contains(t, res.Error, "email")

	req = janeDoe(pdf("a.pdf", 10))
	req.File = nil
	_, err = h.intake.Submit(ctx, req, "")
	require.True(t, isValidation(err, "file"))

	require.Zero(t, h.challengeCount(t))
}

func TestSubmitStoreUnavailable(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.blob.failPut.Store(true)

	res, err := h.intake.Submit(context.Background(), janeDoe(pdf("a.pdf", 10)), "")
	require.ErrorIs(t, err, service.ErrStoreUnavailable)
	require.False(t, res.Success)
	require.Equal(t, "document storage is temporarily unavailable, please try again", res.Error)
	require.Zero(t, h.challengeCount(t))
}

func TestSubmitIdempotentReplay(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb, err := idempotency.Connect(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	h.intake.Idempotency = idempotency.NewRedis(rdb, time.Hour)

	first, err := h.intake.Submit(ctx, janeDoe(pdf("a.pdf", 10)), "key-1")
	require.NoError(t, err)

	second, err := h.intake.Submit(ctx, janeDoe(pdf("a.pdf", 10)), "key-1")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, h.challengeCount(t))
	require.Equal(t, 1, h.blob.Len())

	other, err := h.intake.Submit(ctx, janeDoe(pdf("a.pdf", 10)), "key-2")
	require.NoError(t, err)
	require.NotEqual(t, first.ChallengeID, other.ChallengeID)
}

func TestSubmitIdempotencyInProgressAndRelease(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	_, _, err := h.intake.Idempotency.Begin(ctx, "busy")
	require.NoError(t, err)
	res, err := h.intake.Submit(ctx, janeDoe(pdf("a.pdf", 10)), "busy")
	require.ErrorIs(t, err, service.ErrSubmissionInProgress)
	require.False(t, res.Success)

	// A failed submission releases its key so the retry runs.
	_, err = h.intake.Submit(ctx, janeDoe(pdf("a.pdf", 60_000_000)), "retry")
	require.ErrorIs(t, err, service.ErrPayloadTooLarge)
	res, err = h.intake.Submit(ctx, janeDoe(pdf("a.pdf", 10)), "retry")
	require.NoError(t, err)
	require.True(t, res.Success)
}

var errDBDown = errors.New("db down")

// failingChallenges rejects every insert.
type failingChallenges struct{ store.Challenges }

func (failingChallenges) CreateChallenge(context.Context, domain.Challenge) error { return errDBDown }

type failingChallengeStore struct{ store.Store }

func (s failingChallengeStore) Challenges() store.Challenges {
	return failingChallenges{s.Store.Challenges()}
}

func TestSubmitChallengeFailureReportsDocument(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.challenges.Store = failingChallengeStore{h.store}

	res, err := h.intake.Submit(ctx, janeDoe(pdf("a.pdf", 10)), "flaky")
	require.ErrorIs(t, err, errDBDown)
	require.False(t, res.Success)
	require.Empty(t, res.ChallengeID)
	require.Empty(t, res.RedirectTarget)
	require.Equal(t, "the submission could not be processed", res.Error)

	// The upload survives, unlinked, for the orphan audit.
	require.NotEmpty(t, res.DocumentID)
	require.Empty(t, h.document(t, res.DocumentID).RelatedChallengeID)
	require.Zero(t, h.challengeCount(t))

	// The key was released, so the retry is processed rather than rejected.
	h.challenges.Store = h.store
	retry, err := h.intake.Submit(ctx, janeDoe(pdf("a.pdf", 10)), "flaky")
	require.NoError(t, err)
	require.True(t, retry.Success)
	require.NotEqual(t, res.DocumentID, retry.DocumentID)
	require.Equal(t, 1, h.challengeCount(t))
}

func TestSubmitUnreadableCachedResult(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	_, _, err := h.intake.Idempotency.Begin(ctx, "garbled")
	require.NoError(t, err)
	require.NoError(t, h.intake.Idempotency.Complete(ctx, "garbled", []byte("{not json")))

	first, err := h.intake.Submit(ctx, janeDoe(pdf("a.pdf", 10)), "garbled")
	require.NoError(t, err)
	require.True(t, first.Success)

	// The fresh result replaced the unreadable one.
	second, err := h.intake.Submit(ctx, janeDoe(pdf("a.pdf", 10)), "garbled")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, h.challengeCount(t))
}
