package service_test

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/events"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/aussiebroadwan/leadflow/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func (h *harness) pendingChallenge(t *testing.T, name, email string) domain.Challenge {
	t.Helper()
	c, err := h.challenges.CreateChallenge(context.Background(), service.CreateChallengeInput{
		Name:   name,
		Email:  email,
		Status: domain.StatusPendingVerification,
	})
	require.NoError(t, err)
	return c
}

func TestResolveMatchedEmail(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	jane := h.seedUser(t, "Jane@Example.com", "jane", domain.RoleClient)
	c := h.pendingChallenge(t, "Jane Doe", "jane@example.COM")

	res, err := h.identity.Resolve(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, "/login?challenge="+c.ID, res.RedirectTarget)
	require.Equal(t, domain.StatusVerified, res.Challenge.Status)
	require.Equal(t, jane.ID, res.Challenge.UserID)

	stored := h.challenge(t, c.ID)
	require.Equal(t, jane.ID, stored.UserID)
	require.NotNil(t, stored.VerifiedAt)
	require.Equal(t, []string{events.ChallengeVerified}, h.events.Types())
}

func TestResolveUnmatchedEmail(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.identity.ClaimPath = "/start/claim"
	c := h.pendingChallenge(t, "Jane Doe", "jane@example.com")

	res, err := h.identity.Resolve(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, "/start/claim?challenge="+c.ID, res.RedirectTarget)

	stored := h.challenge(t, c.ID)
	require.Equal(t, domain.StatusPendingVerification, stored.Status)
	require.Empty(t, stored.UserID)
	require.Nil(t, stored.VerifiedAt)
	require.Empty(t, h.events.Types())
}

func TestResolveMissingChallenge(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	_, err := h.identity.Resolve(context.Background(), "01HZZZZZZZZZZZZZZZZZZZZZZZ")
	require.ErrorIs(t, err, service.ErrChallengeNotFound)
}

func TestClaimChallenge(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.intake.Submit(ctx, service.SubmitRequest{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		File:  &service.Upload{Filename: "payslip.pdf", MimeType: "application/pdf", Data: []byte("%PDF-1.7")},
	}, "")
	require.NoError(t, err)
	docID := res.DocumentID

	claim, err := h.identity.ClaimChallenge(ctx, res.ChallengeID, "s3cret-Pass")
	require.NoError(t, err)
	require.Equal(t, "/login?challenge="+res.ChallengeID, claim.RedirectTarget)
	require.Equal(t, domain.RoleClient, claim.User.Role)
	require.Equal(t, "jane@example.com", claim.User.Email)
	require.Regexp(t, regexp.MustCompile(`^jane-doe-[a-z0-9]{4}$`), claim.User.Username)
	require.NoError(t, cryptox.VerifyPassword("s3cret-Pass", claim.User.PasswordHash))

	c := h.challenge(t, res.ChallengeID)
	require.Equal(t, claim.User.ID, c.UserID)
	require.Equal(t, domain.StatusVerified, c.Status)
	require.NotNil(t, c.VerifiedAt)

	doc := h.document(t, docID)
	require.Equal(t, claim.User.ID, doc.RelatedUserID)
	require.Equal(t, res.ChallengeID, doc.RelatedChallengeID)

	// The claimant can now read the challenge and its documents.
	p := domain.Authenticated{ID: claim.User.ID, Role: domain.RoleClient}
	_, err = h.challenges.GetChallenge(ctx, p, res.ChallengeID)
	require.NoError(t, err)
	_, err = h.documents.GetDocument(ctx, p, docID)
	require.NoError(t, err)

	t.Run("second claim", func(t *testing.T) {
		_, err := h.identity.ClaimChallenge(ctx, res.ChallengeID, "An0ther-Pass")
		require.ErrorIs(t, err, service.ErrAlreadyClaimed)

		_, total, err := h.store.Users().ListUsers(ctx, store.UserFilter{})
		require.NoError(t, err)
		require.Equal(t, 1, total)
	})

	require.Contains(t, h.events.Types(), events.ChallengeClaimed)
}

func TestResolveFoldsNonASCIIEmail(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	first := h.pendingChallenge(t, "Élise Martin", "Élise@example.com")
	claim, err := h.identity.ClaimChallenge(ctx, first.ID, "s3cret-Pass")
	require.NoError(t, err)
	require.Equal(t, "élise@example.com", claim.User.Email)

	second := h.pendingChallenge(t, "Élise Martin", "ÉLISE@EXAMPLE.com")
	res, err := h.identity.Resolve(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, "/login?challenge="+second.ID, res.RedirectTarget)
	require.Equal(t, claim.User.ID, res.Challenge.UserID)

	third := h.pendingChallenge(t, "Élise Martin", "élise@example.com")
	_, err = h.identity.ClaimChallenge(ctx, third.ID, "s3cret-Pass")
	require.ErrorIs(t, err, service.ErrEmailInUse)
}

func TestClaimChallengeEmailInUse(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	c := h.pendingChallenge(t, "Jane Doe", "jane@example.com")
	h.seedUser(t, "JANE@example.com", "jane", domain.RoleClient)

	_, err := h.identity.ClaimChallenge(context.Background(), c.ID, "s3cret-Pass")
	require.ErrorIs(t, err, service.ErrEmailInUse)
	require.Empty(t, h.challenge(t, c.ID).UserID)
}

func TestClaimChallengePasswordPolicy(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	c := h.pendingChallenge(t, "Jane Doe", "jane@example.com")

	for _, pw := range []string{"", "short1!", "lettersonly!", "12345678!", "NoSymbol123", strings.Repeat("a1!", 43)} {
		t.Run(pw, func(t *testing.T) {
			_, err := h.identity.ClaimChallenge(context.Background(), c.ID, pw)
			require.ErrorIs(t, err, service.ErrInvalidInput)
			require.True(t, isValidation(err, "password"))
		})
	}
	require.Empty(t, h.challenge(t, c.ID).UserID)
}

func TestCheckPassword(t *testing.T) {
	cases := map[string]bool{
		"abcdefg1!":               true,
		"pässwörd1?":              true,
		"abc1!":                   false,
		"abcdefgh1":               false,
		"abcdefgh!":               false,
		"12345678!":               false,
		strings.Repeat("a1!", 42): true,
		strings.Repeat("a1!", 43): false,
	}
	for pw, ok := range cases {
		err := service.CheckPassword(pw)
		if ok {
			require.NoError(t, err, pw)
		} else {
			require.Error(t, err, pw)
		}
	}
}

func TestGenerateUsername(t *testing.T) {
	cases := map[string]string{
		"Jane Doe":                        "jane-doe",
		"  Zoë O'Brien-Smith ":            "zo-o-brien-smith",
		"!!!":                             "user",
		"Bartholomew Montgomery-Smythe X": "bartholomew-montgome",
	}
	for name, slug := range cases {
		require.Equal(t, slug, service.Slugify(name), name)

		u, err := service.GenerateUsername(name)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(u, slug+"-"), u)
		require.Len(t, u, len(slug)+5)
	}
}
