// Package storetest holds the behaviour every store driver must share.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/aussiebroadwan/leadflow/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Run exercises a freshly migrated, empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("challenges", func(t *testing.T) { testChallenges(t, newStore(t)) })
	t.Run("assign user is guarded", func(t *testing.T) { testAssignUser(t, newStore(t)) })
	t.Run("documents", func(t *testing.T) { testDocuments(t, newStore(t)) })
	t.Run("transactions roll back", func(t *testing.T) { testRollback(t, newStore(t)) })
}

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// User returns a valid user for seeding.
func User(email, username string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		Role:         domain.RoleClient,
		Name:         "Test User",
		CreatedAt:    base,
		UpdatedAt:    base,
	}
}

// Challenge returns a valid unowned challenge submitted at when.
func Challenge(name, email string, when time.Time) domain.Challenge {
	return domain.Challenge{
		ID:          idx.NewAt(when).String(),
		Name:        name,
		Email:       email,
		Answers:     map[string]string{"purpose": "refinance"},
		Documents:   []domain.DocumentRef{},
		Status:      domain.StatusPendingVerification,
		SubmittedAt: when,
		UpdatedAt:   when,
	}
}

// Document returns a valid anonymous upload record.
func Document(filename string) domain.Document {
	return domain.Document{
		ID:           idx.New().String(),
		File:         domain.File{Filename: filename, MimeType: "application/pdf", Size: 42, Locator: "documents/2024/05/01/" + filename},
		DocumentType: domain.DocumentInitialSubmission,
		Tags:         []string{},
		CreatedAt:    base,
		UpdatedAt:    base,
	}
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	users := s.Users()

	income := int64(95000)
	u := User("Jane.Doe@Example.com", "jane-doe")
	u.EmploymentStatus = domain.EmploymentEmployed
	u.AnnualIncome = &income
	require.NoError(t, users.CreateUser(ctx, u))

	got, err := users.GetUserByEmail(ctx, "jane.doe@example.COM")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "Jane.Doe@Example.com", got.Email)
	require.Equal(t, domain.EmploymentEmployed, got.EmploymentStatus)
	require.Equal(t, income, *got.AnnualIncome)
	require.True(t, base.Equal(got.CreatedAt))

	_, err = users.GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	dupEmail := User("JANE.DOE@example.com", "someone-else")
	require.ErrorIs(t, users.CreateUser(ctx, dupEmail), store.ErrEmailTaken)

	dupName := User("other@example.com", "jane-doe")
	err = users.CreateUser(ctx, dupName)
	require.ErrorIs(t, err, store.ErrUsernameTaken)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	got.Phone = "0400 000 000"
	got.AnnualIncome = nil
	got.Role = domain.RoleAdmin
	got.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, users.UpdateUser(ctx, got))

	again, err := users.GetUserByUsername(ctx, "jane-doe")
	require.NoError(t, err)
	require.Equal(t, "0400 000 000", again.Phone)
	require.Nil(t, again.AnnualIncome)
	require.Equal(t, domain.RoleAdmin, again.Role)

	require.ErrorIs(t, users.UpdateUser(ctx, domain.User{ID: "missing", Role: domain.RoleClient}), store.ErrNotFound)

	for i := range 3 {
		require.NoError(t, users.CreateUser(ctx, User(fmt.Sprintf("bulk%d@example.com", i), fmt.Sprintf("bulk_%d", i))))
	}

	list, total, err := users.ListUsers(ctx, store.UserFilter{Search: "BULK", Page: store.Page{Limit: 2}})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, list, 2)

	// "_" is matched literally, not as a wildcard.
	_, total, err = users.ListUsers(ctx, store.UserFilter{Search: "_"})
	require.NoError(t, err)
	require.Equal(t, 3, total)

	_, total, err = users.ListUsers(ctx, store.UserFilter{Role: domain.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, 1, total)

	list, _, err = users.ListUsers(ctx, store.UserFilter{IDs: []string{u.ID}})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func testChallenges(t *testing.T, s store.Store) {
	ctx := context.Background()
	chs := s.Challenges()

	older := Challenge("Jane Doe", "jane@example.com", base)
	newer := Challenge("John Roe", "john@example.com", base.Add(time.Minute))
	require.NoError(t, chs.CreateChallenge(ctx, older))
	require.NoError(t, chs.CreateChallenge(ctx, newer))

	got, err := chs.GetChallengeByID(ctx, older.ID)
	require.NoError(t, err)
	require.Equal(t, older.Answers, got.Answers)
	require.Empty(t, got.Documents)
	require.Empty(t, got.UserID)
	require.Nil(t, got.VerifiedAt)
	require.True(t, base.Equal(got.SubmittedAt))

	_, err = chs.GetChallengeByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	list, total, err := chs.ListChallenges(ctx, store.ChallengeFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, []string{newer.ID, older.ID}, []string{list[0].ID, list[1].ID})

	_, total, err = chs.ListChallenges(ctx, store.ChallengeFilter{Search: "JANE"})
	require.NoError(t, err)
	require.Equal(t, 1, total)

	refs := []domain.DocumentRef{{DocumentID: "d1"}, {DocumentID: "d2"}}
	require.NoError(t, chs.SetDocumentRefs(ctx, older.ID, refs, base.Add(time.Hour)))

	got.Status = domain.StatusCompleted
	got.Notes = "approved"
	stamp := base.Add(2 * time.Hour)
	got.CompletedAt = &stamp
	got.UpdatedAt = stamp
	got.SubmittedAt = base.Add(99 * time.Hour) // must be ignored
	require.NoError(t, chs.UpdateChallengeState(ctx, got))

	got, err = chs.GetChallengeByID(ctx, older.ID)
	require.NoError(t, err)
	require.Equal(t, refs, got.Documents)
	require.Equal(t, domain.StatusCompleted, got.Status)
	require.Equal(t, "approved", got.Notes)
	require.True(t, stamp.Equal(*got.CompletedAt))
	require.True(t, base.Equal(got.SubmittedAt))

	_, total, err = chs.ListChallenges(ctx, store.ChallengeFilter{Status: domain.StatusCompleted})
	require.NoError(t, err)
	require.Equal(t, 1, total)

	require.ErrorIs(t, chs.SetDocumentRefs(ctx, "missing", nil, base), store.ErrNotFound)
}

func testAssignUser(t *testing.T, s store.Store) {
	ctx := context.Background()

	first := User("a@example.com", "first")
	second := User("b@example.com", "second")
	require.NoError(t, s.Users().CreateUser(ctx, first))
	require.NoError(t, s.Users().CreateUser(ctx, second))

	ch := Challenge("A", "a@example.com", base)
	require.NoError(t, s.Challenges().CreateChallenge(ctx, ch))

	require.NoError(t, s.Challenges().AssignUser(ctx, ch.ID, first.ID, base))
	require.ErrorIs(t, s.Challenges().AssignUser(ctx, ch.ID, second.ID, base), store.ErrConflict)
	require.ErrorIs(t, s.Challenges().AssignUser(ctx, "missing", second.ID, base), store.ErrNotFound)

	got, err := s.Challenges().GetChallengeByID(ctx, ch.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, got.UserID)

	list, _, err := s.Challenges().ListChallenges(ctx, store.ChallengeFilter{UserID: first.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func testDocuments(t *testing.T, s store.Store) {
	ctx := context.Background()

	owner := User("owner@example.com", "owner")
	require.NoError(t, s.Users().CreateUser(ctx, owner))
	ch := Challenge("Owner", "owner@example.com", base)
	require.NoError(t, s.Challenges().CreateChallenge(ctx, ch))

	linked := Document("payslip.pdf")
	linked.RelatedChallengeID = ch.ID
	linked.Tags = []string{"income", "2024"}
	require.NoError(t, s.Documents().CreateDocument(ctx, linked))

	orphan := Document("lost.pdf")
	require.NoError(t, s.Documents().CreateDocument(ctx, orphan))

	uploaded := Document("mine.pdf")
	uploaded.UploadedBy = owner.ID
	uploaded.IsPublic = true
	require.NoError(t, s.Documents().CreateDocument(ctx, uploaded))

	got, err := s.Documents().GetDocumentByID(ctx, linked.ID)
	require.NoError(t, err)
	require.Equal(t, linked.File, got.File)
	require.Equal(t, []string{"income", "2024"}, got.Tags)
	require.Equal(t, ch.ID, got.RelatedChallengeID)

	byChallenge, err := s.Documents().ListDocuments(ctx, store.DocumentFilter{ChallengeID: ch.ID})
	require.NoError(t, err)
	require.Len(t, byChallenge, 1)

	n, err := s.Documents().RelateChallengeDocumentsToUser(ctx, ch.ID, owner.ID, base.Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	byOwner, err := s.Documents().ListDocuments(ctx, store.DocumentFilter{OwnerID: owner.ID})
	require.NoError(t, err)
	require.Len(t, byOwner, 2)

	orphans, err := s.Documents().ListUnlinkedBefore(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	require.Equal(t, orphan.ID, orphans[0].ID)

	orphans, err = s.Documents().ListUnlinkedBefore(ctx, base.Add(-time.Hour))
	require.NoError(t, err)
	require.Empty(t, orphans)

	got.RelatedChallengeID = ""
	got.Description = "March payslip"
	got.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, s.Documents().UpdateDocument(ctx, got))
	got, err = s.Documents().GetDocumentByID(ctx, linked.ID)
	require.NoError(t, err)
	require.Empty(t, got.RelatedChallengeID)
	require.Equal(t, "March payslip", got.Description)

	require.NoError(t, s.Documents().DeleteDocument(ctx, orphan.ID))
	require.ErrorIs(t, s.Documents().DeleteDocument(ctx, orphan.ID), store.ErrNotFound)

	require.ErrorIs(t, s.Documents().CreateDocument(ctx, uploaded), store.ErrAlreadyExists)
}

func testRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := User("tx@example.com", "tx")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.EqualError(t, err, "boom")

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, u)
	}))
	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
}
