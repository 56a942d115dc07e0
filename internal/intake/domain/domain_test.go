package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/stretchr/testify/require"
)

func TestEnterStatusStampsOnce(t *testing.T) {
	first := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	c := domain.Challenge{Status: domain.StatusPendingVerification}
	c.EnterStatus(domain.StatusCompleted, first)
	c.EnterStatus(domain.StatusInProgress, later)
	c.EnterStatus(domain.StatusCompleted, later)

	require.Equal(t, domain.StatusCompleted, c.Status)
	require.Equal(t, first, *c.CompletedAt)
	require.Nil(t, c.VerifiedAt)
	require.Equal(t, later, c.UpdatedAt)
}

func TestDocumentRefsAreIdempotent(t *testing.T) {
	c := domain.Challenge{Documents: []domain.DocumentRef{{DocumentID: "a"}}}

	require.Equal(t, []domain.DocumentRef{{DocumentID: "a"}, {DocumentID: "b"}}, c.WithDocument("b"))
	require.Equal(t, []domain.DocumentRef{{DocumentID: "a"}}, c.WithDocument("a"))
	require.Empty(t, c.WithoutDocument("a"))
	require.Equal(t, c.Documents, c.WithoutDocument("zzz"))
	// Original slice untouched.
	require.Len(t, c.Documents, 1)
}

func TestDocumentOwnerFallback(t *testing.T) {
	require.Equal(t, "rel", domain.Document{RelatedUserID: "rel", UploadedBy: "up"}.OwnerID("ch"))
	require.Equal(t, "up", domain.Document{UploadedBy: "up"}.OwnerID("ch"))
	require.Equal(t, "ch", domain.Document{}.OwnerID("ch"))
	require.Empty(t, domain.Document{}.OwnerID(""))
}

func TestNormalizeTags(t *testing.T) {
	require.Equal(t, []string{"payslip", "2024"}, domain.NormalizeTags([]string{" payslip", "", "2024", "payslip "}))
}

func TestEnums(t *testing.T) {
	require.True(t, domain.StatusInProgress.Valid())
	require.False(t, domain.ChallengeStatus("archived").Valid())
	require.True(t, domain.EmploymentStatus("").Valid())
	require.False(t, domain.EmploymentStatus("student").Valid())
	require.True(t, domain.DocumentSupporting.Valid())
	require.False(t, domain.Role("root").Valid())
}

func TestPrincipalHelpers(t *testing.T) {
	var anon domain.Principal = domain.Anonymous{}
	require.False(t, domain.IsAdmin(anon))
	require.Empty(t, domain.PrincipalID(anon))

	sys := domain.System()
	require.True(t, domain.IsAdmin(sys))
	require.Equal(t, domain.SystemID, domain.PrincipalID(sys))
}
