package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/stretchr/testify/require"
)

func TestOrphanAudit(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	ops := admin(h.seedUser(t, "ops@example.com", "ops", domain.RoleAdmin))
	jane := h.seedUser(t, "jane@example.com", "jane", domain.RoleClient)

	// An anonymous upload whose intake never created a challenge.
	orphan, err := h.documents.UploadDocument(ctx, domain.Anonymous{}, pdf("lost.pdf", 10), service.DocumentMetadata{})
	require.NoError(t, err)
	_, err = h.documents.UploadDocument(ctx, client(jane), pdf("mine.pdf", 10), service.DocumentMetadata{})
	require.NoError(t, err)
	submitted, err := h.intake.Submit(ctx, janeDoe(pdf("ok.pdf", 10)), "")
	require.NoError(t, err)
	require.True(t, submitted.Success)

	audit := service.NewOrphanAuditService(h.store, slog.New(slog.NewTextHandler(io.Discard, nil)), 0, time.Hour)
	audit.Now = h.clock.Now

	docs, err := audit.Report(ctx)
	require.NoError(t, err)
	require.Empty(t, docs, "within the grace period")

	h.clock.Advance(2 * time.Hour)
	docs, err = audit.Audit(ctx, ops)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, orphan.ID, docs[0].ID)

	_, err = audit.Audit(ctx, client(jane))
	require.ErrorIs(t, err, service.ErrAccessDenied)

	// Disabled periodic run starts and stops cleanly.
	audit.Start()
	audit.Stop()
}
