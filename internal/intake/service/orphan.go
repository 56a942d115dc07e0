package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/access"
	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
)

const DefaultOrphanGracePeriod = 24 * time.Hour

// OrphanAuditService reports documents left behind by intake submissions
// that failed after the upload: no challenge, no related user, no uploader
// and older than the grace period. It never modifies anything.
type OrphanAuditService struct {
	Store       store.Store
	Logger      *slog.Logger
	Interval    time.Duration
	GracePeriod time.Duration
	Now         func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewOrphanAuditService creates the audit. A zero grace period defaults to
// 24 hours; a zero interval disables the periodic run.
func NewOrphanAuditService(store store.Store, logger *slog.Logger, interval, grace time.Duration) *OrphanAuditService {
	if grace <= 0 {
		grace = DefaultOrphanGracePeriod
	}
	return &OrphanAuditService{
		Store:       store,
		Logger:      logger,
		Interval:    interval,
		GracePeriod: grace,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Report lists the current orphans.
func (s *OrphanAuditService) Report(ctx context.Context) ([]domain.Document, error) {
	cutoff := clock(s.Now).Add(-s.GracePeriod)
	docs, err := s.Store.Documents().ListUnlinkedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list orphaned documents: %w", err)
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

// Audit is Report for an admin principal.
func (s *OrphanAuditService) Audit(ctx context.Context, p domain.Principal) ([]domain.Document, error) {
	if access.Evaluate(p, access.Document, access.List, "") != access.Allow {
		return nil, ErrAccessDenied
	}
	return s.Report(ctx)
}

// Start runs the audit every Interval in the background. It is a no-op when
// Interval is not positive.
func (s *OrphanAuditService) Start() {
	if s.Interval <= 0 {
		close(s.doneCh)
		return
	}
	go s.run()
	s.Logger.Info("orphan audit started",
		slog.Duration("interval", s.Interval),
		slog.Duration("grace_period", s.GracePeriod),
	)
}

// Stop shuts the background worker down and waits for it.
func (s *OrphanAuditService) Stop() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	<-s.doneCh
}

func (s *OrphanAuditService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.audit()
	for {
		select {
		case <-ticker.C:
			s.audit()
		case <-s.stopCh:
			return
		}
	}
}

func (s *OrphanAuditService) audit() {
	docs, err := s.Report(context.Background())
	if err != nil {
		s.Logger.Error("orphan audit failed", slog.Any("error", err))
		return
	}
	for _, d := range docs {
		s.Logger.Warn("orphaned document",
			slog.String("document_id", d.ID),
			slog.String("locator", d.File.Locator),
			slog.Time("created_at", d.CreatedAt),
		)
	}
	s.Logger.Info("orphan audit completed", slog.Int("orphans", len(docs)))
}
