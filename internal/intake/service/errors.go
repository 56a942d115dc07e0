package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/aussiebroadwan/leadflow/internal/intake/blob"
	"github.com/aussiebroadwan/leadflow/internal/intake/events"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/aussiebroadwan/leadflow/pkg/slogx"
)

var (
	ErrAccessDenied         = errors.New("access denied")
	ErrChallengeNotFound    = errors.New("challenge not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidStatus        = errors.New("invalid challenge status")
	ErrAlreadyClaimed       = errors.New("challenge already claimed")
	ErrEmailInUse           = errors.New("email already in use")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrStoreUnavailable     = errors.New("document store unavailable")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrInvalidInput         = errors.New("invalid input")
)

// ValidationError carries per-field messages keyed by the wire field name.
type ValidationError struct {
	Fields map[string]string
}

func invalidField(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// notFound translates store.ErrNotFound into the service sentinel.
func notFound(err error, sentinel error) error {
	if errors.Is(err, store.ErrNotFound) {
		return sentinel
	}
	return err
}

// blobErr folds transient document store failures into ErrStoreUnavailable.
func blobErr(op string, err error) error {
	if errors.Is(err, blob.ErrUnavailable) {
		return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func publish(ctx context.Context, p events.Publisher, e events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		slogx.FromContext(ctx).Warn("failed to publish event",
			slog.String("event_type", e.Type),
			slog.String("key", e.Key),
			slog.Any("error", err),
		)
	}
}
