package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/aussiebroadwan/leadflow/internal/intake/access"
	"github.com/aussiebroadwan/leadflow/internal/intake/blob"
	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/events"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/aussiebroadwan/leadflow/pkg/idx"
	"github.com/aussiebroadwan/leadflow/pkg/slogx"
)

const (
	DefaultAnonymousUploadLimit     int64 = 10 << 20
	DefaultAuthenticatedUploadLimit int64 = 50 << 20
)

// UploadLimits are the per-file byte ceilings by channel.
type UploadLimits struct {
	Anonymous     int64
	Authenticated int64
}

func (l UploadLimits) For(p domain.Principal) int64 {
	if _, ok := domain.AsAuthenticated(p); ok {
		if l.Authenticated > 0 {
			return l.Authenticated
		}
		return DefaultAuthenticatedUploadLimit
	}
	if l.Anonymous > 0 {
		return l.Anonymous
	}
	return DefaultAnonymousUploadLimit
}

// DocumentService owns documents and both edges of the document/challenge
// relation: a document's relatedChallenge is set exactly when the challenge
// lists the document.
type DocumentService struct {
	Store  store.Store
	Blob   blob.Store
	Events events.Publisher
	Limits UploadLimits
	Now    func() time.Time
}

type Upload struct {
	Filename string
	MimeType string
	Data     []byte
}

type DocumentMetadata struct {
	DocumentType       domain.DocumentType
	Description        string
	Tags               []string
	RelatedChallengeID string
	RelatedUserID      string
	IsPublic           bool
}

// DocumentUpdate holds the mutable document fields; nil leaves a field as is.
type DocumentUpdate struct {
	Description *string
	Tags        *[]string
	IsPublic    *bool
}

type BulkUploadError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type BulkUploadResult struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Documents []domain.Document `json:"documents"`
	Errors    []BulkUploadError `json:"errors"`
}

type DocumentEvent struct {
	DocumentID  string `json:"documentId"`
	ChallengeID string `json:"challengeId,omitempty"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
}

func documentEvent(typ string, d domain.Document) events.Event {
	key := d.RelatedChallengeID
	if key == "" {
		key = d.ID
	}
	return events.New(typ, key, DocumentEvent{
		DocumentID:  d.ID,
		ChallengeID: d.RelatedChallengeID,
		Filename:    d.File.Filename,
		Size:        d.File.Size,
	})
}

// checkUpload enforces presence, the channel's size ceiling, the media type
// allow-list and agreement between the claimed type and the bytes. It
// returns the normalised media type.
func (s *DocumentService) checkUpload(p domain.Principal, up Upload) (string, error) {
	if strings.TrimSpace(up.Filename) == "" {
		return "", invalidField("filename", "is required")
	}
	if len(up.Data) == 0 {
		return "", invalidField("file", "is required")
	}
	if limit := s.Limits.For(p); int64(len(up.Data)) > limit {
		return "", fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrPayloadTooLarge, len(up.Data), limit)
	}
	detected := mimetype.Detect(up.Data)
	mt := mediaType(up.MimeType, up.Filename, detected)
	if !allowedMimeType(mt) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mt)
	}
	if !contentMatches(mt, detected) {
		return "", fmt.Errorf("%w: content is %s, not %s", ErrUnsupportedMediaType, bareType(detected.String()), mt)
	}
	return mt, nil
}

// UploadDocument stores the file, then records the document and, when a
// related challenge is given, appends it to that challenge in the same
// transaction. The blob is removed again if the record cannot be written.
func (s *DocumentService) UploadDocument(ctx context.Context, p domain.Principal, up Upload, meta DocumentMetadata) (domain.Document, error) {
	log := slogx.FromContext(ctx)

	mt, err := s.checkUpload(p, up)
	if err != nil {
		return domain.Document{}, err
	}
	if meta.DocumentType == "" {
		meta.DocumentType = domain.DocumentSupporting
	}
	if !meta.DocumentType.Valid() {
		return domain.Document{}, invalidField("documentType", "must be one of: initial-submission, completion-document, supporting-document")
	}

	if meta.RelatedChallengeID != "" {
		c, err := s.Store.Challenges().GetChallengeByID(ctx, meta.RelatedChallengeID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) && !domain.IsAdmin(p) {
				return domain.Document{}, ErrAccessDenied
			}
			return domain.Document{}, notFound(err, ErrChallengeNotFound)
		}
		if !access.Evaluate(p, access.Challenge, access.Update, c.UserID).Permits() {
			return domain.Document{}, ErrAccessDenied
		}
	}
	uploader := domain.PrincipalID(p)
	if meta.RelatedUserID == "" && uploader != "" && !domain.IsAdmin(p) {
		meta.RelatedUserID = uploader
	}
	if meta.RelatedUserID != "" && !access.Evaluate(p, access.User, access.Update, meta.RelatedUserID).Permits() {
		return domain.Document{}, ErrAccessDenied
	}

	now := clock(s.Now)
	obj, err := s.Blob.Put(ctx, up.Data, mt, up.Filename)
	if err != nil {
		log.Error("failed to store document bytes", slog.String("filename", up.Filename), slog.Any("error", err))
		return domain.Document{}, blobErr("put document", err)
	}

	d := domain.Document{
		ID: idx.NewAt(now).String(),
		File: domain.File{
			Filename: up.Filename,
			MimeType: mt,
			Size:     obj.Size,
			Locator:  obj.Locator,
		},
		DocumentType:       meta.DocumentType,
		Description:        meta.Description,
		Tags:               domain.NormalizeTags(meta.Tags),
		RelatedUserID:      meta.RelatedUserID,
		RelatedChallengeID: meta.RelatedChallengeID,
		IsPublic:           meta.IsPublic,
		UploadedBy:         uploader,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Documents().CreateDocument(ctx, d); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if d.RelatedChallengeID != "" {
			return appendDocumentRef(ctx, tx, d.RelatedChallengeID, d.ID, now)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to record document, removing blob",
			slog.String("locator", obj.Locator),
			slog.Any("error", err),
		)
		if derr := s.Blob.Delete(context.WithoutCancel(ctx), obj.Locator); derr != nil && !errors.Is(derr, blob.ErrNotFound) {
			log.Warn("failed to remove blob of unrecorded document",
				slog.String("locator", obj.Locator),
				slog.Any("error", derr),
			)
		}
		return domain.Document{}, err
	}

	log.Info("document uploaded",
		slog.String("document_id", d.ID),
		slog.String("challenge_id", d.RelatedChallengeID),
		slog.Int64("size", d.File.Size),
	)
	publish(ctx, s.Events, documentEvent(events.DocumentUploaded, d))
	return d, nil
}

// BulkUpload uploads each file in turn. A failed file is reported and
// skipped; it never touches the related challenge.
func (s *DocumentService) BulkUpload(ctx context.Context, p domain.Principal, uploads []Upload, meta DocumentMetadata) BulkUploadResult {
	res := BulkUploadResult{Documents: []domain.Document{}, Errors: []BulkUploadError{}}
	for _, up := range uploads {
		d, err := s.UploadDocument(ctx, p, up, meta)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, BulkUploadError{Filename: up.Filename, Error: err.Error()})
			continue
		}
		res.Succeeded++
		res.Documents = append(res.Documents, d)
	}
	return res
}

// linkToChallenge sets the document's relatedChallenge and makes sure the
// challenge lists it. Used by the intake pipeline once the challenge exists.
func (s *DocumentService) linkToChallenge(ctx context.Context, docID, challengeID string) error {
	now := clock(s.Now)
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		d, err := tx.Documents().GetDocumentByID(ctx, docID)
		if err != nil {
			return notFound(err, ErrDocumentNotFound)
		}
		if err := appendDocumentRef(ctx, tx, challengeID, docID, now); err != nil {
			return err
		}
		if d.RelatedChallengeID == challengeID {
			return nil
		}
		d.RelatedChallengeID = challengeID
		d.UpdatedAt = now
		return tx.Documents().UpdateDocument(ctx, d)
	})
}

// owner resolves the document owner: relatedUser, then uploader, then the
// owner of the related challenge.
func documentOwner(ctx context.Context, challenges store.Challenges, d domain.Document) (string, error) {
	if owner := d.OwnerID(""); owner != "" || d.RelatedChallengeID == "" {
		return owner, nil
	}
	c, err := challenges.GetChallengeByID(ctx, d.RelatedChallengeID)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return d.OwnerID(c.UserID), nil
}

func (s *DocumentService) authorize(ctx context.Context, p domain.Principal, d domain.Document, action access.Action) error {
	owner, err := documentOwner(ctx, s.Store.Challenges(), d)
	if err != nil {
		return err
	}
	if !access.Evaluate(p, access.Document, action, owner).Permits() {
		return ErrAccessDenied
	}
	return nil
}

// GetDocument returns document metadata. A missing document is reported as
// ErrAccessDenied to non-admins.
func (s *DocumentService) GetDocument(ctx context.Context, p domain.Principal, id string) (domain.Document, error) {
	d, err := s.Store.Documents().GetDocumentByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		if domain.IsAdmin(p) {
			return domain.Document{}, ErrDocumentNotFound
		}
		return domain.Document{}, ErrAccessDenied
	}
	if err != nil {
		return domain.Document{}, err
	}
	if err := s.authorize(ctx, p, d, access.Read); err != nil {
		return domain.Document{}, err
	}
	return d, nil
}

// OpenDocument returns the document with its bytes.
func (s *DocumentService) OpenDocument(ctx context.Context, p domain.Principal, id string) (domain.Document, []byte, error) {
	d, err := s.GetDocument(ctx, p, id)
	if err != nil {
		return domain.Document{}, nil, err
	}
	data, err := s.Blob.Get(ctx, d.File.Locator)
	if errors.Is(err, blob.ErrNotFound) {
		slogx.FromContext(ctx).Error("document bytes missing",
			slog.String("document_id", d.ID),
			slog.String("locator", d.File.Locator),
		)
		return domain.Document{}, nil, fmt.Errorf("%w: content missing", ErrDocumentNotFound)
	}
	if err != nil {
		return domain.Document{}, nil, blobErr("get document", err)
	}
	return d, data, nil
}

// UpdateDocument changes description, tags or visibility.
func (s *DocumentService) UpdateDocument(ctx context.Context, p domain.Principal, id string, upd DocumentUpdate) (domain.Document, error) {
	var d domain.Document
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		d, err = tx.Documents().GetDocumentByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) && !domain.IsAdmin(p) {
			return ErrAccessDenied
		}
		if err != nil {
			return notFound(err, ErrDocumentNotFound)
		}
		owner, err := documentOwner(ctx, tx.Challenges(), d)
		if err != nil {
			return err
		}
		if !access.Evaluate(p, access.Document, access.Update, owner).Permits() {
			return ErrAccessDenied
		}

		if upd.Description != nil {
			d.Description = *upd.Description
		}
		if upd.Tags != nil {
			d.Tags = domain.NormalizeTags(*upd.Tags)
		}
		if upd.IsPublic != nil {
			d.IsPublic = *upd.IsPublic
		}
		d.UpdatedAt = clock(s.Now)
		return tx.Documents().UpdateDocument(ctx, d)
	})
	if err != nil {
		return domain.Document{}, err
	}
	return d, nil
}

// DeleteDocument unlinks the document from its challenge, removes the bytes
// and finally the record. If the bytes cannot be removed the record is kept,
// unlinked, and ErrStoreUnavailable is returned. Deleting a missing document
// is a no-op for admins and ErrAccessDenied for everyone else.
func (s *DocumentService) DeleteDocument(ctx context.Context, p domain.Principal, id string) error {
	log := slogx.FromContext(ctx)

	d, err := s.Store.Documents().GetDocumentByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		if domain.IsAdmin(p) {
			return nil
		}
		return ErrAccessDenied
	}
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, p, d, access.Delete); err != nil {
		return err
	}

	if d.RelatedChallengeID != "" {
		now := clock(s.Now)
		err := s.Store.WithTx(ctx, func(tx store.Tx) error {
			cur, err := tx.Documents().GetDocumentByID(ctx, id)
			if err != nil {
				return notFound(err, ErrDocumentNotFound)
			}
			if cur.RelatedChallengeID == "" {
				return nil
			}
			if err := removeDocumentRef(ctx, tx, cur.RelatedChallengeID, id, now); err != nil && !errors.Is(err, ErrChallengeNotFound) {
				return err
			}
			cur.RelatedChallengeID = ""
			cur.UpdatedAt = now
			return tx.Documents().UpdateDocument(ctx, cur)
		})
		if err != nil {
			return fmt.Errorf("unlink document: %w", err)
		}
	}

	if err := s.Blob.Delete(ctx, d.File.Locator); err != nil && !errors.Is(err, blob.ErrNotFound) {
		log.Error("failed to delete document bytes, keeping record",
			slog.String("document_id", d.ID),
			slog.String("locator", d.File.Locator),
			slog.Any("error", err),
		)
		return blobErr("delete document", err)
	}

	if err := s.Store.Documents().DeleteDocument(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	log.Info("document deleted",
		slog.String("document_id", d.ID),
		slog.String("challenge_id", d.RelatedChallengeID),
	)
	publish(ctx, s.Events, documentEvent(events.DocumentDeleted, d))
	return nil
}

// ListDocumentsByChallenge lists the documents related to a challenge.
func (s *DocumentService) ListDocumentsByChallenge(ctx context.Context, p domain.Principal, challengeID string) ([]domain.Document, error) {
	c, err := s.Store.Challenges().GetChallengeByID(ctx, challengeID)
	if errors.Is(err, store.ErrNotFound) {
		if domain.IsAdmin(p) {
			return nil, ErrChallengeNotFound
		}
		return nil, ErrAccessDenied
	}
	if err != nil {
		return nil, err
	}
	if !access.Evaluate(p, access.Document, access.List, c.UserID).Permits() {
		return nil, ErrAccessDenied
	}

	docs, err := s.Store.Documents().ListDocuments(ctx, store.DocumentFilter{ChallengeID: challengeID})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// ListDocumentsByUser lists the documents related to or uploaded by userID.
func (s *DocumentService) ListDocumentsByUser(ctx context.Context, p domain.Principal, userID string) ([]domain.Document, error) {
	if !access.Evaluate(p, access.Document, access.List, userID).Permits() {
		return nil, ErrAccessDenied
	}
	docs, err := s.Store.Documents().ListDocuments(ctx, store.DocumentFilter{OwnerID: userID})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}
