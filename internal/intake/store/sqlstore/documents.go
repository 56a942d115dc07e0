package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
)

const documentColumns = `id, filename, mime_type, size_bytes, locator, document_type, description,
	tags, related_user_id, related_challenge_id, is_public, uploaded_by, created_at, updated_at`

type documentsRepo struct {
	c conn
}

func scanDocument(row interface{ Scan(...any) error }) (domain.Document, error) {
	var (
		d                                 domain.Document
		docType, tags                     string
		relUser, relChallenge, uploadedBy sql.NullString
	)
	err := row.Scan(&d.ID, &d.File.Filename, &d.File.MimeType, &d.File.Size, &d.File.Locator,
		&docType, &d.Description, &tags, &relUser, &relChallenge, &d.IsPublic, &uploadedBy,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return domain.Document{}, err
	}
	if err := fromJSON(tags, &d.Tags); err != nil {
		return domain.Document{}, err
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	d.DocumentType = domain.DocumentType(docType)
	d.RelatedUserID = relUser.String
	d.RelatedChallengeID = relChallenge.String
	d.UploadedBy = uploadedBy.String
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return d, nil
}

func (r *documentsRepo) CreateDocument(ctx context.Context, d domain.Document) error {
	tags, err := toJSON(nonNilTags(d.Tags))
	if err != nil {
		return err
	}
	_, err = r.c.exec(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.File.Filename, d.File.MimeType, d.File.Size, d.File.Locator, string(d.DocumentType),
		d.Description, tags, nullString(d.RelatedUserID), nullString(d.RelatedChallengeID), d.IsPublic,
		nullString(d.UploadedBy), d.CreatedAt.UTC(), d.UpdatedAt.UTC(),
	)
	return r.c.mapWriteErr(err, nil)
}

func (r *documentsRepo) GetDocumentByID(ctx context.Context, id string) (domain.Document, error) {
	d, err := scanDocument(r.c.queryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id))
	if err != nil {
		return domain.Document{}, mapNotFound(err)
	}
	return d, nil
}

func (r *documentsRepo) UpdateDocument(ctx context.Context, d domain.Document) error {
	tags, err := toJSON(nonNilTags(d.Tags))
	if err != nil {
		return err
	}
	res, err := r.c.exec(ctx, `
		UPDATE documents
		SET description = ?, tags = ?, is_public = ?, related_user_id = ?,
		    related_challenge_id = ?, updated_at = ?
		WHERE id = ?`,
		d.Description, tags, d.IsPublic, nullString(d.RelatedUserID),
		nullString(d.RelatedChallengeID), d.UpdatedAt.UTC(), d.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *documentsRepo) DeleteDocument(ctx context.Context, id string) error {
	res, err := r.c.exec(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *documentsRepo) ListDocuments(ctx context.Context, f store.DocumentFilter) ([]domain.Document, error) {
	var w where
	if f.ChallengeID != "" {
		w.add(`related_challenge_id = ?`, f.ChallengeID)
	}
	if f.OwnerID != "" {
		w.add(`(related_user_id = ? OR uploaded_by = ?)`, f.OwnerID, f.OwnerID)
	}
	return r.list(ctx, w, f.Page)
}

func (r *documentsRepo) RelateChallengeDocumentsToUser(ctx context.Context, challengeID, userID string, now time.Time) (int64, error) {
	res, err := r.c.exec(ctx, `
		UPDATE documents SET related_user_id = ?, updated_at = ?
		WHERE related_challenge_id = ?`,
		userID, now.UTC(), challengeID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *documentsRepo) ListUnlinkedBefore(ctx context.Context, cutoff time.Time) ([]domain.Document, error) {
	var w where
	w.add(`related_challenge_id IS NULL`)
	w.add(`related_user_id IS NULL`)
	w.add(`uploaded_by IS NULL`)
	w.add(`created_at < ?`, cutoff.UTC())
	return r.list(ctx, w, store.Page{})
}

func (r *documentsRepo) list(ctx context.Context, w where, p store.Page) ([]domain.Document, error) {
	rows, err := r.c.query(ctx,
		`SELECT `+documentColumns+` FROM documents`+w.String()+` ORDER BY created_at ASC, id ASC`+limitClause(p),
		w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
