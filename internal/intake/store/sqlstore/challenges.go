package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
)

const challengeColumns = `id, name, email, answers, document_refs, user_id, status, notes,
	submitted_at, verified_at, completed_at, updated_at`

type challengesRepo struct {
	c conn
}

func scanChallenge(row interface{ Scan(...any) error }) (domain.Challenge, error) {
	var (
		ch                      domain.Challenge
		answers, refs, status   string
		userID                  sql.NullString
		verifiedAt, completedAt sql.NullTime
	)
	err := row.Scan(&ch.ID, &ch.Name, &ch.Email, &answers, &refs, &userID, &status, &ch.Notes,
		&ch.SubmittedAt, &verifiedAt, &completedAt, &ch.UpdatedAt)
	if err != nil {
		return domain.Challenge{}, err
	}
	if err := fromJSON(answers, &ch.Answers); err != nil {
		return domain.Challenge{}, err
	}
	if err := fromJSON(refs, &ch.Documents); err != nil {
		return domain.Challenge{}, err
	}
	if ch.Answers == nil {
		ch.Answers = map[string]string{}
	}
	if ch.Documents == nil {
		ch.Documents = []domain.DocumentRef{}
	}
	ch.UserID = userID.String
	ch.Status = domain.ChallengeStatus(status)
	ch.SubmittedAt = ch.SubmittedAt.UTC()
	ch.UpdatedAt = ch.UpdatedAt.UTC()
	ch.VerifiedAt = timePtr(verifiedAt)
	ch.CompletedAt = timePtr(completedAt)
	return ch, nil
}

func (r *challengesRepo) CreateChallenge(ctx context.Context, ch domain.Challenge) error {
	answers, err := toJSON(nonNilMap(ch.Answers))
	if err != nil {
		return err
	}
	refs, err := toJSON(nonNilRefs(ch.Documents))
	if err != nil {
		return err
	}

	_, err = r.c.exec(ctx, `
		INSERT INTO challenges (`+challengeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ch.ID, ch.Name, ch.Email, answers, refs, nullString(ch.UserID), string(ch.Status), ch.Notes,
		ch.SubmittedAt.UTC(), nullTime(ch.VerifiedAt), nullTime(ch.CompletedAt), ch.UpdatedAt.UTC(),
	)
	return r.c.mapWriteErr(err, nil)
}

func (r *challengesRepo) GetChallengeByID(ctx context.Context, id string) (domain.Challenge, error) {
	ch, err := scanChallenge(r.c.queryRow(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id))
	if err != nil {
		return domain.Challenge{}, mapNotFound(err)
	}
	return ch, nil
}

func (r *challengesRepo) ListChallenges(ctx context.Context, f store.ChallengeFilter) ([]domain.Challenge, int, error) {
	var w where
	if f.UserID != "" {
		w.add(`user_id = ?`, f.UserID)
	}
	if f.Status != "" {
		w.add(`status = ?`, string(f.Status))
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		w.add(`(lower(name) LIKE ? ESCAPE '\' OR lower(email) LIKE ? ESCAPE '\')`, p, p)
	}
	if f.IDs != nil {
		w.in("id", f.IDs)
	}

	var total int
	if err := r.c.queryRow(ctx, `SELECT COUNT(*) FROM challenges`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.c.query(ctx,
		`SELECT `+challengeColumns+` FROM challenges`+w.String()+
			` ORDER BY submitted_at DESC, id DESC`+limitClause(f.Page),
		w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Challenge
	for rows.Next() {
		ch, err := scanChallenge(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, ch)
	}
	return out, total, rows.Err()
}

func (r *challengesRepo) UpdateChallengeState(ctx context.Context, ch domain.Challenge) error {
	res, err := r.c.exec(ctx, `
		UPDATE challenges
		SET status = ?, notes = ?, verified_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		string(ch.Status), ch.Notes, nullTime(ch.VerifiedAt), nullTime(ch.CompletedAt), ch.UpdatedAt.UTC(), ch.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *challengesRepo) AssignUser(ctx context.Context, challengeID, userID string, now time.Time) error {
	res, err := r.c.exec(ctx, `
		UPDATE challenges SET user_id = ?, updated_at = ?
		WHERE id = ? AND user_id IS NULL`,
		userID, now.UTC(), challengeID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var one int
	err = r.c.queryRow(ctx, `SELECT 1 FROM challenges WHERE id = ?`, challengeID).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrNotFound
	case err != nil:
		return err
	}
	return store.ErrConflict
}

func (r *challengesRepo) SetDocumentRefs(ctx context.Context, challengeID string, refs []domain.DocumentRef, now time.Time) error {
	raw, err := toJSON(nonNilRefs(refs))
	if err != nil {
		return err
	}
	res, err := r.c.exec(ctx,
		`UPDATE challenges SET document_refs = ?, updated_at = ? WHERE id = ?`,
		raw, now.UTC(), challengeID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func nonNilRefs(refs []domain.DocumentRef) []domain.DocumentRef {
	if refs == nil {
		return []domain.DocumentRef{}
	}
	return refs
}
