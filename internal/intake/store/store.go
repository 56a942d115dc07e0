package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is returned when a guarded write finds the row in a state
	// that forbids it, e.g. assigning an owner to a challenge that has one.
	ErrConflict = errors.New("store: conflict")

	ErrEmailTaken    = fmt.Errorf("%w: email", ErrAlreadyExists)
	ErrUsernameTaken = fmt.Errorf("%w: username", ErrAlreadyExists)
)

// Store is the root data access interface implemented by the sqlite and
// postgres drivers. Repositories are reached through it so a transaction
// hands out the same repositories bound to the tx.
type Store interface {
	Users() Users
	Challenges() Challenges
	Documents() Documents

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller must Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	// Inside fn only the repositories of tx may be used.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Page bounds a list query. Limit 0 means no limit.
type Page struct {
	Limit  int
	Offset int
}

type UserFilter struct {
	Search string // substring of email, username or name; case-insensitive
	Role   domain.Role
	IDs    []string // restrict to these ids, order is not preserved
	Page
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser returns ErrEmailTaken or ErrUsernameTaken on a unique clash.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser writes profile fields, role and updated_at. Email,
	// username and password hash are left as they are.
	UpdateUser(ctx context.Context, u domain.User) error

	// ListUsers returns one page ordered by created_at desc and the total
	// number of matches.
	ListUsers(ctx context.Context, f UserFilter) ([]domain.User, int, error)
}

type ChallengeFilter struct {
	UserID string
	Status domain.ChallengeStatus
	Search string   // substring of name or email; case-insensitive
	IDs    []string // restrict to these ids
	Page
}

type Challenges interface {
	// CreateChallenge inserts c including submitted_at, which no later
	// write touches.
	CreateChallenge(ctx context.Context, c domain.Challenge) error

	GetChallengeByID(ctx context.Context, id string) (domain.Challenge, error)

	// ListChallenges returns one page, most recently submitted first, and
	// the total number of matches.
	ListChallenges(ctx context.Context, f ChallengeFilter) ([]domain.Challenge, int, error)

	// UpdateChallengeState writes status, notes, verified_at, completed_at
	// and updated_at.
	UpdateChallengeState(ctx context.Context, c domain.Challenge) error

	// AssignUser sets the owner only while it is unset. It returns
	// ErrConflict when the challenge already has an owner.
	AssignUser(ctx context.Context, challengeID, userID string, now time.Time) error

	// SetDocumentRefs replaces the ordered document list.
	SetDocumentRefs(ctx context.Context, challengeID string, refs []domain.DocumentRef, now time.Time) error
}

type DocumentFilter struct {
	ChallengeID string
	// OwnerID matches related_user_id or uploaded_by.
	OwnerID string
	Page
}

type Documents interface {
	CreateDocument(ctx context.Context, d domain.Document) error
	GetDocumentByID(ctx context.Context, id string) (domain.Document, error)

	// UpdateDocument writes description, tags, is_public, the two relation
	// columns and updated_at.
	UpdateDocument(ctx context.Context, d domain.Document) error

	// DeleteDocument returns ErrNotFound when no row was removed.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns matches oldest first.
	ListDocuments(ctx context.Context, f DocumentFilter) ([]domain.Document, error)

	// RelateChallengeDocumentsToUser points every document of the challenge
	// at userID and returns how many were updated.
	RelateChallengeDocumentsToUser(ctx context.Context, challengeID, userID string, now time.Time) (int64, error)

	// ListUnlinkedBefore returns documents with no challenge, no related
	// user and no uploader created before cutoff.
	ListUnlinkedBefore(ctx context.Context, cutoff time.Time) ([]domain.Document, error)
}
