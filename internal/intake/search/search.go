// Package search keeps the admin directory (users and challenges) in a
// full-text index. The service layer treats the index as optional and falls
// back to SQL LIKE queries whenever it is unhealthy or fails.
package search

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
)

var ErrUnavailable = errors.New("search: index unavailable")

type UserRecord struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type ChallengeRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Status      string `json:"status"`
	UserID      string `json:"userId"`
	SubmittedAt int64  `json:"submittedAt"`
}

func UserRecordOf(u domain.User) UserRecord {
	return UserRecord{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		Name:     u.Name,
		Role:     string(u.Role),
	}
}

func ChallengeRecordOf(c domain.Challenge) ChallengeRecord {
	return ChallengeRecord{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Status:      string(c.Status),
		UserID:      c.UserID,
		SubmittedAt: c.SubmittedAt.UTC().UnixMilli(),
	}
}

// Query is a free-text query with exact-match filters. Empty filters are
// ignored.
type Query struct {
	Text    string
	Filters map[string]string
	Limit   int
	Offset  int
}

// Hits are matching ids in rank order plus the estimated total.
type Hits struct {
	IDs   []string
	Total int
}

type Index interface {
	Healthy() bool
	IndexUsers(ctx context.Context, users ...UserRecord) error
	IndexChallenges(ctx context.Context, challenges ...ChallengeRecord) error
	SearchUsers(ctx context.Context, q Query) (Hits, error)
	SearchChallenges(ctx context.Context, q Query) (Hits, error)
	Close()
}

// Disabled is the index used when no search backend is configured.
type Disabled struct{}

func (Disabled) Healthy() bool { return false }

func (Disabled) IndexUsers(context.Context, ...UserRecord) error { return nil }

func (Disabled) IndexChallenges(context.Context, ...ChallengeRecord) error { return nil }

func (Disabled) SearchUsers(context.Context, Query) (Hits, error) { return Hits{}, ErrUnavailable }

func (Disabled) SearchChallenges(context.Context, Query) (Hits, error) {
	return Hits{}, ErrUnavailable
}

func (Disabled) Close() {}

const defaultHealthInterval = 10 * time.Second
