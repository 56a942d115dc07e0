package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/events"
	"github.com/aussiebroadwan/leadflow/internal/intake/search"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/aussiebroadwan/leadflow/pkg/cryptox"
	"github.com/aussiebroadwan/leadflow/pkg/idx"
	"github.com/aussiebroadwan/leadflow/pkg/slogx"
)

const (
	DefaultLoginPath = "/login"
	DefaultClaimPath = "/claim"

	usernameSlugMax     = 20
	usernameSuffixLen   = 4
	maxUsernameAttempts = 5
)

// IdentityService decides whether a submission belongs to an existing
// account and lets an unmatched submitter claim it by creating one.
type IdentityService struct {
	Store     store.Store
	Events    events.Publisher
	Search    search.Index
	LoginPath string
	ClaimPath string
	Now       func() time.Time
}

type Resolution struct {
	RedirectTarget string
	Challenge      domain.Challenge
}

type ClaimResult struct {
	User           domain.User
	Challenge      domain.Challenge
	RedirectTarget string
}

func redirect(base, fallback, challengeID string) string {
	if base == "" {
		base = fallback
	}
	return base + "?challenge=" + url.QueryEscape(challengeID)
}

func (s *IdentityService) loginTarget(id string) string {
	return redirect(s.LoginPath, DefaultLoginPath, id)
}

func (s *IdentityService) claimTarget(id string) string {
	return redirect(s.ClaimPath, DefaultClaimPath, id)
}

// Resolve links the challenge to the account registered under its email,
// if any, and marks it verified. Unmatched challenges are left as they are
// and the submitter is sent to claim them.
func (s *IdentityService) Resolve(ctx context.Context, challengeID string) (Resolution, error) {
	log := slogx.FromContext(ctx)

	c, err := s.Store.Challenges().GetChallengeByID(ctx, challengeID)
	if err != nil {
		return Resolution{}, notFound(err, ErrChallengeNotFound)
	}
	if c.UserID != "" {
		return Resolution{RedirectTarget: s.loginTarget(c.ID), Challenge: c}, nil
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(c.Email))
	if errors.Is(err, store.ErrNotFound) {
		log.Info("challenge awaits claim", slog.String("challenge_id", c.ID))
		return Resolution{RedirectTarget: s.claimTarget(c.ID), Challenge: c}, nil
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("lookup user by email: %w", err)
	}

	now := clock(s.Now)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Challenges().AssignUser(ctx, c.ID, u.ID, now); err != nil && !errors.Is(err, store.ErrConflict) {
			return notFound(err, ErrChallengeNotFound)
		}
		cur, err := tx.Challenges().GetChallengeByID(ctx, c.ID)
		if err != nil {
			return notFound(err, ErrChallengeNotFound)
		}
		c = cur
		if c.UserID != u.ID {
			// Claimed concurrently by someone else; leave it alone.
			return nil
		}
		return transition(ctx, tx, &c, domain.StatusVerified, now)
	})
	if err != nil {
		return Resolution{}, err
	}

	log.Info("challenge linked to existing user",
		slog.String("challenge_id", c.ID),
		slog.String("user_id", c.UserID),
	)
	publish(ctx, s.Events, challengeEvent(events.ChallengeVerified, c))
	indexChallenges(ctx, s.Search, c)
	return Resolution{RedirectTarget: s.loginTarget(c.ID), Challenge: c}, nil
}

// ClaimChallenge creates a client account for the challenge's email with
// password, assigns the challenge to it and retargets its documents.
func (s *IdentityService) ClaimChallenge(ctx context.Context, challengeID, password string) (ClaimResult, error) {
	log := slogx.FromContext(ctx)

	// 1. Check the password policy
	if err := validateVar("password", password, "required,password"); err != nil {
		return ClaimResult{}, err
	}

	// 2. Challenge must exist and be unowned
	c, err := s.Store.Challenges().GetChallengeByID(ctx, challengeID)
	if err != nil {
		return ClaimResult{}, notFound(err, ErrChallengeNotFound)
	}
	if c.UserID != "" {
		return ClaimResult{}, ErrAlreadyClaimed
	}
	// 3. The email must not belong to an account yet
	if _, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(c.Email)); err == nil {
		return ClaimResult{}, ErrEmailInUse
	} else if !errors.Is(err, store.ErrNotFound) {
		return ClaimResult{}, fmt.Errorf("lookup user by email: %w", err)
	}

	// 4. Hash password
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return ClaimResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := clock(s.Now)
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        domain.NormalizeEmail(c.Email),
		PasswordHash: hash,
		Role:         domain.RoleClient,
		Name:         c.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 5. Create the user, assign the challenge and retarget its documents in
	// one transaction, retrying with a fresh username on collision
	var moved int64
	for attempt := 0; ; attempt++ {
		if attempt == maxUsernameAttempts {
			return ClaimResult{}, ErrUsernameTaken
		}
		if u.Username, err = GenerateUsername(c.Name); err != nil {
			return ClaimResult{}, err
		}

		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			// 1. Create user
			if err := tx.Users().CreateUser(ctx, u); err != nil {
				switch {
				case errors.Is(err, store.ErrEmailTaken):
					return ErrEmailInUse
				case errors.Is(err, store.ErrUsernameTaken):
					return ErrUsernameTaken
				}
				return fmt.Errorf("create user: %w", err)
			}
			// 2. Assign owner, guarded against a concurrent claim
			if err := tx.Challenges().AssignUser(ctx, c.ID, u.ID, now); err != nil {
				if errors.Is(err, store.ErrConflict) {
					return ErrAlreadyClaimed
				}
				return notFound(err, ErrChallengeNotFound)
			}
			cur, err := tx.Challenges().GetChallengeByID(ctx, c.ID)
			if err != nil {
				return notFound(err, ErrChallengeNotFound)
			}
			c = cur
			if err := transition(ctx, tx, &c, domain.StatusVerified, now); err != nil {
				return err
			}

			// 3. Documents of the challenge now belong to the user
			moved, err = tx.Documents().RelateChallengeDocumentsToUser(ctx, c.ID, u.ID, now)
			return err
		})
		if errors.Is(err, ErrUsernameTaken) {
			log.Debug("generated username taken, retrying", slog.String("username", u.Username))
			continue
		}
		break
	}
	if err != nil {
		return ClaimResult{}, err
	}

	// 6. Announce and index
	log.Info("challenge claimed",
		slog.String("challenge_id", c.ID),
		slog.String("user_id", u.ID),
		slog.Int64("documents", moved),
	)
	publish(ctx, s.Events, challengeEvent(events.ChallengeClaimed, c))
	indexUsers(ctx, s.Search, u)
	indexChallenges(ctx, s.Search, c)
	return ClaimResult{User: u, Challenge: c, RedirectTarget: s.loginTarget(c.ID)}, nil
}

// GenerateUsername derives "<slug>-<suffix>" from a display name, where slug
// is the lower-cased name with runs of other characters collapsed to '-'.
func GenerateUsername(name string) (string, error) {
	slug := Slugify(name)
	suffix, err := cryptox.RandomSuffix(usernameSuffixLen)
	if err != nil {
		return "", fmt.Errorf("generate username: %w", err)
	}
	return slug + "-" + suffix, nil
}

func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= usernameSlugMax {
			break
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > usernameSlugMax {
		slug = strings.Trim(slug[:usernameSlugMax], "-")
	}
	if slug == "" {
		return "user"
	}
	return slug
}
