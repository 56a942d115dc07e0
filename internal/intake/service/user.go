package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/access"
	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/search"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/aussiebroadwan/leadflow/pkg/cryptox"
	"github.com/aussiebroadwan/leadflow/pkg/idx"
	"github.com/aussiebroadwan/leadflow/pkg/slogx"
)

type UserService struct {
	Store  store.Store
	Search search.Index
	Now    func() time.Time
}

// UserUpdate holds the editable user fields; nil leaves a field unchanged.
// Role is applied only for admins and silently ignored otherwise.
type UserUpdate struct {
	Name             *string                  `json:"name" validate:"omitnil,max=200"`
	Phone            *string                  `json:"phone" validate:"omitnil,max=50"`
	Address          *string                  `json:"address" validate:"omitnil,max=500"`
	EmploymentStatus *domain.EmploymentStatus `json:"employmentStatus"`
	AnnualIncome     *int64                   `json:"annualIncome" validate:"omitnil,gte=0"`
	Role             *domain.Role             `json:"role" validate:"omitnil,oneof=admin client"`
}

type NewUser struct {
	Email    string      `json:"email" validate:"required,email,max=320"`
	Username string      `json:"username" validate:"required,username,max=64"`
	Password string      `json:"password" validate:"required,password"`
	Role     domain.Role `json:"role" validate:"required,oneof=admin client"`
	Name     string      `json:"name" validate:"max=200"`
	Phone    string      `json:"phone" validate:"max=50"`
}

type UserQuery struct {
	Search string
	Role   domain.Role
	PageRequest
}

// GetUser returns the user if p is that user or an admin.
func (s *UserService) GetUser(ctx context.Context, p domain.Principal, id string) (domain.User, error) {
	if !access.Evaluate(p, access.User, access.Read, id).Permits() {
		return domain.User{}, ErrAccessDenied
	}
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, notFound(err, ErrUserNotFound)
	}
	return u, nil
}

// UpdateUser applies upd to the user. A role change from a non-admin is
// dropped and the remaining fields are still applied.
func (s *UserService) UpdateUser(ctx context.Context, p domain.Principal, id string, upd UserUpdate) (domain.User, error) {
	if !access.Evaluate(p, access.User, access.Update, id).Permits() {
		return domain.User{}, ErrAccessDenied
	}
	if err := validateStruct(upd); err != nil {
		return domain.User{}, err
	}
	if upd.EmploymentStatus != nil && !upd.EmploymentStatus.Valid() {
		return domain.User{}, invalidField("employmentStatus", "must be one of: employed, self-employed, contractor, unemployed, retired")
	}

	var u domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		u, err = tx.Users().GetUserByID(ctx, id)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}

		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.Phone != nil {
			u.Phone = *upd.Phone
		}
		if upd.Address != nil {
			u.Address = *upd.Address
		}
		if upd.EmploymentStatus != nil {
			u.EmploymentStatus = *upd.EmploymentStatus
		}
		if upd.AnnualIncome != nil {
			income := *upd.AnnualIncome
			u.AnnualIncome = &income
		}
		if upd.Role != nil && *upd.Role != u.Role {
			if access.Evaluate(p, access.User, access.UpdateRole, id) == access.Allow {
				u.Role = *upd.Role
			} else {
				slogx.FromContext(ctx).Info("ignoring role change from non-admin",
					slog.String("user_id", id),
					slog.String("principal_id", domain.PrincipalID(p)),
				)
			}
		}
		u.UpdatedAt = clock(s.Now)
		return tx.Users().UpdateUser(ctx, u)
	})
	if err != nil {
		return domain.User{}, err
	}

	indexUsers(ctx, s.Search, u)
	return u, nil
}

// CreateUser registers an account. Admin only; the operator CLI calls it
// with domain.System().
func (s *UserService) CreateUser(ctx context.Context, p domain.Principal, in NewUser) (domain.User, error) {
	if access.Evaluate(p, access.User, access.Create, "") != access.Allow {
		return domain.User{}, ErrAccessDenied
	}
	if err := validateStruct(in); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := clock(s.Now)
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        domain.NormalizeEmail(in.Email),
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		Name:         in.Name,
		Phone:        in.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			return domain.User{}, ErrEmailInUse
		case errors.Is(err, store.ErrUsernameTaken):
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	slogx.FromContext(ctx).Info("user created",
		slog.String("user_id", u.ID),
		slog.String("role", string(u.Role)),
		slog.String("created_by", domain.PrincipalID(p)),
	)
	indexUsers(ctx, s.Search, u)
	return u, nil
}

// ListUsers is the admin user directory.
func (s *UserService) ListUsers(ctx context.Context, p domain.Principal, q UserQuery) (Page[domain.User], error) {
	if access.Evaluate(p, access.User, access.List, "") != access.Allow {
		return Page[domain.User]{}, ErrAccessDenied
	}
	if q.Role != "" && !q.Role.Valid() {
		return Page[domain.User]{}, invalidField("role", "must be one of: admin, client")
	}

	page := q.storePage()
	if q.Search != "" && s.Search != nil && s.Search.Healthy() {
		hits, err := s.Search.SearchUsers(ctx, search.Query{
			Text:    q.Search,
			Filters: map[string]string{"role": string(q.Role)},
			Limit:   page.Limit,
			Offset:  page.Offset,
		})
		if err == nil {
			items, _, err := s.Store.Users().ListUsers(ctx, store.UserFilter{IDs: hits.IDs})
			if err != nil {
				return Page[domain.User]{}, fmt.Errorf("load users: %w", err)
			}
			items = orderByIDs(items, hits.IDs, func(u domain.User) string { return u.ID })
			return newPage(items, hits.Total, q.PageRequest), nil
		}
		slogx.FromContext(ctx).Warn("user search failed, falling back to sql", slog.Any("error", err))
	}

	items, total, err := s.Store.Users().ListUsers(ctx, store.UserFilter{
		Search: q.Search,
		Role:   q.Role,
		Page:   page,
	})
	if err != nil {
		return Page[domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	return newPage(items, total, q.PageRequest), nil
}
