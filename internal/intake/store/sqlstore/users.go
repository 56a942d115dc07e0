package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
)

const userColumns = `id, email, username, password_hash, role, name, phone, address,
	employment_status, annual_income, created_at, updated_at`

var userConflicts = map[string]error{
	"email":    store.ErrEmailTaken,
	"username": store.ErrUsernameTaken,
}

type usersRepo struct {
	c conn
}

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u      domain.User
		role   string
		emp    string
		income sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &role, &u.Name, &u.Phone,
		&u.Address, &emp, &income, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	u.EmploymentStatus = domain.EmploymentStatus(emp)
	u.AnnualIncome = intPtr(income)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) getBy(ctx context.Context, cond string, arg any) (domain.User, error) {
	u, err := scanUser(r.c.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+cond, arg))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getBy(ctx, `id = ?`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getBy(ctx, `lower(email) = lower(?)`, email)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getBy(ctx, `username = ?`, username)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.c.exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, u.PasswordHash, string(u.Role), u.Name, u.Phone, u.Address,
		string(u.EmploymentStatus), nullInt(u.AnnualIncome), u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	return r.c.mapWriteErr(err, userConflicts)
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	res, err := r.c.exec(ctx, `
		UPDATE users
		SET role = ?, name = ?, phone = ?, address = ?, employment_status = ?,
		    annual_income = ?, updated_at = ?
		WHERE id = ?`,
		string(u.Role), u.Name, u.Phone, u.Address, string(u.EmploymentStatus),
		nullInt(u.AnnualIncome), u.UpdatedAt.UTC(), u.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) ListUsers(ctx context.Context, f store.UserFilter) ([]domain.User, int, error) {
	var w where
	if f.Search != "" {
		p := likePattern(f.Search)
		w.add(`(lower(email) LIKE ? ESCAPE '\' OR lower(username) LIKE ? ESCAPE '\' OR lower(name) LIKE ? ESCAPE '\')`, p, p, p)
	}
	if f.Role != "" {
		w.add(`role = ?`, string(f.Role))
	}
	if f.IDs != nil {
		w.in("id", f.IDs)
	}

	var total int
	if err := r.c.queryRow(ctx, `SELECT COUNT(*) FROM users`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.c.query(ctx,
		`SELECT `+userColumns+` FROM users`+w.String()+` ORDER BY created_at DESC, id DESC`+limitClause(f.Page),
		w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
