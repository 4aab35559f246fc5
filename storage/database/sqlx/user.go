package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/user"
)

const selectUsers = `
SELECT u.id, u.email, u.name, u.role, u.campus_id, c.name AS campus_name, u.is_active,
       u.password_hash, u.created_at, u.updated_at, u.last_login
FROM users u
LEFT JOIN campuses c ON c.id = u.campus_id`

var userOrderings = map[string]string{
	"name":       "u.name",
	"email":      "u.email",
	"role":       "u.role",
	"created_at": "u.created_at",
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CampusExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM campuses WHERE id = $1)`, id)
	return exists, errors.Wrap(err, "checking campus")
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	const q = `
INSERT INTO users (id, email, name, role, campus_id, is_active, password_hash, created_at, updated_at, last_login)
VALUES (:id, :email, :name, :role, :campus_id, :is_active, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, q, usr); err != nil {
		return user.User{}, writeErr(err, "inserting user")
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var cond conditions
	cond.eq("u.id", filter.ID)
	cond.eq("u.email", filter.Email)
	if len(cond.clauses) == 0 {
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	err := repo.db.GetContext(ctx, &usr, repo.db.Rebind(selectUsers+cond.String()), cond.args...)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	var cond conditions
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		cond.add("(u.name ILIKE ? OR u.email ILIKE ?)", val, val)
	}
	cond.eq("u.role", filter.Role)
	cond.eq("u.campus_id", filter.CampusID)
	if filter.IsActive != nil {
		cond.add("u.is_active = ?", *filter.IsActive)
	}

	q := selectUsers + cond.String() + orderBy(ordering, userOrderings, "u.name")
	users := make([]user.User, 0)
	if err := repo.db.SelectContext(ctx, &users, repo.db.Rebind(q), cond.args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	const q = `
UPDATE users
SET email = :email, name = :name, role = :role, campus_id = :campus_id, is_active = :is_active,
    password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, usr)
	if err != nil {
		return user.User{}, writeErr(err, "updating user")
	}
	if err = mustAffect(res, user.ErrNotFound); err != nil {
		return user.User{}, err
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err, "deleting user")
	}
	return mustAffect(res, user.ErrNotFound)
}
