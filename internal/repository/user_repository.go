package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/parking-reservation/internal/model"
)

const userColumns = `id, email, name, phone, password_hash, role, is_active, created_at, updated_at`

// InsertUser inserts u and fills its id and timestamps. A duplicate email
// returns ErrConflict.
func (r queries) InsertUser(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	id, err := lastInsertID(r.q.ExecContext(ctx,
		"INSERT INTO users (email, name, phone, password_hash, role, is_active) VALUES (?,?,?,?,?,?)",
		u.Email, u.Name, u.Phone, u.PasswordHash, u.Role, u.IsActive))
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, r.q, u, "SELECT "+userColumns+" FROM users WHERE id=?", id)
}

// UserByEmail fetches a user by normalized email.
func (r queries) UserByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := sqlx.GetContext(ctx, r.q, &u, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	return u, err
}

// UserByID fetches a user by id.
func (r queries) UserByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := sqlx.GetContext(ctx, r.q, &u, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return u, err
}
