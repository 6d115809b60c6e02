package repo

import (
	"context"
	"time"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

const columns = `id, state, role, name, email, email_confirmed_at, email_confirmation_token,
	password_hash, password_reset_at, password_reset_token, last_authenticated_at,
	created_at, created_by_id, last_updated_at, last_updated_by_id`

// UserRepo provides data access for the users table. It runs against
// whatever handle it is given, normally the request transaction.
type UserRepo struct {
	db database.Queryer
}

func NewUserRepo(db database.Queryer) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  state TEXT NOT NULL DEFAULT 'pending',
  role TEXT NOT NULL DEFAULT 'contributor',
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  email_confirmed_at TIMESTAMPTZ,
  email_confirmation_token TEXT UNIQUE,
  password_hash TEXT NOT NULL,
  password_reset_at TIMESTAMPTZ,
  password_reset_token TEXT UNIQUE,
  last_authenticated_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  created_by_id BIGINT REFERENCES users(id),
  last_updated_at TIMESTAMPTZ,
  last_updated_by_id BIGINT REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_users_state ON users(state);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Get returns the user with id or sql.ErrNoRows.
func (r *UserRepo) Get(ctx context.Context, id int64) (*entity.User, error) {
	return r.one(ctx, `SELECT `+columns+` FROM users WHERE id=$1`, id)
}

// GetByEmail returns a user matched by lower-cased email or sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.one(ctx, `SELECT `+columns+` FROM users WHERE email=LOWER($1)`, email)
}

// GetByConfirmationToken returns the user awaiting confirmation with token or sql.ErrNoRows.
func (r *UserRepo) GetByConfirmationToken(ctx context.Context, token string) (*entity.User, error) {
	return r.one(ctx, `SELECT `+columns+` FROM users WHERE email_confirmation_token=$1`, token)
}

func (r *UserRepo) one(ctx context.Context, q string, args ...any) (*entity.User, error) {
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, args...); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns a page of users ordered by id.
func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]*entity.User, error) {
	q := `SELECT ` + columns + ` FROM users ORDER BY id ASC OFFSET $1 LIMIT $2`
	users := []*entity.User{}
	if err := r.db.SelectContext(ctx, &users, q, offset, limit); err != nil {
		return nil, err
	}
	return users, nil
}

// Insert stores a new user and sets its ID.
func (r *UserRepo) Insert(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (state, role, name, email, email_confirmation_token, password_hash,
		password_reset_token, created_at, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	return r.db.GetContext(ctx, &u.ID, q,
		u.State, u.Role, u.Name, u.Email, u.EmailConfirmationToken, u.PasswordHash,
		u.PasswordResetToken, u.CreatedAt, u.CreatedByID)
}

// Update writes every mutable column of u.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	const q = `UPDATE users SET state=$2, role=$3, name=$4, email=$5, email_confirmed_at=$6,
		email_confirmation_token=$7, password_hash=$8, password_reset_at=$9, password_reset_token=$10,
		last_updated_at=$11, last_updated_by_id=$12
		WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, u.ID,
		u.State, u.Role, u.Name, u.Email, u.EmailConfirmedAt,
		u.EmailConfirmationToken, u.PasswordHash, u.PasswordResetAt, u.PasswordResetToken,
		u.LastUpdatedAt, u.LastUpdatedByID)
	return err
}

// MarkAuthenticated stamps a successful sign-in.
func (r *UserRepo) MarkAuthenticated(ctx context.Context, id int64, at time.Time) error {
	const q = `UPDATE users SET last_authenticated_at=$2 WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, id, at)
	return err
}
