package postgres

import (
	"context"
	"errors"

	"github.com/agendaclin/agendaclin/internal/errs"
	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, email, pwd_hash, name, role, deactivated_at, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PwdHash, &u.Name, &u.Role,
		&u.DeactivatedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, email, pwd_hash, name, role)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, u.ID, u.Email, u.PwdHash, u.Name, u.Role).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return errs.ErrEmailTaken
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id=$1`
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	return u, err
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email=$1`
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	return u, err
}

// UpdatePassword replaces the stored password digest.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, pwdHash []byte) error {
	const q = `UPDATE users SET pwd_hash=$2, updated_at=now() WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, pwdHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// List returns all users ordered by creation time.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users ORDER BY created_at ASC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PwdHash, &u.Name, &u.Role,
			&u.DeactivatedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Deactivate sets deactivated_at on an active user.
func (r *UserRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	const q = `
UPDATE users SET deactivated_at=now(), updated_at=now()
WHERE id=$1 AND deactivated_at IS NULL`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
