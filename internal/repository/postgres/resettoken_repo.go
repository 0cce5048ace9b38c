package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/agendaclin/agendaclin/internal/errs"
	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// ResetTokenRepo implements ResetTokenRepository using PostgreSQL.
type ResetTokenRepo struct{ db *DB }

// NewResetTokenRepo constructs a reset token repository.
func NewResetTokenRepo(db *DB) *ResetTokenRepo { return &ResetTokenRepo{db: db} }

// Create inserts a new token row.
func (r *ResetTokenRepo) Create(ctx context.Context, t *model.PasswordResetToken) error {
	const q = `
INSERT INTO password_reset_tokens (id, user_id, token, expires_at)
VALUES ($1, $2, $3, $4)
RETURNING created_at`
	err := r.db.Pool.QueryRow(ctx, q, t.ID, t.UserID, t.Token, t.ExpiresAt).
		Scan(&t.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByToken selects a token by its code string.
func (r *ResetTokenRepo) GetByToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	const q = `
SELECT id, user_id, token, expires_at, used_at, created_at
FROM password_reset_tokens WHERE token=$1`
	var t model.PasswordResetToken
	err := r.db.Pool.QueryRow(ctx, q, token).
		Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteByUserID removes every token of a user. Deleting zero rows is fine.
func (r *ResetTokenRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	const q = `DELETE FROM password_reset_tokens WHERE user_id=$1`
	_, err := r.db.Pool.Exec(ctx, q, userID)
	return err
}

// MarkUsed sets used_at on an unused token.
func (r *ResetTokenRepo) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	const q = `
UPDATE password_reset_tokens SET used_at=$2
WHERE id=$1 AND used_at IS NULL`
	tag, err := r.db.Pool.Exec(ctx, q, id, usedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrInvalidResetToken
	}
	return nil
}
