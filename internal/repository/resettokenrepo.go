package repository

import (
	"context"
	"time"

	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ResetTokenRepository stores one-time password reset codes.
type ResetTokenRepository interface {
	// Create inserts a new token.
	Create(ctx context.Context, t *model.PasswordResetToken) error
	// GetByToken loads a token by its code string.
	GetByToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	// DeleteByUserID removes all tokens of a user (one live issuance per user).
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	// MarkUsed sets used_at on an unused token.
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
}
