package repository

import (
	"context"

	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides CRUD access for practitioner accounts.
type UserRepository interface {
	// Create inserts a new user. Returns errs.ErrEmailTaken on duplicate email.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdatePassword replaces the stored password digest.
	UpdatePassword(ctx context.Context, id uuid.UUID, pwdHash []byte) error
	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]model.User, error)
	// Deactivate sets deactivated_at for an active user.
	Deactivate(ctx context.Context, id uuid.UUID) error
}
