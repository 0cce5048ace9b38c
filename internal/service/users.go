package service

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/agendaclin/agendaclin/internal/errs"
	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/agendaclin/agendaclin/internal/repository"
)

// UserAdminService exposes administrative account operations. Both operations
// require the caller to carry the admin role; there is no per-operation
// identity list.
type UserAdminService interface {
	// ListUsers returns every account.
	ListUsers(ctx context.Context, callerID uuid.UUID) ([]model.User, error)
	// DeactivateUser soft-deactivates an account.
	DeactivateUser(ctx context.Context, callerID, userID uuid.UUID) error
}

type UserAdminServiceImpl struct {
	users repository.UserRepository
}

// NewUserAdminService constructs UserAdminService.
func NewUserAdminService(users repository.UserRepository) *UserAdminServiceImpl {
	return &UserAdminServiceImpl{users: users}
}

func (s *UserAdminServiceImpl) requireAdmin(ctx context.Context, callerID uuid.UUID) error {
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrNotAllowed
		}
		return err
	}
	if caller.Role != model.RoleAdmin || caller.DeactivatedAt != nil {
		return errs.ErrNotAllowed
	}
	return nil
}

func (s *UserAdminServiceImpl) ListUsers(ctx context.Context, callerID uuid.UUID) ([]model.User, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *UserAdminServiceImpl) DeactivateUser(ctx context.Context, callerID, userID uuid.UUID) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	if callerID == userID {
		return errors.New("validation: cannot deactivate own account")
	}
	err := s.users.Deactivate(ctx, userID)
	if errors.Is(err, errs.ErrNotFound) {
		return errs.ErrUserNotFound
	}
	return err
}
