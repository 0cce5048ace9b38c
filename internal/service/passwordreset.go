package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/agendaclin/agendaclin/internal/clock"
	pkgcrypto "github.com/agendaclin/agendaclin/internal/crypto"
	"github.com/agendaclin/agendaclin/internal/email"
	"github.com/agendaclin/agendaclin/internal/errs"
	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/agendaclin/agendaclin/internal/repository"
)

// ResetRequestMessage is returned for every reset request, registered email or
// not, so the endpoint never reveals which addresses exist.
const ResetRequestMessage = "If the email is registered, a reset code has been sent."

// resetTokenTTL is how long an issued code stays redeemable.
const resetTokenTTL = 15 * time.Minute

// PasswordResetService issues and redeems single-use 6-digit reset codes.
type PasswordResetService interface {
	// Request issues a fresh code for the email and mails it best-effort.
	// The returned message is identical whether or not the email exists.
	Request(ctx context.Context, emailAddr string) (string, error)
	// Reset redeems a code and replaces the user's password.
	Reset(ctx context.Context, emailAddr, code, newPassword string) error
}

type PasswordResetServiceImpl struct {
	users  repository.UserRepository
	tokens repository.ResetTokenRepository
	mail   email.Sender
	clk    clock.Clock
	log    *zap.Logger
}

// NewPasswordResetService constructs PasswordResetService with required dependencies.
func NewPasswordResetService(users repository.UserRepository, tokens repository.ResetTokenRepository, mail email.Sender, clk clock.Clock, log *zap.Logger) *PasswordResetServiceImpl {
	return &PasswordResetServiceImpl{users: users, tokens: tokens, mail: mail, clk: clk, log: log}
}

// Request replaces any prior tokens of the user with a fresh one and sends
// the code by email. Delivery failure is logged, never surfaced: the token is
// already persisted and valid.
func (s *PasswordResetServiceImpl) Request(ctx context.Context, emailAddr string) (string, error) {
	emailAddr = strings.TrimSpace(strings.ToLower(emailAddr))
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			// Unknown email gets the same answer as a known one.
			return ResetRequestMessage, nil
		}
		return "", err
	}

	if err := s.tokens.DeleteByUserID(ctx, user.ID); err != nil {
		return "", err
	}

	code, err := pkgcrypto.GenerateResetCode()
	if err != nil {
		return "", err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	now := s.clk.Now()
	tok := &model.PasswordResetToken{
		ID:        id,
		UserID:    user.ID,
		Token:     code,
		ExpiresAt: now.Add(resetTokenTTL),
	}
	if err := s.tokens.Create(ctx, tok); err != nil {
		return "", err
	}

	subject := "Your password reset code"
	body := fmt.Sprintf("Use the code %s to reset your password. It expires in 15 minutes.", code)
	if err := s.mail.Send(user.Email, subject, body); err != nil {
		s.log.Warn("reset code delivery failed", zap.Error(err))
	}

	return ResetRequestMessage, nil
}

// Reset redeems a code for the given email. Check order is observable
// behavior: existence/ownership, then used, then expiry — an expired token
// that was already consumed reports invalid, not expired.
func (s *PasswordResetServiceImpl) Reset(ctx context.Context, emailAddr, code, newPassword string) error {
	emailAddr = strings.TrimSpace(strings.ToLower(emailAddr))
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrUserNotFound
		}
		return err
	}

	tok, err := s.tokens.GetByToken(ctx, code)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrInvalidResetToken
		}
		return err
	}
	if tok.UserID != user.ID {
		return errs.ErrInvalidResetToken
	}
	if tok.UsedAt != nil {
		return errs.ErrInvalidResetToken
	}
	now := s.clk.Now()
	if tok.ExpiresAt.Before(now) {
		return errs.ErrResetTokenExpired
	}

	hash, err := pkgcrypto.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	return s.tokens.MarkUsed(ctx, tok.ID, now)
}
