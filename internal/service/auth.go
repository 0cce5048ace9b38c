package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/agendaclin/agendaclin/internal/crypto"
	"github.com/agendaclin/agendaclin/internal/errs"
	"github.com/agendaclin/agendaclin/internal/limiter"
	"github.com/agendaclin/agendaclin/internal/model"
	"github.com/agendaclin/agendaclin/internal/repository"
)

// Tokens collects an issued access token and its expiry.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}

// AuthService defines account registration and authentication.
type AuthService interface {
	// Register creates a new practitioner account with secure password hashing.
	Register(ctx context.Context, email, password, name string) (userID string, err error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, email, password, ip string) (Tokens, model.User, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim}
}

// Register creates a new user record. New accounts always get the
// practitioner role; admins are promoted out of band.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password, name string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" || name == "" {
		return "", errors.New("empty email/password/name")
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return "", err
	}

	u := &model.User{
		ID:      id,
		Email:   email,
		PwdHash: hash,
		Name:    name,
		Role:    model.RolePractitioner,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	return id.String(), nil
}

// LoginWithIP authenticates with failed-attempt limiting by (email, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, email, password, ip string) (Tokens, model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return Tokens{}, model.User{}, err
	}
	if !allowed {
		return Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return Tokens{}, model.User{}, err
	}
	if err != nil || u.DeactivatedAt != nil || !pkgcrypto.VerifyPassword(password, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// unknown email, deactivated account and wrong password are one answer
		return Tokens{}, model.User{}, errs.ErrInvalidCredentials
	}

	_ = s.lim.Success(ctx, email, ipHash)

	access, exp, err := s.issueAccessToken(u.ID)
	if err != nil {
		return Tokens{}, model.User{}, err
	}
	return Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}
