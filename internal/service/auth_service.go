package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk-service/internal/auth"
	"github.com/helpdesk-kit/helpdesk-service/internal/config"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util/errorutil"
)

// AuthService verifies credentials and issues session tokens. Account
// management beyond login lives in the admin subsystem; this stays thin.
type AuthService struct {
	users  UserStore
	tokens *auth.TokenManager
	cfg    config.AuthConfig
}

// UserStore is the slice of the user repository that login and bootstrap
// seeding need.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, users UserStore) *AuthService {
	return &AuthService{
		users:  users,
		tokens: auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL()),
		cfg:    cfg,
	}
}

// Login verifies credentials and returns the user with a signed session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", apperrors.MapError(err)
	}
	if user.Status != domain.UserStatusActive {
		return nil, "", apperrors.NewForbidden("account is not active")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", apperrors.NewUnauthorized("invalid credentials")
	}

	token, _, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// EnsureBootstrapUser seeds the initial Manager account on a fresh deployment
// so the service is reachable before any admin tooling exists. It is a no-op
// when the username already exists or no bootstrap credentials are configured.
func (s *AuthService) EnsureBootstrapUser(ctx context.Context, username, password, name string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if name == "" {
		name = username
	}
	user := &domain.User{
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleManager,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the manager for session middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
