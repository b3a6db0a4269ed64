// Package service provides the business logic for accounts, sessions and
// tasks, delegating persistence to repository interfaces and translating
// storage faults into apperrors values.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/atinyakov/TaskKeeper/internal/apperrors"
	"github.com/atinyakov/TaskKeeper/internal/auth"
	"github.com/atinyakov/TaskKeeper/internal/logger"
	"github.com/atinyakov/TaskKeeper/internal/models"
	"github.com/atinyakov/TaskKeeper/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserRepository defines the persistence operations
// required by the authentication service.
type UserRepository interface {
	// CreateUser stores a new user. It returns repository.ErrDuplicate
	// when the username is taken.
	CreateUser(ctx context.Context, u *models.User) error
	// FindUserByUsername returns repository.ErrNotFound for unknown usernames.
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	// FindUserByID returns repository.ErrNotFound for unknown ids.
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// TokenManager mints and parses session tokens.
type TokenManager interface {
	Issue(userID, username string) (string, error)
	Parse(token string) (*auth.Claims, error)
}

// dummySalt is hashed against when a username is unknown so that both
// negative outcomes of ValidateCredentials cost one hash computation.
var dummySalt = make([]byte, auth.SaltSize)

// AuthService implements signup, signin and token verification.
type AuthService struct {
	repo   UserRepository
	tokens TokenManager
	now    func() time.Time
}

// NewAuthService constructs a new AuthService using the provided repository
// and token manager.
func NewAuthService(repo UserRepository, tokens TokenManager) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, now: time.Now}
}

// SignUp creates an account for username with a freshly salted password hash.
// A taken username yields apperrors.ErrConflict.
func (s *AuthService) SignUp(ctx context.Context, username, password string) error {
	log := logger.FromContext(ctx)

	salt, err := auth.GenerateSalt()
	if err != nil {
		log.Error("failed to generate salt", zap.Error(err))
		return apperrors.Internal("failed to create user", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Salt:         salt,
		PasswordHash: auth.HashPassword(password, salt),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Warn("username already exists", zap.String("username", username))
			return apperrors.Conflict("username already exists")
		}
		log.Error("failed to create user", zap.String("username", username), zap.Error(err))
		return apperrors.Internal("failed to create user", err)
	}

	log.Info("user created", zap.String("username", u.Username), zap.String("user_id", u.ID))
	return nil
}

// ValidateCredentials returns the user when password matches, and nil, nil
// when the username is unknown or the password is wrong. The two negative
// cases are indistinguishable to the caller.
func (s *AuthService) ValidateCredentials(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.repo.FindUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		auth.VerifyPassword(password, dummySalt, nil)
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).Error("failed to look up user", zap.Error(err))
		return nil, apperrors.Internal("failed to validate credentials", err)
	}

	if !auth.VerifyPassword(password, u.Salt, u.PasswordHash) {
		return nil, nil
	}
	return u, nil
}

// SignIn validates the credentials and returns a signed access token.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (string, error) {
	log := logger.FromContext(ctx)

	u, err := s.ValidateCredentials(ctx, username, password)
	if err != nil {
		return "", err
	}
	if u == nil {
		log.Warn("invalid login credentials", zap.String("username", username))
		return "", apperrors.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		log.Error("failed to generate token", zap.String("user_id", u.ID), zap.Error(err))
		return "", apperrors.Internal("could not generate token", err)
	}

	log.Info("token issued", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return token, nil
}

// Verify checks token and resolves it to the live user record. Accounts
// that no longer exist, or whose username changed, are rejected.
func (s *AuthService) Verify(ctx context.Context, token string) (*models.User, error) {
	log := logger.FromContext(ctx)

	claims, err := s.tokens.Parse(token)
	if err != nil {
		log.Debug("token rejected", zap.Error(err))
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	u, err := s.repo.FindUserByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && u.Username != claims.Username) {
		log.Warn("token for unknown user", zap.String("user_id", claims.UserID))
		return nil, apperrors.Unauthorized("invalid or expired token")
	}
	if err != nil {
		log.Error("failed to resolve token user", zap.Error(err))
		return nil, apperrors.Internal("failed to verify token", err)
	}
	return u, nil
}
