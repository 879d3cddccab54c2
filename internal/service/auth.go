// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskloom/taskloom/internal/auth"
	"github.com/taskloom/taskloom/internal/model"
	"github.com/taskloom/taskloom/internal/repository"
)

// Auth service errors.
var (
	// ErrMissingFields is returned when a required field is absent.
	ErrMissingFields = errors.New("all fields are required")
	// ErrUserConflict covers a uniqueness violation on username or
	// email without disclosing which field collided.
	ErrUserConflict = errors.New("username or email already exists")
	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password so callers cannot probe for registered emails.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameRequired   = errors.New("username is required")
)

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, id int64, username, bio string) error
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
}

// TokenIssuer issues session tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// ProfileCache caches public profiles. Optional; a nil cache disables
// caching without changing behavior.
type ProfileCache interface {
	GetProfile(ctx context.Context, userID int64) (*model.Profile, error)
	SetProfile(ctx context.Context, profile *model.Profile) error
	DeleteProfile(ctx context.Context, userID int64) error
}

// AuthService orchestrates registration, login, and profile management.
type AuthService struct {
	store  UserStore
	tokens TokenIssuer
	cache  ProfileCache
	logger *slog.Logger
}

// NewAuthService creates a new AuthService. cache may be nil.
func NewAuthService(store UserStore, tokens TokenIssuer, cache ProfileCache, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:  store,
		tokens: tokens,
		cache:  cache,
		logger: logger,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new user with a hashed password and returns the
// generated user id. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (int64, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return 0, ErrMissingFields
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return 0, ErrUserConflict
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	return user.ID, nil
}

// LoginOutput carries a fresh session token and the public profile.
type LoginOutput struct {
	Token string
	User  *model.Profile
}

// Login verifies the credentials and issues a session token. An unknown
// email and a wrong password yield the identical error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginOutput, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return &LoginOutput{
		Token: token,
		User:  user.Profile(),
	}, nil
}

// GetProfile returns the public profile for the given user id.
// Reads through the profile cache when one is configured.
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	if s.cache != nil {
		if profile, _ := s.cache.GetProfile(ctx, userID); profile != nil {
			return profile, nil
		}
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	profile := user.Profile()

	if s.cache != nil {
		// Best effort; a failed cache write must not fail the read.
		_ = s.cache.SetProfile(ctx, profile)
	}

	return profile, nil
}

// UpdateProfile overwrites the username and bio of the user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, username, bio string) error {
	if username == "" {
		return ErrUsernameRequired
	}

	if err := s.store.UpdateUserProfile(ctx, userID, username, bio); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserExists):
			return ErrUserConflict
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.DeleteProfile(ctx, userID)
	}

	s.logger.Info("profile updated", "user_id", userID)

	return nil
}

// ChangePassword verifies the current password and stores a hash of the
// new one. Outstanding session tokens stay valid until they expire;
// clients are expected to discard theirs after a password change.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return ErrMissingFields
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.CheckPassword(currentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.UpdateUserPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password changed", "user_id", userID)

	return nil
}
