// Package service — user management business logic.
package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/sakif/user-auth/internal/apperror"
	"github.com/sakif/user-auth/internal/auth"
	"github.com/sakif/user-auth/internal/model"
	"github.com/sakif/user-auth/internal/repository"
)

// Validation constants.
const (
	MinPasswordLength = 6
	// bcrypt only hashes the first 72 bytes. We reject longer passwords
	// rather than silently truncating them.
	MaxPasswordLength = 72

	DefaultRole = "user"
)

// emailPattern is a deliberately loose format check: something, an @,
// something, a dot, something. Real validation is the uniqueness constraint
// plus whatever mail delivery the surrounding system does.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserService handles user-management business logic: registration,
// lookups, and password updates.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// RegisterInput carries the registration fields. DOB, Phone, and Role are
// optional; Role defaults to "user".
type RegisterInput struct {
	Username string
	Email    string
	Password string
	DOB      string
	Phone    string
	Role     string
}

// Register validates the input, hashes the password, and inserts the user.
//
// The stored credential is ALWAYS a bcrypt hash — plaintext rows can only
// exist from legacy inserts that predate this code path.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" || email == "" || in.Password == "" {
		return nil, apperror.ValidationFailed("credentials", "username, email, and password are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperror.ValidationFailed("email", "invalid email format")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = DefaultRole
	}

	hashed, err := s.passwords.Hash(in.Password)
	if err != nil {
		s.logger.Error("register: hashing failed", slog.String("error", err.Error()))
		return nil, apperror.Server(msgServerFailure, err)
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: hashed,
		DOB:      strings.TrimSpace(in.DOB),
		Phone:    strings.TrimSpace(in.Phone),
		Role:     role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("register: insert failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Server("Failed to add user. Please try again later.", err)
	}

	s.logger.Info("user registered",
		slog.Int64("userId", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// GetByUsername returns the user with the given username.
// Unlike the login path, enumeration is acceptable here — the route sits
// behind authentication — so not-found surfaces as a plain 404.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, s.lookupError(err, "username", username)
	}
	return user, nil
}

// GetByID returns the user with the given id. Non-positive ids are rejected
// before the store is touched.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "invalid user ID")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "id", strconv.FormatInt(id, 10))
	}
	return user, nil
}

// UpdatePassword replaces the user's credential with a bcrypt hash of the
// new password. Repeated calls keep the credential hashed — the operation
// is idempotent with respect to "is now hashed".
func (s *UserService) UpdatePassword(ctx context.Context, id int64, newPassword string) error {
	if id <= 0 {
		return apperror.ValidationFailed("userId", "user ID and new password are required")
	}
	if newPassword == "" {
		return apperror.ValidationFailed("newPassword", "user ID and new password are required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := s.passwords.Hash(newPassword)
	if err != nil {
		s.logger.Error("update password: hashing failed", slog.String("error", err.Error()))
		return apperror.Server(msgServerFailure, err)
	}

	affected, err := s.users.UpdatePassword(ctx, id, hashed)
	if err != nil {
		s.logger.Error("update password: store failed",
			slog.Int64("userId", id),
			slog.String("error", err.Error()),
		)
		return apperror.Server("Failed to update password. Please try again later.", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", strconv.FormatInt(id, 10))
	}

	s.logger.Info("password updated", slog.Int64("userId", id))
	return nil
}

// lookupError passes through the expected not-found case and downgrades
// anything else to a generic server error.
func (s *UserService) lookupError(err error, key, value string) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	s.logger.Error("user lookup failed",
		slog.String(key, value),
		slog.String("error", err.Error()),
	)
	return apperror.Server("Failed to retrieve user. Please try again later.", err)
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperror.ValidationFailed("password", "password must be at least 6 characters long")
	}
	if len(password) > MaxPasswordLength {
		return apperror.ValidationFailed("password", "password must be 72 characters or fewer")
	}
	return nil
}
