// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// AuthService is the login orchestrator. It composes the credential store,
// the password verifier, and the token issuer into the end-to-end
// authenticate-and-issue-token flow:
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt)
//	                   ↘ TokenService (JWT)
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sakif/user-auth/internal/apperror"
	"github.com/sakif/user-auth/internal/auth"
	"github.com/sakif/user-auth/internal/model"
	"github.com/sakif/user-auth/internal/repository"
)

// Response messages. The two credential-failure cases share ONE message on
// purpose: if "no such user" and "wrong password" read differently, an
// attacker can probe which usernames exist.
const (
	msgMissingCredentials = "username and password are required"
	msgInvalidCredentials = "invalid username or password"
	msgInactiveAccount    = "account is inactive"
	msgServerFailure      = "An error occurred. Please try again later."
)

// AuthService handles the authentication business logic.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult bundles everything the handler needs to answer a successful
// login in one response: the safe user view (credential excluded), the
// signed token, and the configured lifetime echoed back as a string.
type LoginResult struct {
	User      model.PublicUser
	Token     string
	ExpiresIn string
}

// Login runs the authentication flow:
//
//	ValidateInput → LookupUser → VerifyPassword → CheckStatus → IssueToken
//
// Every step has an error exit and every failure is terminal for the
// request. Lower-level faults (store unreachable, signing failure) are
// downgraded to a generic server error — the real cause goes to the log and
// to AppError.Detail, never into the client-facing message.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	// --- ValidateInput ---
	// Never reaches the store for malformed input.
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, apperror.ValidationFailed("credentials", msgMissingCredentials)
	}

	// --- LookupUser ---
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// Same message as a wrong password — see msgInvalidCredentials.
			return nil, apperror.Unauthorized(msgInvalidCredentials)
		}
		s.logger.Error("login: user lookup failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Server(msgServerFailure, err)
	}

	// --- VerifyPassword ---
	// The supplied password goes in untrimmed: bcrypt hashes are computed
	// over the exact bytes, and the legacy-plaintext variant does its own
	// trimming internally.
	if !s.passwords.Verify(password, user.Password) {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	// --- CheckStatus ---
	if !isActiveStatus(user.Status) {
		return nil, apperror.Forbidden(msgInactiveAccount)
	}

	// --- IssueToken ---
	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		s.logger.Error("login: token generation failed",
			slog.Int64("userId", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Server(msgServerFailure, err)
	}

	s.logger.Info("user logged in",
		slog.Int64("userId", user.ID),
		slog.String("username", user.Username),
	)

	return &LoginResult{
		User:      user.Public(),
		Token:     token,
		ExpiresIn: s.tokens.TTL().String(),
	}, nil
}

// ValidateToken validates a JWT string and returns the claims it encodes.
//
// This is a thin delegation to TokenService.Validate. Having it on
// AuthService means callers only need to import the service package, not
// the auth package directly.
func (s *AuthService) ValidateToken(tokenStr string) (*auth.Claims, error) {
	return s.tokens.Validate(tokenStr)
}

// isActiveStatus reports whether a stored status value permits login.
//
// The status column accumulated several representations of "active" over
// the system's life: numeric 1, the string "1", and "active" in any casing.
// All are accepted. An absent status (NULL → "") means the row predates
// gating entirely, so it permits login. Anything else is inactive.
func isActiveStatus(status string) bool {
	status = strings.TrimSpace(status)
	if status == "" {
		return true
	}
	if status == "1" {
		return true
	}
	return strings.EqualFold(status, "active")
}
