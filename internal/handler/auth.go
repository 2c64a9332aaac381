// Package handler contains the HTTP layer: request parsing, response
// writing, and nothing else. Business rules live in internal/service.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/user-auth/internal/apperror"
	"github.com/sakif/user-auth/internal/auth"
	"github.com/sakif/user-auth/internal/config"
	"github.com/sakif/user-auth/internal/model"
	"github.com/sakif/user-auth/internal/service"
)

// AuthHandler exposes the authentication endpoints.
//
//	POST /api/auth/login        → authenticate, issue a bearer token
//	POST /api/auth/verify-token → echo the validated claims (protected)
//	POST /api/auth/logout       → stateless acknowledgement (protected)
type AuthHandler struct {
	auth   *service.AuthService
	diag   config.DiagnosticLevel
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(authSvc *service.AuthService, diag config.DiagnosticLevel, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authSvc,
		diag:   diag,
		logger: logger,
	}
}

// loginRequest is the expected body for HandleLogin.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the success body for HandleLogin. The user field is the
// safe view — the credential column cannot appear here by construction.
type loginResponse struct {
	Success   bool             `json:"success"`
	User      model.PublicUser `json:"user"`
	Token     string           `json:"token"`
	ExpiresIn string           `json:"expiresIn"`
}

// HandleLogin authenticates a username/password pair and returns a token.
//
// HTTP: POST /api/auth/login
// BODY: {"username": "alice", "password": "secret1"}
//
// All business decisions (generic unauthorized message, status gating,
// token claims) happen in AuthService — this function only moves JSON.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("login: invalid JSON body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid request body"), h.diag)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err, h.diag)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success:   true,
		User:      result.User,
		Token:     result.Token,
		ExpiresIn: result.ExpiresIn,
	})
}

// verifyTokenResponse echoes the identity baked into a valid token.
type verifyTokenResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    tokenClaims `json:"user"`
}

type tokenClaims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// HandleVerifyToken confirms that the presented bearer token is valid.
//
// HTTP: POST /api/auth/verify-token
// Auth: Required (RequireAuth middleware sets the claims in context)
//
// The middleware already rejected missing/expired/invalid tokens, so by the
// time this runs the token is known-good — we just report whose it is.
func (h *AuthHandler) HandleVerifyToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		// Should never happen on a RequireAuth-protected route, but be safe.
		writeError(w, apperror.Unauthorized("valid authentication required"), h.diag)
		return
	}

	writeJSON(w, http.StatusOK, verifyTokenResponse{
		Success: true,
		Message: "Token is valid",
		User: tokenClaims{
			UserID:   claims.UserID,
			Username: claims.Username,
		},
	})
}

// HandleLogout acknowledges a logout.
//
// HTTP: POST /api/auth/logout
//
// Tokens are stateless, so there is no server-side session to destroy: the
// token stays technically valid until it expires, and the client discards
// its copy. This endpoint exists so clients have an explicit hook.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}
