package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/user-auth/internal/apperror"
	"github.com/sakif/user-auth/internal/auth"
	"github.com/sakif/user-auth/internal/config"
	"github.com/sakif/user-auth/internal/model"
	"github.com/sakif/user-auth/internal/service"
)

// UserHandler exposes the user-management endpoints.
//
//	POST /api/users                      → register a new user
//	GET  /api/users/profile              → the token holder's own record (protected)
//	GET  /api/users/{id}                 → fetch by id (protected)
//	GET  /api/users/username/{username}  → fetch by username (protected)
//	PUT  /api/users/password             → update a password (protected)
type UserHandler struct {
	users  *service.UserService
	diag   config.DiagnosticLevel
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, diag config.DiagnosticLevel, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		diag:   diag,
		logger: logger,
	}
}

// registerRequest is the expected body for HandleRegister.
// dob, phone, and role are optional.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	DOB      string `json:"dob"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// HandleRegister creates a new user account.
//
// HTTP: POST /api/users
// BODY: {"username","email","password","dob"?,"phone"?,"role"?}
//
// Returns 201 with the new id, or 409 when username/email already exists.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("register: invalid JSON body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid request body"), h.diag)
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		DOB:      req.DOB,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		writeError(w, err, h.diag)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "User added successfully!",
		"userId":  user.ID,
	})
}

// userResponse wraps a safe user view in the standard envelope.
type userResponse struct {
	Success bool             `json:"success"`
	User    model.PublicUser `json:"user"`
}

// HandleProfile returns the authenticated user's own record.
//
// HTTP: GET /api/users/profile
// Auth: Required
//
// The id comes from the token claims, not from the URL — a client can only
// ever fetch its own profile here.
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"), h.diag)
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, h.diag)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Success: true, User: user.Public()})
}

// HandleGetByID fetches a user by numeric id.
//
// HTTP: GET /api/users/{id}
// Auth: Required
//
// Non-numeric and non-positive ids are rejected with 400 before any store
// access.
func (h *UserHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("id", "invalid user ID"), h.diag)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.diag)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Success: true, User: user.Public()})
}

// HandleGetByUsername fetches a user by username.
//
// HTTP: GET /api/users/username/{username}
// Auth: Required
//
// Enumeration is acceptable here (404 for a missing username) because the
// route sits behind authentication; only the login path collapses not-found
// into the generic unauthorized message.
func (h *UserHandler) HandleGetByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		writeError(w, err, h.diag)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Success: true, User: user.Public()})
}

// updatePasswordRequest is the expected body for HandleUpdatePassword.
type updatePasswordRequest struct {
	UserID      int64  `json:"userId"`
	NewPassword string `json:"newPassword"`
}

// HandleUpdatePassword replaces a user's password.
//
// HTTP: PUT /api/users/password
// BODY: {"userId": 42, "newPassword": "..."}
// Auth: Required
//
// The new credential is always stored hashed, regardless of what the old
// row held — this is the migration path for legacy plaintext rows.
func (h *UserHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("update password: invalid JSON body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid request body"), h.diag)
		return
	}

	if err := h.users.UpdatePassword(r.Context(), req.UserID, req.NewPassword); err != nil {
		writeError(w, err, h.diag)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Password updated successfully",
	})
}
