package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ENVELOPE:
// Every response from this API carries a stable boolean success flag:
//
//	{"success": true,  "user": {...}, ...}
//	{"success": false, "message": "invalid username or password"}
//
// The frontend always knows what fields to expect, regardless of whether
// the status is 200, 401, or 500.
//
// DIAGNOSTIC GATING:
// writeError takes the DiagnosticLevel explicitly. In production the
// message for a server-side fault stays generic; in development the
// underlying error is attached as a "detail" field. This is one code path
// with a verbosity switch, not two error handlers.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/user-auth/internal/apperror"
	"github.com/sakif/user-auth/internal/config"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Success bool   `json:"success"`          // always false here
	Message string `json:"message"`          // human-readable description
	Detail  string `json:"detail,omitempty"` // underlying fault, development mode only
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status code must be set BEFORE writing the body. Once
// Encode calls w.Write, the headers are sent and any later changes are
// silently ignored.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent — we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code and
// sends it in the standard envelope.
//
// ERROR MAPPING:
// The service layer returns apperror sentinels; this is the single place
// they become HTTP statuses. errors.Is walks the whole wrap chain, so
// services are free to wrap with fmt.Errorf("...: %w", ...) on the way up.
func writeError(w http.ResponseWriter, err error, diag config.DiagnosticLevel) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}

		resp := ErrorResponse{Success: false, Message: appErr.Message}
		if diag == config.DiagDevelopment && appErr.Detail != nil {
			resp.Detail = appErr.Detail.Error()
		}
		writeJSON(w, status, resp)
		return
	}

	// Unknown error — generic 500. The raw message might contain SQL text
	// or file paths, so it only appears in development mode.
	resp := ErrorResponse{
		Success: false,
		Message: "An error occurred. Please try again later.",
	}
	if diag == config.DiagDevelopment {
		resp.Detail = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}
