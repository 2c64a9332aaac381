package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the six failure categories the API can surface.
// Handlers map these to HTTP status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrServer       = errors.New("server error")
)

type AppError struct {
	Err     error  // sentinel category
	Message string // Human-readable, safe to return to the client
	Field   string // Optional: field causing the error
	Detail  error  // Optional: underlying fault, shown only in diagnostic mode
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthorized returns an AppError for identity/credential failures.
// Callers on the login path must use one fixed message for both the
// unknown-user and wrong-password cases so accounts cannot be enumerated.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Forbidden returns an AppError indicating a valid identity in a
// disallowed state. HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// Conflict returns an AppError for a uniqueness violation on write.
// field names the offending column (username or email).
func Conflict(field string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists", field),
		Field:   field,
	}
}

// Server wraps an unexpected lower-level fault (store unreachable, signing
// failure). The client-facing message is generic; the wrapped cause is kept
// in Detail so the error formatter can expose it in development mode only.
func Server(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrServer,
		Message: message,
		Detail:  cause,
	}
}
