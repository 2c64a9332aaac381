package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/user-auth/internal/apperror"
	"github.com/sakif/user-auth/internal/config"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", apperror.ValidationFailed("field", "bad input"), http.StatusBadRequest},
		{"unauthorized", apperror.Unauthorized("no"), http.StatusUnauthorized},
		{"forbidden", apperror.Forbidden("no"), http.StatusForbidden},
		{"not found", apperror.NotFound("user", "42"), http.StatusNotFound},
		{"conflict", apperror.Conflict("username"), http.StatusConflict},
		{"server", apperror.Server("broke", errors.New("cause")), http.StatusInternalServerError},
		{"unknown error", errors.New("raw"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err, config.DiagProduction)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, jsonUnmarshal(rec, &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

// In production the underlying fault stays server-side; in development it
// rides along as "detail". Same code path, different verbosity.
func TestWriteError_DiagnosticGating(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:3306: connection refused")
	err := apperror.Server("An error occurred. Please try again later.", cause)

	prod := httptest.NewRecorder()
	writeError(prod, err, config.DiagProduction)

	var prodResp ErrorResponse
	require.NoError(t, jsonUnmarshal(prod, &prodResp))
	assert.Empty(t, prodResp.Detail)
	assert.NotContains(t, prod.Body.String(), "connection refused")

	dev := httptest.NewRecorder()
	writeError(dev, err, config.DiagDevelopment)

	var devResp ErrorResponse
	require.NoError(t, jsonUnmarshal(dev, &devResp))
	assert.Equal(t, prodResp.Message, devResp.Message)
	assert.Equal(t, cause.Error(), devResp.Detail)
}

func TestWriteError_UnknownErrorIsGeneric(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("sql: table users has no column named x"), config.DiagProduction)

	var resp ErrorResponse
	require.NoError(t, jsonUnmarshal(rec, &resp))
	assert.Equal(t, "An error occurred. Please try again later.", resp.Message)
	assert.NotContains(t, rec.Body.String(), "sql:")
}

func jsonUnmarshal(rec *httptest.ResponseRecorder, into *ErrorResponse) error {
	return json.Unmarshal(rec.Body.Bytes(), into)
}
