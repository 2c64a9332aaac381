package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/user-auth/internal/auth"
	"github.com/sakif/user-auth/internal/config"
	sqliteRepo "github.com/sakif/user-auth/internal/repository/sqlite"
	"github.com/sakif/user-auth/internal/service"
)

// testEnv wires the real handler/service/repository chain over an
// in-memory SQLite database — the same graph server.setupRoutes builds,
// minus the HTTP listener. Handler tests run requests through the router
// with httptest, so routing, middleware, and JSON shapes are all covered.
type testEnv struct {
	router *chi.Mux
	db     *sqliteRepo.DB
	tokens *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithDiag(t, config.DiagProduction)
}

func newTestEnvWithDiag(t *testing.T, diag config.DiagnosticLevel) *testEnv {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New(:memory:) error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", "user-auth", "user-auth-clients", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	// Cost 4 keeps the bcrypt work in these tests negligible.
	passwords := auth.NewPasswordServiceForTest(4)

	authHandler := NewAuthHandler(service.NewAuthService(db, tokens, passwords, logger), diag, logger)
	userHandler := NewUserHandler(service.NewUserService(db, passwords, logger), diag, logger)

	requireAuth := auth.RequireAuth(tokens)

	router := chi.NewRouter()
	router.Get("/health", NewHealthHandler("production").HandleHealth)
	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.HandleLogin)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/verify-token", authHandler.HandleVerifyToken)
				r.Post("/logout", authHandler.HandleLogout)
			})
		})
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.HandleRegister)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/profile", userHandler.HandleProfile)
				r.Get("/username/{username}", userHandler.HandleGetByUsername)
				r.Get("/{id}", userHandler.HandleGetByID)
				r.Put("/password", userHandler.HandleUpdatePassword)
			})
		})
	})

	return &testEnv{router: router, db: db, tokens: tokens}
}

// do runs one request through the router. body is JSON-encoded when non-nil;
// token, when non-empty, goes into the Authorization header.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// register creates a user through the HTTP API and returns the new id.
func (e *testEnv) register(t *testing.T, username, email, password string) int64 {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/users", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %q: status = %d, body = %s", username, rec.Code, rec.Body.String())
	}

	var resp struct {
		UserID int64 `json:"userId"`
	}
	decodeBody(t, rec, &resp)
	return resp.UserID
}

// login authenticates through the HTTP API and returns the bearer token.
func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login %q: status = %d, body = %s", username, rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	return resp.Token
}

// hashForTest bcrypts a password at the same low cost the test env uses.
func hashForTest(t *testing.T, password string) string {
	t.Helper()
	hashed, err := auth.NewPasswordServiceForTest(4).Hash(password)
	if err != nil {
		t.Fatalf("hashing %q: %v", password, err)
	}
	return hashed
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

// envelope is the part of every response shared by success and failure.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	decodeBody(t, rec, &env)
	return env
}
