// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root. It connects
// handlers, middleware, and routes in one place:
//
//	config.Config → sqlite.DB → services → handlers → routes
//
// Each layer only receives what it needs: services get the repository
// interface (not the concrete sqlite.DB), handlers get the services (not
// the repository or DB). The handler never touches the database directly;
// the service never touches HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/user-auth/internal/auth"
	"github.com/sakif/user-auth/internal/config"
	"github.com/sakif/user-auth/internal/handler"
	"github.com/sakif/user-auth/internal/middleware"
	sqliteRepo "github.com/sakif/user-auth/internal/repository/sqlite"
	"github.com/sakif/user-auth/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection pool. When the server shuts down
// it must close the pool to flush the WAL and release the file lock — this
// happens in Start() during graceful shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with the full dependency chain assembled:
//
//  1. Open the database (sqlite.New runs migrations)
//  2. Build the token and password services from config
//  3. Build the auth and user services on top of the repository
//  4. Wire handlers to routes
//
// IMPORT ALIAS:
// repository/sqlite is imported as `sqliteRepo` to avoid confusion with the
// sqlite driver package.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /health                         → liveness (public)
//	POST /api/auth/login                 → authenticate (public)
//	POST /api/auth/verify-token          → check a bearer token (protected)
//	POST /api/auth/logout                → acknowledge logout (protected)
//	POST /api/users                      → register (public)
//	GET  /api/users/profile              → own record (protected)
//	GET  /api/users/username/{username}  → by username (protected)
//	GET  /api/users/{id}                 → by id (protected)
//	PUT  /api/users/password             → update password (protected)
//
// MIDDLEWARE ORDER MATTERS:
// RequestID runs first so every later log line can carry the ID; Recoverer
// runs before the logger-wrapped handlers so a panic still produces a 500.
//
// ROUTE ORDER MATTERS TOO:
// /users/profile and /users/username/{username} are registered before
// /users/{id}; chi matches literal segments before parameters, but keeping
// the literals first makes the intent obvious.
func (s *Server) setupRoutes() error {
	s.router.Use(middleware.RequestID)       // xid per request, echoed in X-Request-Id
	s.router.Use(chimiddleware.RealIP)       // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer)    // Recovers from panics, returns 500
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.JWTIssuer, s.config.JWTAudience, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authSvc := service.NewAuthService(s.db, tokens, passwords, s.logger)
	userSvc := service.NewUserService(s.db, passwords, s.logger)

	authHandler := handler.NewAuthHandler(authSvc, s.config.Diagnostics, s.logger)
	userHandler := handler.NewUserHandler(userSvc, s.config.Diagnostics, s.logger)
	healthHandler := handler.NewHealthHandler(s.config.Environment)

	requireAuth := auth.RequireAuth(tokens)

	s.router.Get("/health", healthHandler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
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

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("environment", s.config.Environment),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
