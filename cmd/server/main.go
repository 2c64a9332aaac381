// Package main is the entry point for the user-auth server.
//
// The main package is kept minimal — its job is to:
// 1. Load configuration (env vars, optionally seeded from .env)
// 2. Create the logger
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server,
// internal/handler, etc.). A second executable, cmd/migrate, reuses the
// same packages for the one-shot password migration.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/user-auth/internal/config"
	"github.com/sakif/user-auth/internal/server"
)

func main() {
	// Bootstrap logger for config errors; replaced once config is loaded
	// and the real level is known.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// Ensure the database directory exists (like `mkdir -p`).
	// ":memory:" has no directory, so only do this for file paths.
	if cfg.DBPath != ":memory:" {
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				logger.Error("failed to create database directory",
					slog.String("dir", dir),
					slog.String("error", err.Error()),
				)
				os.Exit(1)
			}
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
