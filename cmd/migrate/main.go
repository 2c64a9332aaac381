// Package main is the one-shot legacy password migration.
//
// Rows inserted before hashing was introduced hold plaintext credentials.
// The login path tolerates them (see internal/auth/credential.go), but they
// should not exist: this tool re-hashes every unmigrated row so the legacy
// comparison path can eventually be deleted.
//
// Usage:
//
//	DB_PATH=data/users.db JWT_SECRET=... go run ./cmd/migrate
//
// Safe to run repeatedly — rows that already carry a bcrypt prefix are
// skipped.
package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/sakif/user-auth/internal/auth"
	"github.com/sakif/user-auth/internal/config"
	sqliteRepo "github.com/sakif/user-auth/internal/repository/sqlite"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		logger.Error("opening database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := migrate(context.Background(), db, logger); err != nil {
		logger.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// migrate walks all users and re-hashes any plaintext credential.
func migrate(ctx context.Context, db *sqliteRepo.DB, logger *slog.Logger) error {
	passwords := auth.NewPasswordService()

	users, err := db.List(ctx)
	if err != nil {
		return err
	}
	logger.Info("starting password migration", slog.Int("users", len(users)))

	migrated, skipped := 0, 0
	for _, u := range users {
		if auth.IsHashed(u.Password) {
			skipped++
			continue
		}

		hashed, err := passwords.Hash(u.Password)
		if err != nil {
			// One bad row (e.g. >72 bytes of plaintext) shouldn't abort the
			// run; log it and keep going so the rest get migrated.
			logger.Warn("skipping unmigratable row",
				slog.Int64("userId", u.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		affected, err := db.UpdatePassword(ctx, u.ID, hashed)
		if err != nil {
			return err
		}
		if affected == 0 {
			logger.Warn("user disappeared mid-migration", slog.Int64("userId", u.ID))
			continue
		}

		logger.Info("migrated password", slog.String("userId", strconv.FormatInt(u.ID, 10)))
		migrated++
	}

	logger.Info("password migration completed",
		slog.Int("migrated", migrated),
		slog.Int("alreadyHashed", skipped),
	)
	return nil
}
