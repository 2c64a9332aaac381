// Package config loads and validates process configuration.
//
// CONFIGURATION PHILOSOPHY:
// All configuration is read ONCE at startup into an immutable Config value,
// which is then passed explicitly to the components that need it. Nothing in
// the codebase reads os.Getenv at call time — if a value matters, it is a
// field on Config. This makes the full configuration surface visible in one
// place and keeps components testable (construct a Config literal, no env
// mutation needed).
//
// Values come from environment variables, optionally seeded from a .env file
// via github.com/joho/godotenv. A missing .env is not an error — in
// production the variables come from the real environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DiagnosticLevel controls how much internal detail error responses carry.
//
// Production keeps server-side fault messages generic ("please try again
// later"); development appends the underlying error so failures are
// diagnosable without a debugger. This is a verbosity policy threaded into
// the error-formatting step, not a separate code path.
type DiagnosticLevel int

const (
	DiagProduction DiagnosticLevel = iota
	DiagDevelopment
)

// Config holds everything the process needs, fixed for its lifetime.
type Config struct {
	Port   int
	DBPath string

	// Token signing parameters. The secret is process-wide and never
	// rotated at runtime; issuer and audience are checked on every verify.
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration

	Environment string // "development" or "production" (echoed by /health)
	Diagnostics DiagnosticLevel
	LogLevel    slog.Level
}

// Load reads configuration from the environment.
//
// REQUIRED: JWT_SECRET. Refusing to start without it is deliberate — a
// defaulted signing secret would mean every deployment silently shares one.
//
// OPTIONAL (with defaults):
//
//	PORT          8080
//	DB_PATH       data/users.db
//	JWT_ISSUER    user-auth
//	JWT_AUDIENCE  user-auth-clients
//	JWT_EXPIRES_IN  24h  (Go duration string)
//	APP_ENV       production
//	LOG_LEVEL     info  (debug when APP_ENV=development)
func Load() (Config, error) {
	// Seed the environment from .env if present. Real env vars win: godotenv
	// does not overwrite variables that are already set.
	_ = godotenv.Load()

	cfg := Config{
		Port:        8080,
		DBPath:      "data/users.db",
		JWTIssuer:   "user-auth",
		JWTAudience: "user-auth-clients",
		TokenTTL:    24 * time.Hour,
		Environment: "production",
		Diagnostics: DiagProduction,
		LogLevel:    slog.LevelInfo,
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET must be set")
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.JWTIssuer = v
	}
	if v := os.Getenv("JWT_AUDIENCE"); v != "" {
		cfg.JWTAudience = v
	}

	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid JWT_EXPIRES_IN %q: %w", v, err)
		}
		if ttl <= 0 {
			return Config{}, fmt.Errorf("config: JWT_EXPIRES_IN must be positive, got %q", v)
		}
		cfg.TokenTTL = ttl
	}

	if v := os.Getenv("APP_ENV"); v == "development" {
		cfg.Environment = "development"
		cfg.Diagnostics = DiagDevelopment
		cfg.LogLevel = slog.LevelDebug
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: invalid LOG_LEVEL %q (want debug|info|warn|error)", s)
}
