// Package repository defines the storage interfaces the service layer
// depends on. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/sakif/user-auth/internal/model"
)

// UserRepository is the credential store: single-row access to user records
// keyed by username or id. Every operation is one auto-committing statement;
// no multi-statement transactions are needed because each touches exactly
// one logical entity.
type UserRepository interface {
	// Create inserts a new user and assigns user.ID. The password field
	// must already be hashed — the repository never hashes. Returns an
	// apperror.Conflict naming the offending field when username or email
	// already exists.
	Create(ctx context.Context, user *model.User) error

	// GetByUsername looks up a user by exact username match. The input is
	// trimmed of surrounding whitespace; no case normalization is applied.
	// Returns apperror.ErrNotFound when no row matches.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// GetByID looks up a user by id. Callers validate that id is positive
	// before reaching the store. Returns apperror.ErrNotFound when no row
	// matches.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// UpdatePassword replaces the stored credential for id and returns the
	// number of rows affected. 0 means no such user — callers treat that
	// as not found.
	UpdatePassword(ctx context.Context, id int64, hashed string) (int64, error)

	// List returns all user records. Used by the password migration; not
	// exposed through the API.
	List(ctx context.Context) ([]model.User, error)
}
