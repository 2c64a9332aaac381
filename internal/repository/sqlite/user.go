package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/user-auth/internal/apperror"
	"github.com/sakif/user-auth/internal/model"
	"github.com/sakif/user-auth/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// userColumns is the SELECT list shared by every lookup. Keeping it in one
// place means a schema change can't leave one query scanning stale columns.
const userColumns = `id, username, email, password, dob, phone, status, role, created_at, updated_at`

// Create inserts a new user row and fills in user.ID and the timestamps.
//
// UNIQUENESS:
// The UNIQUE constraints on username and email do the real work. SQLite
// reports a violation as "UNIQUE constraint failed: users.<column>", and we
// translate that into an apperror.Conflict naming the field so the handler
// can return "username already exists" / "email already exists".
func (db *DB) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, email, password, dob, phone, status, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.Email,
		user.Password,
		nullable(user.DOB),
		nullable(user.Phone),
		nullable(user.Status),
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if field, ok := uniqueViolation(err); ok {
			return apperror.Conflict(field)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	// SQLite's AUTOINCREMENT id comes back via LastInsertId.
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetByUsername retrieves a user by exact username match.
// The input is trimmed of surrounding whitespace; the stored value is
// matched case-sensitively as-is.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}
	return u, nil
}

// GetByID retrieves a user by their numeric id.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

// UpdatePassword replaces the stored credential and returns the number of
// rows affected. 0 rows means the id doesn't exist — callers map that to
// not found rather than treating it as success.
func (db *DB) UpdatePassword(ctx context.Context, id int64, hashed string) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET password = ?, updated_at = ? WHERE id = ?`,
		hashed, time.Now().UTC(), id)
	if err != nil {
		return 0, fmt.Errorf("sqlite: updating password for user %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading affected rows: %w", err)
	}
	return affected, nil
}

// List returns every user row. Only the password migration uses this.
func (db *DB) List(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

// scanner covers both *sql.Row and *sql.Rows so scanUser can serve single
// and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

// scanUser reads one row into a model.User, translating NULL dob/phone/
// status into empty strings.
func scanUser(s scanner) (*model.User, error) {
	var (
		u                 model.User
		dob, phone, state sql.NullString
	)
	err := s.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Password,
		&dob,
		&phone,
		&state,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.DOB = dob.String
	u.Phone = phone.String
	u.Status = state.String
	return &u, nil
}

// nullable maps "" to NULL so optional fields stay NULL in the database
// instead of accumulating empty strings.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// uniqueViolation inspects a driver error for a UNIQUE constraint failure
// and reports which of our unique columns caused it.
//
// modernc.org/sqlite formats constraint errors as
// "constraint failed: UNIQUE constraint failed: users.username (2067)", so
// substring matching on the column name is the stable way to classify them.
func uniqueViolation(err error) (field string, ok bool) {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return "", false
	}
	if strings.Contains(msg, "users.username") {
		return "username", true
	}
	if strings.Contains(msg, "users.email") {
		return "email", true
	}
	// Unique violation on a column we don't recognize — still a conflict.
	return "record", true
}
