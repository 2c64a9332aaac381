// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a row in the users table — the only persisted entity.
//
// WHY `json:"-"` ON Password?
// The Password field holds the stored credential (a bcrypt hash, or a
// plaintext value left over from before the hashing migration). It must
// never appear in an API response, so we exclude it from JSON entirely
// rather than relying on every handler to remember to strip it. Handlers
// that need a response body use Public() instead.
//
// WHY Status string (not *string)?
// The status column is nullable in the database. We map NULL to the empty
// string — simpler to work with than a pointer, and the auth service treats
// an absent status as "no gating" anyway. The repository layer does the
// NULL↔"" translation with sql.NullString.
type User struct {
	ID        int64     `json:"userId"    db:"id"`
	Username  string    `json:"username"  db:"username"`
	Email     string    `json:"email"     db:"email"`
	Password  string    `json:"-"         db:"password"` // bcrypt hash or legacy plaintext
	DOB       string    `json:"dob,omitempty"    db:"dob"`
	Phone     string    `json:"phone,omitempty"  db:"phone"`
	Status    string    `json:"status,omitempty" db:"status"` // "" = no gating
	Role      string    `json:"role,omitempty"   db:"role"`   // informational, not enforced
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// PublicUser is the client-facing view of a user record.
//
// It exists so the credential column can never leak through an API response:
// the struct simply has no field for it. Everything optional is omitempty so
// rows with NULL dob/phone/status serialize compactly.
type PublicUser struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	DOB      string `json:"dob,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Status   string `json:"status,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Public returns the safe view of the user for API responses.
func (u *User) Public() PublicUser {
	return PublicUser{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		DOB:      u.DOB,
		Phone:    u.Phone,
		Status:   u.Status,
		Role:     u.Role,
	}
}
