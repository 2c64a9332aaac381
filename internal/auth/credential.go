// Package auth provides credential verification and JWT token handling.
package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Credential is the stored representation of a user's password.
//
// TWO VARIANTS, ONE DISPATCH POINT:
// The users table holds a mix of bcrypt hashes and — transitionally —
// plaintext values from before the hashing migration. Rather than scatter
// "does it look hashed?" string checks through the login flow, we parse the
// stored value ONCE into one of two variants and let each variant carry its
// own comparison rule. Everything downstream just calls Matches.
//
// The plaintext variant exists solely for accounts that have not been
// migrated yet (see cmd/migrate). It is a known weakening of the security
// posture and should be deleted once no plaintext rows remain.
type Credential interface {
	// Matches reports whether the supplied plaintext password matches this
	// stored credential. A mismatch is a normal negative result, never an error.
	Matches(plaintext string) bool
}

// bcryptPrefixes are the version identifiers a bcrypt hash can start with.
// $2b$ is what current bcrypt implementations emit; $2a$ and $2y$ appear in
// rows hashed by older library versions.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// ParseCredential classifies a stored credential by its prefix.
func ParseCredential(stored string) Credential {
	for _, p := range bcryptPrefixes {
		if strings.HasPrefix(stored, p) {
			return hashedCredential(stored)
		}
	}
	return legacyPlaintextCredential(stored)
}

// IsHashed reports whether a stored credential is already a bcrypt hash.
// Used by the password migration to skip rows that are already done.
func IsHashed(stored string) bool {
	_, ok := ParseCredential(stored).(hashedCredential)
	return ok
}

// hashedCredential is a bcrypt hash. This is the only supported
// representation for new and migrated accounts.
type hashedCredential string

func (c hashedCredential) Matches(plaintext string) bool {
	// bcrypt.CompareHashAndPassword re-hashes the plaintext with the salt
	// and cost embedded in the stored hash and compares in constant time.
	return bcrypt.CompareHashAndPassword([]byte(c), []byte(plaintext)) == nil
}

// legacyPlaintextCredential is an unhashed password from before the
// migration. Comparison is trimmed string equality — both sides are trimmed
// because legacy rows were inserted without input sanitation.
type legacyPlaintextCredential string

func (c legacyPlaintextCredential) Matches(plaintext string) bool {
	stored := strings.TrimSpace(string(c))
	supplied := strings.TrimSpace(plaintext)
	// ConstantTimeCompare returns 0 for length mismatches without leaking
	// how far the comparison got.
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
