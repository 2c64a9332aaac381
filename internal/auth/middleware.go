package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "claims", c), ANY package that knows the string can
// read or shadow your value. Using a package-private type prevents collisions:
// only THIS package can create a key of type contextKey, so only this package
// can read or write claim values in the context.
type contextKey string

const claimsKey contextKey = "claims"

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads the JWT from the Authorization header ("Bearer <token>"),
// validates it, and stores the claims in the request context. The failure
// mapping is deliberate:
//
//	missing token → 401 (the client never authenticated)
//	expired token → 401 (the client must re-authenticate; message says so)
//	invalid token → 403 (the token was never ours — tampered or foreign)
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler that wraps it. Chi applies middlewares in a chain:
// req → M1 → M2 → Handler → M2 → M1 → resp.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				writeAuthFailure(w, http.StatusUnauthorized, "Access token required")
				return
			}

			claims, err := tokens.Validate(tokenStr)
			if err != nil {
				if err == ErrTokenExpired {
					writeAuthFailure(w, http.StatusUnauthorized, "Token expired. Please login again.")
				} else {
					writeAuthFailure(w, http.StatusForbidden, "Invalid token")
				}
				return
			}

			// Store the claims in context so handlers can read them
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves the authenticated user's claims from the
// request context.
//
// Returns (nil, false) if the request is anonymous — which should never
// happen on a RequireAuth-protected route, but handlers check anyway.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	// Case-insensitive scheme match, exactly one space, non-empty token.
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// writeAuthFailure sends the standard {"success":false,"message":...}
// envelope. The messages here are fixed constants, so building the JSON
// with string concatenation is safe — no user input is interpolated.
func writeAuthFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}
