package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// protectedEcho is the handler behind the middleware in these tests.
// It records whether it ran and what claims it saw.
type protectedEcho struct {
	called bool
	claims *Claims
}

func (p *protectedEcho) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.called = true
	p.claims, _ = ClaimsFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func doRequest(t *testing.T, ts *TokenService, authorization string) (*httptest.ResponseRecorder, *protectedEcho) {
	t.Helper()

	echo := &protectedEcho{}
	handler := RequireAuth(ts)(echo)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, echo
}

func TestRequireAuth_ValidToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate(42, "alice")

	rec, echo := doRequest(t, ts, "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !echo.called {
		t.Fatal("handler was not called for a valid token")
	}
	if echo.claims == nil || echo.claims.UserID != 42 || echo.claims.Username != "alice" {
		t.Errorf("claims in context = %+v, want userId=42 username=alice", echo.claims)
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	ts := newTestTokenService(t)

	rec, echo := doRequest(t, ts, "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if echo.called {
		t.Error("handler ran without a token")
	}
}

func TestRequireAuth_ExpiredTokenIs401(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.GenerateWithDuration(42, "alice", -time.Minute)

	rec, _ := doRequest(t, ts, "Bearer "+token)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for an expired token", rec.Code)
	}
}

func TestRequireAuth_InvalidTokenIs403(t *testing.T) {
	ts := newTestTokenService(t)

	rec, echo := doRequest(t, ts, "Bearer not-a-real-token")

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for an invalid token", rec.Code)
	}
	if echo.called {
		t.Error("handler ran with an invalid token")
	}
}

func TestRequireAuth_MalformedAuthorizationHeader(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate(42, "alice")

	tests := []struct {
		name   string
		header string
	}{
		{name: "no scheme", header: token},
		{name: "wrong scheme", header: "Basic " + token},
		{name: "scheme only", header: "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, echo := doRequest(t, ts, tt.header)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if echo.called {
				t.Error("handler ran with a malformed Authorization header")
			}
		})
	}
}

func TestRequireAuth_BearerSchemeIsCaseInsensitive(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate(42, "alice")

	rec, _ := doRequest(t, ts, "bearer "+token)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for lowercase bearer scheme", rec.Code)
	}
}

func TestClaimsFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := ClaimsFromContext(req.Context()); ok {
		t.Error("ClaimsFromContext() = ok for a request with no claims")
	}
}
