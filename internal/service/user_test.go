package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/user-auth/internal/apperror"
	"github.com/sakif/user-auth/internal/auth"
	"github.com/sakif/user-auth/internal/model"
)

func newTestUserService(t *testing.T, repo *fakeUserRepo) *UserService {
	t.Helper()
	return NewUserService(repo, auth.NewPasswordServiceForTest(4), testLogger())
}

// modelUserWithPassword builds a seed row with an arbitrary stored
// credential, bypassing registration (which would hash it).
func modelUserWithPassword(username, password string) model.User {
	return model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
		Status:   "1",
	}
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestRegister_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@x.com",
		Password: "secret1",
		DOB:      "1990-01-01",
		Phone:    "555-0100",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.ID <= 0 {
		t.Errorf("user.ID = %d, want positive", user.ID)
	}
	// The stored credential must be a bcrypt hash, never the plaintext.
	if !auth.IsHashed(user.Password) {
		t.Errorf("stored credential %q is not hashed", user.Password)
	}
	if user.Password == "secret1" {
		t.Error("plaintext password was stored")
	}
	if user.Role != DefaultRole {
		t.Errorf("role = %q, want default %q", user.Role, DefaultRole)
	}
}

func TestRegister_NormalizesEmailAndTrims(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "  alice  ",
		Email:    " Alice@Example.COM ",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.Username != "alice" {
		t.Errorf("username = %q, want trimmed %q", user.Username, "alice")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want lower-cased %q", user.Email, "alice@example.com")
	}
}

func TestRegister_KeepsExplicitRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "admin1",
		Email:    "admin@x.com",
		Password: "secret1",
		Role:     "admin",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != "admin" {
		t.Errorf("role = %q, want %q", user.Role, "admin")
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input RegisterInput
	}{
		{name: "missing username", input: RegisterInput{Email: "a@x.com", Password: "secret1"}},
		{name: "missing email", input: RegisterInput{Username: "alice", Password: "secret1"}},
		{name: "missing password", input: RegisterInput{Username: "alice", Email: "a@x.com"}},
		{name: "bad email no at", input: RegisterInput{Username: "alice", Email: "ax.com", Password: "secret1"}},
		{name: "bad email no dot", input: RegisterInput{Username: "alice", Email: "a@xcom", Password: "secret1"}},
		{name: "bad email whitespace", input: RegisterInput{Username: "alice", Email: "a b@x.com", Password: "secret1"}},
		{name: "short password", input: RegisterInput{Username: "alice", Email: "a@x.com", Password: "abc12"}},
		{name: "overlong password", input: RegisterInput{Username: "alice", Email: "a@x.com", Password: strings.Repeat("a", 73)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			svc := newTestUserService(t, repo)

			_, err := svc.Register(context.Background(), tt.input)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_DuplicateUsernameConflict(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)

	first := RegisterInput{Username: "alice", Email: "alice@x.com", Password: "secret1"}
	if _, err := svc.Register(context.Background(), first); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	second := RegisterInput{Username: "alice", Email: "other@x.com", Password: "secret2"}
	_, err := svc.Register(context.Background(), second)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second Register() error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestGetByID_RejectsNonPositive(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)

	for _, id := range []int64{0, -1, -42} {
		_, err := svc.GetByID(context.Background(), id)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("GetByID(%d) error = %v, want ErrValidation", id, err)
		}
	}
	if repo.lookups != 0 {
		t.Errorf("store was queried %d times for invalid ids", repo.lookups)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)

	_, err := svc.GetByID(context.Background(), 42)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetByUsername_RequiresUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)

	_, err := svc.GetByUsername(context.Background(), "  ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("GetByUsername() error = %v, want ErrValidation", err)
	}
}

func TestGetByUsername_StoreFaultIsServerError(t *testing.T) {
	repo := newFakeUserRepo()
	repo.failWith = errors.New("sqlite: disk I/O error")
	svc := newTestUserService(t, repo)

	_, err := svc.GetByUsername(context.Background(), "alice")
	if !errors.Is(err, apperror.ErrServer) {
		t.Errorf("GetByUsername() error = %v, want ErrServer", err)
	}
}

// =========================================================================
// UPDATE PASSWORD TESTS
// =========================================================================

func TestUpdatePassword_StoresHash(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@x.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.UpdatePassword(context.Background(), user.ID, "newsecret"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	stored := repo.users[user.ID].Password
	if !auth.IsHashed(stored) {
		t.Errorf("credential after update is not hashed: %q", stored)
	}
	if stored == "newsecret" {
		t.Error("plaintext password was stored")
	}
}

func TestUpdatePassword_IdempotentlyHashed(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)

	// Seed a legacy plaintext row, then update twice in a row. After every
	// pass the stored credential must be hashed.
	seeded := repo.addUser(modelUserWithPassword("olduser", "plaintext-pw"))

	for i := 0; i < 2; i++ {
		if err := svc.UpdatePassword(context.Background(), seeded.ID, "newsecret"); err != nil {
			t.Fatalf("UpdatePassword() pass %d error = %v", i+1, err)
		}
		if !auth.IsHashed(repo.users[seeded.ID].Password) {
			t.Fatalf("credential not hashed after pass %d", i+1)
		}
	}
}

func TestUpdatePassword_MissingUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)

	err := svc.UpdatePassword(context.Background(), 4242, "newsecret")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdatePassword() error = %v, want ErrNotFound", err)
	}
}

func TestUpdatePassword_Validation(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)

	tests := []struct {
		name     string
		id       int64
		password string
	}{
		{name: "zero id", id: 0, password: "secret1"},
		{name: "empty password", id: 1, password: ""},
		{name: "short password", id: 1, password: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpdatePassword(context.Background(), tt.id, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("UpdatePassword() error = %v, want ErrValidation", err)
			}
		})
	}
}
