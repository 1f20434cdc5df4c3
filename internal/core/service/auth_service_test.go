package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/internal/infrastructure/db/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubThrottle struct {
	mu       sync.Mutex
	failures map[string]int
	limit    int
	err      error
}

func newStubThrottle(limit int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), limit: limit}
}

func (t *stubThrottle) Blocked(_ context.Context, username string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return false, t.err
	}
	return t.failures[username] >= t.limit, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[username]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, username)
	return nil
}

type authFixture struct {
	svc      *AuthService
	users    *memory.UserRepository
	roles    *memory.RoleRepository
	codec    *TokenCodec
	throttle *stubThrottle
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := memory.NewUserRepository()
	roles := memory.NewRoleRepository()
	resolver := NewRoleResolver(roles, users, bcrypt.MinCost, false, zerolog.Nop())
	if err := resolver.EnsureSeeded(context.Background()); err != nil {
		t.Fatalf("EnsureSeeded returned error: %v", err)
	}

	codec, err := NewTokenCodec(TokenConfig{Secret: testSecret, TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}

	throttle := newStubThrottle(3)
	svc := NewAuthService(users, resolver, codec, throttle, bcrypt.MinCost, zerolog.Nop())
	return &authFixture{svc: svc, users: users, roles: roles, codec: codec, throttle: throttle}
}

func register(t *testing.T, svc *AuthService, username, email, password string, roles ...string) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		Roles:    roles,
	})
	if err != nil {
		t.Fatalf("Register(%s) returned error: %v", username, err)
	}
	return user
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture(t)

	user := register(t, f.svc, "alice", "Alice@Example.com", "pass123")

	if user.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %s", user.Email)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	names := user.RoleNames()
	if len(names) != 1 || names[0] != domain.RoleUser {
		t.Fatalf("expected default ROLE_USER, got %v", names)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture(t)

	cases := []ports.RegisterInput{
		{Username: "", Email: "a@example.com", Password: "secret"},
		{Username: "alice", Email: "  ", Password: "secret"},
		{Username: "alice", Email: "a@example.com", Password: ""},
	}
	for _, in := range cases {
		if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	f := newAuthFixture(t)
	register(t, f.svc, "alice", "alice@example.com", "pass123")

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "pass123",
	})
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	_, err = f.svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice2", Email: "ALICE@example.com", Password: "pass123",
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	count, _ := f.users.Count(context.Background())
	if count != 1 {
		t.Fatalf("expected 1 stored user, got %d", count)
	}
}

func TestAuthService_Register_ConcurrentSameUsername(t *testing.T) {
	f := newAuthFixture(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Register(context.Background(), ports.RegisterInput{
				Username: "racer",
				Email:    "racer" + strings.Repeat("x", i) + "@example.com",
				Password: "pass123",
			})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrUsernameTaken) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful registration, got %d", successes)
	}
}

func TestAuthService_Register_RoleTokens(t *testing.T) {
	f := newAuthFixture(t)

	admin := register(t, f.svc, "boss", "boss@example.com", "pass123", "Admin")
	if names := admin.RoleNames(); len(names) != 1 || names[0] != domain.RoleAdmin {
		t.Fatalf("expected ROLE_ADMIN, got %v", names)
	}

	mixed := register(t, f.svc, "mixed", "mixed@example.com", "pass123", "superuser", "user", "admin")
	names := mixed.RoleNames()
	if len(names) != 2 || names[0] != domain.RoleUser || names[1] != domain.RoleAdmin {
		t.Fatalf("expected [ROLE_USER ROLE_ADMIN], got %v", names)
	}
}

func TestAuthService_Register_RoleNotConfigured(t *testing.T) {
	users := memory.NewUserRepository()
	roles := memory.NewRoleRepository()
	resolver := NewRoleResolver(roles, users, bcrypt.MinCost, false, zerolog.Nop())
	codec, _ := NewTokenCodec(TokenConfig{Secret: testSecret})
	svc := NewAuthService(users, resolver, codec, nil, bcrypt.MinCost, zerolog.Nop())

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "pass123",
	})
	if !errors.Is(err, domain.ErrRoleNotConfigured) {
		t.Fatalf("expected ErrRoleNotConfigured, got %v", err)
	}
	if count, _ := users.Count(context.Background()); count != 0 {
		t.Fatalf("expected no user to be created, got %d", count)
	}
}

func TestAuthService_Authenticate_RoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	user := register(t, f.svc, "alice", "alice@example.com", "pass123")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	result, err := f.svc.Authenticate(context.Background(), "alice", "pass123")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token")
	}
	if !result.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %s", result.ExpiresAt)
	}

	claims, err := f.codec.Verify(result.Token, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.HasRole(domain.RoleUser) {
		t.Fatalf("expected ROLE_USER in claims, got %v", claims.Roles)
	}
}

func TestAuthService_Authenticate_InvalidCredentialsIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	register(t, f.svc, "alice", "alice@example.com", "pass123")

	_, wrongPassword := f.svc.Authenticate(context.Background(), "alice", "nope")
	_, unknownUser := f.svc.Authenticate(context.Background(), "mallory", "nope")

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", wrongPassword)
	}
	if !errors.Is(unknownUser, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", unknownUser)
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Fatalf("errors differ: %q vs %q", wrongPassword, unknownUser)
	}
}

func TestAuthService_Authenticate_Throttle(t *testing.T) {
	f := newAuthFixture(t)
	register(t, f.svc, "alice", "alice@example.com", "pass123")

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	if _, err := f.svc.Authenticate(context.Background(), "alice", "pass123"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Authenticate_SuccessResetsThrottle(t *testing.T) {
	f := newAuthFixture(t)
	register(t, f.svc, "alice", "alice@example.com", "pass123")

	f.svc.Authenticate(context.Background(), "alice", "wrong")
	if _, err := f.svc.Authenticate(context.Background(), "alice", "pass123"); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if n := f.throttle.failures["alice"]; n != 0 {
		t.Fatalf("expected throttle reset, got %d failures", n)
	}
}

func TestAuthService_Authenticate_ThrottleErrorFailsOpen(t *testing.T) {
	f := newAuthFixture(t)
	register(t, f.svc, "alice", "alice@example.com", "pass123")
	f.throttle.err = errors.New("redis down")

	if _, err := f.svc.Authenticate(context.Background(), "alice", "pass123"); err != nil {
		t.Fatalf("expected sign-in to proceed, got %v", err)
	}
}
