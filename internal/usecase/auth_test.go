package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bitlane/admin-iam/internal/core/domain"
	"github.com/bitlane/admin-iam/internal/infra/config"
	"github.com/bitlane/admin-iam/internal/infra/security"
)

type authFixture struct {
	service *AuthService
	users   *stubUserRepository
	roles   *stubRoleRepository
	tokens  *stubRefreshTokenRepository
	events  *recordingPublisher
	user    domain.User
	base    time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	hash, err := security.HashPassword("s3cure-Passw0rd")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	user := domain.User{
		ID:           "user-1",
		Username:     "operator",
		Email:        "operator@example.com",
		PasswordHash: hash,
	}

	users := newStubUserRepository(user)
	roles := newStubRoleRepository()
	roles.userRoles[user.ID] = []domain.Role{{ID: "role-1", Name: "admin"}}
	tokens := newStubRefreshTokenRepository()
	events := &recordingPublisher{}

	codec := testCodec(t, fixedClock(base))
	tokenService := NewTokenService(codec, tokens, users, roles, events, 7*24*time.Hour, nil)
	tokenService.WithClock(fixedClock(base))

	service := NewAuthService(users, roles, tokenService, events, config.AuthSettings{
		MaxFailedLogins: 3,
		LockoutDuration: 15 * time.Minute,
	}, nil)
	service.WithClock(fixedClock(base))

	return &authFixture{
		service: service,
		users:   users,
		roles:   roles,
		tokens:  tokens,
		events:  events,
		user:    user,
		base:    base,
	}
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.service.Login(context.Background(), "operator@example.com", "s3cure-Passw0rd")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if len(result.Roles) != 1 || result.Roles[0] != "admin" {
		t.Fatalf("roles = %v, want [admin]", result.Roles)
	}
	if len(f.events.logins) != 1 {
		t.Fatalf("expected one login event, got %d", len(f.events.logins))
	}

	// Successful login resets the failure counter and stamps last_login.
	last := f.users.loginStates[len(f.users.loginStates)-1]
	if last.failedAttempts != 0 || last.lastLogin == nil {
		t.Fatalf("unexpected login state update: %+v", last)
	}
}

func TestLoginUnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)

	_, unknownErr := f.service.Login(context.Background(), "nobody@example.com", "whatever")
	_, wrongErr := f.service.Login(context.Background(), "operator@example.com", "wrong-password")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown email error = %v, want ErrInvalidCredentials", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password error = %v, want ErrInvalidCredentials", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatal("expected identical errors for unknown email and wrong password")
	}
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	f := newAuthFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := f.service.Login(context.Background(), "operator@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d error = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	if _, err := f.service.Login(context.Background(), "operator@example.com", "s3cure-Passw0rd"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("locked account error = %v, want ErrAccountLocked", err)
	}
}

func TestLoginLockoutExpires(t *testing.T) {
	f := newAuthFixture(t)

	for i := 0; i < 3; i++ {
		_, _ = f.service.Login(context.Background(), "operator@example.com", "wrong")
	}

	// Past the lockout deadline the account opens up again.
	later := f.base.Add(16 * time.Minute)
	f.service.WithClock(fixedClock(later))

	if _, err := f.service.Login(context.Background(), "operator@example.com", "s3cure-Passw0rd"); err != nil {
		t.Fatalf("Login after lockout expiry returned error: %v", err)
	}
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	f := newAuthFixture(t)

	if _, err := f.service.Login(context.Background(), "  Operator@Example.COM ", "s3cure-Passw0rd"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.service.Login(context.Background(), "operator@example.com", "s3cure-Passw0rd")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := f.service.Logout(context.Background(), result.Tokens.RefreshToken); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if err := f.service.Logout(context.Background(), result.Tokens.RefreshToken); err != nil {
		t.Fatalf("repeated Logout returned error: %v", err)
	}
	if err := f.service.Logout(context.Background(), "unknown"); err != nil {
		t.Fatalf("Logout of unknown value returned error: %v", err)
	}
}

func TestRefreshDelegatesToRotation(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.service.Login(context.Background(), "operator@example.com", "s3cure-Passw0rd")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	pair, err := f.service.Refresh(context.Background(), result.Tokens.AccessToken, result.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if pair.RefreshToken == result.Tokens.RefreshToken {
		t.Fatal("expected rotated refresh token")
	}

	// The earlier refresh token is now spent.
	if _, err := f.service.Refresh(context.Background(), result.Tokens.AccessToken, result.Tokens.RefreshToken); !errors.Is(err, ErrRefreshTokenExpiredOrRevoked) {
		t.Fatalf("replayed refresh error = %v, want ErrRefreshTokenExpiredOrRevoked", err)
	}
}
