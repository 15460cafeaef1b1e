package security

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bitlane/admin-iam/internal/core/domain"
	"github.com/bitlane/admin-iam/internal/infra/config"
)

func testJWTSettings() config.JWTSettings {
	return config.JWTSettings{
		Secret:         "test-secret-with-enough-entropy",
		Issuer:         "admin-iam",
		Audience:       "admin-api",
		AccessTokenTTL: 15 * time.Minute,
	}
}

func testUser() domain.User {
	return domain.User{
		ID:    "9f4c7e1a-0b4d-4f35-9e6a-2d1c8e5b7a90",
		Email: "operator@example.com",
	}
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	codec, err := NewTokenCodec(testJWTSettings())
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}

	user := testUser()
	signed, _, err := codec.Issue(user, []string{"admin", "auditor"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := codec.Validate(signed, false)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	if claims.Subject != user.ID {
		t.Fatalf("subject = %q, want %q", claims.Subject, user.ID)
	}
	if claims.Email != user.Email {
		t.Fatalf("email claim = %q, want %q", claims.Email, user.Email)
	}
	if len(claims.Roles) != 2 {
		t.Fatalf("roles = %v, want two entries", claims.Roles)
	}
	if claims.ID == "" {
		t.Fatal("expected non-empty jti claim")
	}
}

func TestIssueProducesUniqueTokens(t *testing.T) {
	codec, err := NewTokenCodec(testJWTSettings())
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}

	user := testUser()
	first, _, err := codec.Issue(user, nil)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	second, _, err := codec.Issue(user, nil)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if first == second {
		t.Fatal("expected distinct jti claims to produce distinct tokens")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	codec, err := NewTokenCodec(testJWTSettings())
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	codec.WithClock(func() time.Time { return base })

	signed, _, err := codec.Issue(testUser(), []string{"admin"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	codec.WithClock(func() time.Time { return base.Add(16 * time.Minute) })

	if _, err := codec.Validate(signed, false); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Validate error = %v, want ErrTokenExpired", err)
	}
}

func TestValidateAllowExpiredAcceptsExpiredToken(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	codec, err := NewTokenCodec(testJWTSettings())
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	codec.WithClock(func() time.Time { return base })

	user := testUser()
	signed, _, err := codec.Issue(user, []string{"admin"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	codec.WithClock(func() time.Time { return base.Add(24 * time.Hour) })

	claims, err := codec.Validate(signed, true)
	if err != nil {
		t.Fatalf("Validate with allowExpired returned error: %v", err)
	}
	if claims.Subject != user.ID {
		t.Fatalf("subject = %q, want %q", claims.Subject, user.ID)
	}
}

func TestValidateAllowExpiredRejectsWrongSecret(t *testing.T) {
	codec, err := NewTokenCodec(testJWTSettings())
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}

	other := testJWTSettings()
	other.Secret = "a-completely-different-secret"
	otherCodec, err := NewTokenCodec(other)
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}

	signed, _, err := otherCodec.Issue(testUser(), nil)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := codec.Validate(signed, true); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Validate error = %v, want ErrTokenInvalid", err)
	}
}

func TestValidateAllowExpiredRejectsWrongIssuer(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	settings := testJWTSettings()
	settings.Issuer = "someone-else"
	issuing, err := NewTokenCodec(settings)
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	issuing.WithClock(func() time.Time { return base })

	signed, _, err := issuing.Issue(testUser(), nil)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	codec, err := NewTokenCodec(testJWTSettings())
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	codec.WithClock(func() time.Time { return base.Add(24 * time.Hour) })

	if _, err := codec.Validate(signed, true); err == nil {
		t.Fatal("expected expired token with wrong issuer to be rejected")
	}
}

// A token re-signed with alg "none" must never pass, even when expiry
// checks are relaxed.
func TestValidateRejectsUnsignedToken(t *testing.T) {
	codec, err := NewTokenCodec(testJWTSettings())
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:  "9f4c7e1a-0b4d-4f35-9e6a-2d1c8e5b7a90",
		Issuer:   "admin-iam",
		Audience: jwt.ClaimStrings{"admin-api"},
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign with none: %v", err)
	}

	if _, err := codec.Validate(unsigned, true); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Validate error = %v, want ErrTokenInvalid", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	codec, err := NewTokenCodec(testJWTSettings())
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := codec.Validate(raw, false); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("Validate(%q) error = %v, want ErrTokenInvalid", raw, err)
		}
	}
}

func TestNewTokenCodecRequiresSecret(t *testing.T) {
	settings := testJWTSettings()
	settings.Secret = "   "
	if _, err := NewTokenCodec(settings); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestGenerateSecureToken(t *testing.T) {
	value, err := GenerateSecureToken(RefreshTokenByteLength)
	if err != nil {
		t.Fatalf("GenerateSecureToken returned error: %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		t.Fatalf("token is not standard base64: %v", err)
	}
	if len(decoded) != RefreshTokenByteLength {
		t.Fatalf("decoded length = %d, want %d", len(decoded), RefreshTokenByteLength)
	}

	other, err := GenerateSecureToken(RefreshTokenByteLength)
	if err != nil {
		t.Fatalf("GenerateSecureToken returned error: %v", err)
	}
	if value == other {
		t.Fatal("expected distinct random tokens")
	}
}

func TestGenerateSecureTokenRejectsNonPositiveLength(t *testing.T) {
	if _, err := GenerateSecureToken(0); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestSubject(t *testing.T) {
	codec, err := NewTokenCodec(testJWTSettings())
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}

	_, claims, err := codec.Issue(testUser(), nil)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	subject, err := Subject(claims)
	if err != nil {
		t.Fatalf("Subject returned error: %v", err)
	}
	if subject != testUser().ID {
		t.Fatalf("subject = %q, want %q", subject, testUser().ID)
	}

	if _, err := Subject(nil); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Subject(nil) error = %v, want ErrTokenInvalid", err)
	}

	claims.Subject = "  "
	if _, err := Subject(claims); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Subject with blank claim error = %v, want ErrTokenInvalid", err)
	}
}
