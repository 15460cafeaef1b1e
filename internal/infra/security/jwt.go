package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bitlane/admin-iam/internal/core/domain"
	"github.com/bitlane/admin-iam/internal/infra/config"
)

// ErrTokenInvalid indicates a token that failed signature or claim validation.
var ErrTokenInvalid = errors.New("jwt: token invalid")

// ErrTokenExpired indicates a structurally valid token past its expiry.
var ErrTokenExpired = errors.New("jwt: token expired")

// AccessClaims augments registered claims with the caller's identity and roles.
type AccessClaims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and validates HMAC-SHA256 access tokens. The same secret
// is used for both directions, so every instance must be constructed from the
// same configuration.
type TokenCodec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

const defaultAccessTokenTTL = 15 * time.Minute

// NewTokenCodec constructs a TokenCodec from JWT settings.
func NewTokenCodec(cfg config.JWTSettings) (*TokenCodec, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, fmt.Errorf("jwt: signing secret is required")
	}

	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = defaultAccessTokenTTL
	}

	return &TokenCodec{
		secret:   []byte(secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// WithClock overrides the codec's time source. Intended for tests.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

// AccessTokenTTL reports the configured access token lifetime.
func (c *TokenCodec) AccessTokenTTL() time.Duration {
	return c.ttl
}

// Issue signs a fresh access token for the user with the supplied role names.
// The subject claim carries the user id and the jti is unique per token, so
// tokens issued back-to-back for the same user never collide.
func (c *TokenCodec) Issue(user domain.User, roles []string) (string, *AccessClaims, error) {
	if strings.TrimSpace(user.ID) == "" {
		return "", nil, fmt.Errorf("jwt: user id is required")
	}

	now := c.now().UTC()
	claims := &AccessClaims{
		Email: user.Email,
		Roles: normalizeRoles(roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, claims, nil
}

// Subject extracts the user id carried by validated claims.
func Subject(claims *AccessClaims) (string, error) {
	if claims == nil {
		return "", ErrTokenInvalid
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", fmt.Errorf("%w: missing subject claim", ErrTokenInvalid)
	}
	return subject, nil
}

// Validate parses and verifies an access token, returning its claims.
//
// With allowExpired set, a token whose only defect is being past its expiry
// is still accepted. Signature, signing method, issuer and audience failures
// are rejected regardless, which is what token rotation relies on.
func (c *TokenCodec) Validate(raw string, allowExpired bool) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			// Claim validation errors are joined, so expiry may arrive
			// together with an issuer or audience mismatch. Only a token
			// whose sole problem is expiry passes the relaxed check.
			if allowExpired &&
				!errors.Is(err, jwt.ErrTokenInvalidIssuer) &&
				!errors.Is(err, jwt.ErrTokenInvalidAudience) {
				return claims, nil
			}
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	return claims, nil
}

func (c *TokenCodec) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("jwt: unexpected signing method %v", token.Header["alg"])
	}
	return c.secret, nil
}

func normalizeRoles(input []string) []string {
	if len(input) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, role := range input {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		if _, exists := seen[role]; exists {
			continue
		}
		seen[role] = struct{}{}
		result = append(result, role)
	}

	if len(result) == 0 {
		return nil
	}

	return result
}
