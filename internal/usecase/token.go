package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitlane/admin-iam/internal/core/domain"
	"github.com/bitlane/admin-iam/internal/core/port"
	"github.com/bitlane/admin-iam/internal/infra/security"
	"github.com/bitlane/admin-iam/internal/repository"
)

// TokenPair bundles the credentials handed to a caller after issuance or
// rotation.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// TokenService orchestrates access token issuance and refresh token rotation.
type TokenService struct {
	codec      *security.TokenCodec
	tokens     port.RefreshTokenRepository
	users      port.UserRepository
	roles      port.RoleRepository
	events     port.EventPublisher
	logger     *zap.Logger
	refreshTTL time.Duration
	now        func() time.Time
	newValue   func() (string, error)
}

// NewTokenService constructs a TokenService instance.
func NewTokenService(
	codec *security.TokenCodec,
	tokens port.RefreshTokenRepository,
	users port.UserRepository,
	roles port.RoleRepository,
	events port.EventPublisher,
	refreshTTL time.Duration,
	logger *zap.Logger,
) *TokenService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TokenService{
		codec:      codec,
		tokens:     tokens,
		users:      users,
		roles:      roles,
		events:     events,
		logger:     logger,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
		newValue: func() (string, error) {
			return security.GenerateSecureToken(security.RefreshTokenByteLength)
		},
	}
}

// WithClock overrides the service clock for deterministic tests.
func (s *TokenService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// WithValueSource overrides refresh token value generation for tests.
func (s *TokenService) WithValueSource(source func() (string, error)) {
	if source != nil {
		s.newValue = source
	}
}

// IssueTokens signs a fresh access token for the user and persists a new
// refresh token. Any previously active refresh token of the user is revoked
// in the same transaction, so at most one stays usable.
func (s *TokenService) IssueTokens(ctx context.Context, user domain.User, roles []string) (TokenPair, error) {
	var pair TokenPair

	access, _, err := s.codec.Issue(user, roles)
	if err != nil {
		return pair, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := s.mintRefreshToken(user.ID)
	if err != nil {
		return pair, err
	}

	if err := s.tokens.Create(ctx, refresh); err != nil {
		return pair, fmt.Errorf("persist refresh token: %w", err)
	}

	pair.AccessToken = access
	pair.RefreshToken = refresh.Value
	pair.ExpiresIn = s.codec.AccessTokenTTL()
	return pair, nil
}

// Rotate exchanges an expired (or still valid) access token plus its refresh
// token for a fresh pair. The access token's signature, issuer, and audience
// must all verify; only its expiry is forgiven. The presented refresh token
// must belong to the access token's subject and still be usable. Exactly one
// concurrent rotation of the same refresh token can win.
func (s *TokenService) Rotate(ctx context.Context, accessToken, refreshValue string) (TokenPair, error) {
	var pair TokenPair

	claims, err := s.codec.Validate(accessToken, true)
	if err != nil {
		return pair, ErrInvalidAccessToken
	}

	userID, err := security.Subject(claims)
	if err != nil {
		return pair, ErrInvalidAccessToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return pair, ErrUserNotFound
		}
		return pair, fmt.Errorf("lookup user: %w", err)
	}

	stored, err := s.tokens.GetByValue(ctx, refreshValue)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return pair, ErrInvalidRefreshToken
		}
		return pair, fmt.Errorf("lookup refresh token: %w", err)
	}

	if stored.UserID != userID {
		return pair, ErrInvalidRefreshToken
	}

	now := s.now()
	if !stored.IsUsable(now) {
		return pair, ErrRefreshTokenExpiredOrRevoked
	}

	// Role assignments may have changed since the expired token was signed.
	roles, err := s.roles.ListByUser(ctx, userID)
	if err != nil {
		return pair, fmt.Errorf("list user roles: %w", err)
	}
	roleNames := make([]string, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, role.Name)
	}

	access, _, err := s.codec.Issue(*user, roleNames)
	if err != nil {
		return pair, fmt.Errorf("issue access token: %w", err)
	}

	next, err := s.mintRefreshToken(userID)
	if err != nil {
		return pair, err
	}

	if err := s.tokens.Replace(ctx, refreshValue, next); err != nil {
		if errors.Is(err, repository.ErrNoLongerActive) || errors.Is(err, repository.ErrNotFound) {
			return pair, ErrRefreshTokenExpiredOrRevoked
		}
		return pair, fmt.Errorf("replace refresh token: %w", err)
	}

	s.publishRotated(ctx, userID, stored.ID, next.ID, now)

	pair.AccessToken = access
	pair.RefreshToken = next.Value
	pair.ExpiresIn = s.codec.AccessTokenTTL()
	return pair, nil
}

// Revoke flags a refresh token. Revoking an unknown or already revoked value
// is a no-op.
func (s *TokenService) Revoke(ctx context.Context, refreshValue string) error {
	stored, err := s.tokens.GetByValue(ctx, refreshValue)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup refresh token: %w", err)
	}

	if err := s.tokens.Revoke(ctx, refreshValue); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	event := domain.RefreshTokenRevokedEvent{
		EventID:   uuid.NewString(),
		UserID:    stored.UserID,
		TokenID:   stored.ID,
		RevokedAt: s.now(),
	}
	if err := s.events.PublishRefreshTokenRevoked(ctx, event); err != nil {
		s.logger.Warn("publish token revoked event failed", zap.Error(err))
	}

	return nil
}

// ValidateAccess reports whether the access token verifies in full, expiry
// included. It never returns an error; any defect simply reads as invalid.
func (s *TokenService) ValidateAccess(_ context.Context, accessToken string) bool {
	_, err := s.codec.Validate(accessToken, false)
	return err == nil
}

// IsRefreshUsable reports whether the refresh token value exists and is
// neither revoked nor expired.
func (s *TokenService) IsRefreshUsable(ctx context.Context, refreshValue string) (bool, error) {
	stored, err := s.tokens.GetByValue(ctx, refreshValue)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup refresh token: %w", err)
	}

	return stored.IsUsable(s.now()), nil
}

func (s *TokenService) mintRefreshToken(userID string) (domain.RefreshToken, error) {
	value, err := s.newValue()
	if err != nil {
		return domain.RefreshToken{}, fmt.Errorf("generate refresh token: %w", err)
	}

	now := s.now()
	return domain.RefreshToken{
		ID:        uuid.NewString(),
		Value:     value,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshTTL),
	}, nil
}

func (s *TokenService) publishRotated(ctx context.Context, userID, rotatedID, issuedID string, at time.Time) {
	event := domain.TokensRotatedEvent{
		EventID:        uuid.NewString(),
		UserID:         userID,
		RotatedTokenID: rotatedID,
		IssuedTokenID:  issuedID,
		RotatedAt:      at,
	}
	if err := s.events.PublishTokensRotated(ctx, event); err != nil {
		s.logger.Warn("publish tokens rotated event failed", zap.Error(err))
	}
}
