package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitlane/admin-iam/internal/core/domain"
	"github.com/bitlane/admin-iam/internal/core/port"
	"github.com/bitlane/admin-iam/internal/infra/config"
	"github.com/bitlane/admin-iam/internal/infra/logger"
	"github.com/bitlane/admin-iam/internal/infra/security"
	"github.com/bitlane/admin-iam/internal/repository"
)

// LoginResult carries the outcome of a successful authentication.
type LoginResult struct {
	User   domain.User
	Roles  []string
	Tokens TokenPair
}

// AuthService orchestrates credential checks, lockout tracking, and token
// issuance.
type AuthService struct {
	users  port.UserRepository
	roles  port.RoleRepository
	tokens *TokenService
	events port.EventPublisher
	cfg    config.AuthSettings
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	users port.UserRepository,
	roles port.RoleRepository,
	tokens *TokenService,
	events port.EventPublisher,
	cfg config.AuthSettings,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}

	return &AuthService{
		users:  users,
		roles:  roles,
		tokens: tokens,
		events: events,
		cfg:    cfg,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock for deterministic tests.
func (s *AuthService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Login authenticates by email and password. An unknown email and a wrong
// password are indistinguishable to the caller; a locked account is reported
// distinctly. Consecutive failures increment a counter on the user row and
// crossing the threshold locks the account for the configured duration.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var result LoginResult

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return result, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return result, ErrInvalidCredentials
		}
		return result, fmt.Errorf("lookup user: %w", err)
	}

	now := s.now()
	if user.IsLocked(now) {
		return result, ErrAccountLocked
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return result, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.recordFailure(ctx, user, now)
		return result, ErrInvalidCredentials
	}

	lastLogin := now
	if err := s.users.UpdateLoginState(ctx, user.ID, 0, nil, &lastLogin); err != nil {
		s.logger.Warn("reset login state failed",
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Error(err),
		)
	}

	roles, err := s.roles.ListByUser(ctx, user.ID)
	if err != nil {
		return result, fmt.Errorf("list user roles: %w", err)
	}
	roleNames := make([]string, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, role.Name)
	}

	pair, err := s.tokens.IssueTokens(ctx, *user, roleNames)
	if err != nil {
		return result, fmt.Errorf("issue tokens: %w", err)
	}

	event := domain.UserLoggedInEvent{
		EventID:  uuid.NewString(),
		UserID:   user.ID,
		Email:    user.Email,
		Roles:    roleNames,
		LoggedAt: now,
	}
	if err := s.events.PublishUserLoggedIn(ctx, event); err != nil {
		s.logger.Warn("publish login event failed", zap.Error(err))
	}

	result.User = *user
	result.Roles = roleNames
	result.Tokens = pair
	return result, nil
}

func (s *AuthService) recordFailure(ctx context.Context, user *domain.User, now time.Time) {
	attempts := user.FailedLoginAttempts + 1

	var lockedUntil *time.Time
	if s.cfg.MaxFailedLogins > 0 && attempts >= s.cfg.MaxFailedLogins {
		deadline := now.Add(s.cfg.LockoutDuration)
		lockedUntil = &deadline
		attempts = 0
		s.logger.Warn("account locked after repeated failures",
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Time("locked_until", deadline),
		)
	}

	if err := s.users.UpdateLoginState(ctx, user.ID, attempts, lockedUntil, nil); err != nil {
		s.logger.Warn("record failed login failed",
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Error(err),
		)
	}
}

// Refresh exchanges an access/refresh token pair for a fresh one.
func (s *AuthService) Refresh(ctx context.Context, accessToken, refreshValue string) (TokenPair, error) {
	return s.tokens.Rotate(ctx, accessToken, refreshValue)
}

// Logout revokes the presented refresh token. Unknown values are a no-op so
// repeated logouts succeed.
func (s *AuthService) Logout(ctx context.Context, refreshValue string) error {
	return s.tokens.Revoke(ctx, refreshValue)
}
