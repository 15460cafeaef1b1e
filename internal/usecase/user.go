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
	"github.com/bitlane/admin-iam/internal/infra/security"
	"github.com/bitlane/admin-iam/internal/repository"
)

// CreateUserInput captures the payload for provisioning an account.
type CreateUserInput struct {
	Email    string
	Username string
	Password string
	Roles    []string
}

// UserWithRoles pairs an account with its assigned role names.
type UserWithRoles struct {
	User  domain.User
	Roles []string
}

// UserListPage is one page of accounts plus the unpaginated total.
type UserListPage struct {
	Users      []domain.User
	TotalCount int
}

// UserService manages administrative accounts.
type UserService struct {
	users  port.UserRepository
	roles  port.RoleRepository
	events port.EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(users port.UserRepository, roles port.RoleRepository, events port.EventPublisher, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}

	return &UserService{
		users:  users,
		roles:  roles,
		events: events,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock for deterministic tests.
func (s *UserService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// CreateUser provisions an account with an argon2id password hash and its
// initial role assignments in one transaction.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (domain.User, error) {
	var user domain.User

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return user, fmt.Errorf("email is required")
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return user, fmt.Errorf("username is required")
	}
	if input.Password == "" {
		return user, fmt.Errorf("password is required")
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return user, ErrEmailTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return user, fmt.Errorf("lookup user by email: %w", err)
	}

	roleIDs := make([]string, 0, len(input.Roles))
	roleNames := make([]string, 0, len(input.Roles))
	for _, name := range input.Roles {
		role, err := s.roles.GetByName(ctx, domain.NormalizeRoleName(name))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return user, ErrRoleNotFound
			}
			return user, fmt.Errorf("lookup role: %w", err)
		}
		roleIDs = append(roleIDs, role.ID)
		roleNames = append(roleNames, role.Name)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return user, fmt.Errorf("hash password: %w", err)
	}

	user = domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if err := s.users.Create(ctx, user, roleIDs); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	event := domain.UserCreatedEvent{
		EventID:   uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Roles:     roleNames,
		CreatedAt: user.CreatedAt,
	}
	if err := s.events.PublishUserCreated(ctx, event); err != nil {
		s.logger.Warn("publish user created event failed", zap.Error(err))
	}

	return user, nil
}

// GetUser fetches an account together with its role names.
func (s *UserService) GetUser(ctx context.Context, id string) (UserWithRoles, error) {
	var result UserWithRoles

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return result, ErrUserNotFound
		}
		return result, fmt.Errorf("lookup user: %w", err)
	}

	roles, err := s.roles.ListByUser(ctx, id)
	if err != nil {
		return result, fmt.Errorf("list user roles: %w", err)
	}

	result.User = *user
	result.Roles = make([]string, 0, len(roles))
	for _, role := range roles {
		result.Roles = append(result.Roles, role.Name)
	}

	return result, nil
}

// ListUsers returns a page of accounts ordered by username.
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) (UserListPage, error) {
	var result UserListPage

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	users, total, err := s.users.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return result, fmt.Errorf("list users: %w", err)
	}

	result.Users = users
	result.TotalCount = total
	return result, nil
}

// DeleteUser removes the account, its role assignments, and its refresh
// tokens.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	event := domain.UserDeletedEvent{
		EventID:   uuid.NewString(),
		UserID:    id,
		DeletedAt: s.now(),
	}
	if err := s.events.PublishUserDeleted(ctx, event); err != nil {
		s.logger.Warn("publish user deleted event failed", zap.Error(err))
	}

	return nil
}
