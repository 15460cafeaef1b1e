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
	"github.com/bitlane/admin-iam/internal/repository"
)

// RoleTranslationInput is an incoming per-language display name.
type RoleTranslationInput struct {
	LanguageKey    string
	TranslatedName string
}

// RoleService manages roles, their translations, and user assignments.
type RoleService struct {
	roles  port.RoleRepository
	users  port.UserRepository
	events port.EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewRoleService constructs a RoleService.
func NewRoleService(roles port.RoleRepository, users port.UserRepository, events port.EventPublisher, log *zap.Logger) *RoleService {
	if log == nil {
		log = zap.NewNop()
	}

	return &RoleService{
		roles:  roles,
		users:  users,
		events: events,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock for deterministic tests.
func (s *RoleService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// CreateRole provisions a role and its translations in one transaction. Role
// names are unique case-insensitively.
func (s *RoleService) CreateRole(ctx context.Context, name string, translations []RoleTranslationInput) (domain.Role, error) {
	var role domain.Role

	normalized := domain.NormalizeRoleName(name)
	if normalized == "" {
		return role, fmt.Errorf("role name is required")
	}

	if existing, err := s.roles.GetByName(ctx, normalized); err == nil && existing != nil {
		return role, ErrRoleExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return role, fmt.Errorf("lookup role by name: %w", err)
	}

	role = domain.Role{ID: uuid.NewString(), Name: normalized}
	rows, languages, err := buildTranslations(role.ID, translations)
	if err != nil {
		return domain.Role{}, err
	}

	if err := s.roles.Create(ctx, role, rows); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Role{}, ErrRoleExists
		}
		return domain.Role{}, fmt.Errorf("%w: %v", ErrRoleCreateFailed, err)
	}

	s.publishRoleChanged(ctx, role, domain.RoleChangeCreated, languages)
	return role, nil
}

// UpdateRole reconciles a role's translations against the supplied set and
// optionally renames it, all in one transaction. An empty newName keeps the
// current name.
func (s *RoleService) UpdateRole(ctx context.Context, currentName, newName string, translations []RoleTranslationInput) (domain.Role, error) {
	var updated domain.Role

	current := domain.NormalizeRoleName(currentName)
	if current == "" {
		return updated, fmt.Errorf("role name is required")
	}

	next := domain.NormalizeRoleName(newName)
	if next == "" {
		next = current
	}

	role, err := s.roles.GetByName(ctx, current)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return updated, ErrRoleNotFound
		}
		return updated, fmt.Errorf("lookup role by name: %w", err)
	}

	if next != current {
		if existing, err := s.roles.GetByName(ctx, next); err == nil && existing != nil {
			return updated, ErrRoleExists
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return updated, fmt.Errorf("lookup role by name: %w", err)
		}
	}

	updated = domain.Role{ID: role.ID, Name: next}
	rows, languages, err := buildTranslations(role.ID, translations)
	if err != nil {
		return domain.Role{}, err
	}

	if err := s.roles.Update(ctx, updated, rows); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Role{}, ErrRoleNotFound
		}
		return domain.Role{}, fmt.Errorf("%w: %v", ErrRoleUpdateFailed, err)
	}

	s.publishRoleChanged(ctx, updated, domain.RoleChangeUpdated, languages)
	return updated, nil
}

// DeleteRole removes the role and its translations atomically. Assignments
// referencing the role go with it.
func (s *RoleService) DeleteRole(ctx context.Context, name string) error {
	normalized := domain.NormalizeRoleName(name)
	if normalized == "" {
		return fmt.Errorf("role name is required")
	}

	role, err := s.roles.GetByName(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("lookup role by name: %w", err)
	}

	if err := s.roles.Delete(ctx, role.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("%w: %v", ErrRoleDeleteFailed, err)
	}

	s.publishRoleChanged(ctx, *role, domain.RoleChangeDeleted, nil)
	return nil
}

// AssignRole grants the role to the user. Assigning an already held role is a
// hard error rather than a silent no-op.
func (s *RoleService) AssignRole(ctx context.Context, userID, roleName string) error {
	role, user, err := s.resolveAssignment(ctx, userID, roleName)
	if err != nil {
		return err
	}

	assigned, err := s.roles.IsAssigned(ctx, role.ID, user.ID)
	if err != nil {
		return fmt.Errorf("check assignment: %w", err)
	}
	if assigned {
		return ErrRoleAlreadyAssigned
	}

	if err := s.roles.AssignToUser(ctx, role.ID, user.ID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrRoleAlreadyAssigned
		}
		return fmt.Errorf("assign role: %w", err)
	}

	s.publishAssignmentChanged(ctx, user.ID, *role, true)
	return nil
}

// RemoveRole revokes the role from the user. Removing a role the user does
// not hold is a hard error.
func (s *RoleService) RemoveRole(ctx context.Context, userID, roleName string) error {
	role, user, err := s.resolveAssignment(ctx, userID, roleName)
	if err != nil {
		return err
	}

	if err := s.roles.RemoveFromUser(ctx, role.ID, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotAssigned
		}
		return fmt.Errorf("remove role: %w", err)
	}

	s.publishAssignmentChanged(ctx, user.ID, *role, false)
	return nil
}

func (s *RoleService) resolveAssignment(ctx context.Context, userID, roleName string) (*domain.Role, *domain.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil, fmt.Errorf("user id is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}

	role, err := s.roles.GetByName(ctx, domain.NormalizeRoleName(roleName))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrRoleNotFound
		}
		return nil, nil, fmt.Errorf("lookup role: %w", err)
	}

	return role, user, nil
}

// RoleListPage is one page of translated roles plus the unpaginated total.
type RoleListPage struct {
	Roles      []domain.RoleWithTranslation
	TotalCount int
}

// ListRoles returns roles with their display name for the requested language,
// falling back to the bare role name, ordered by name.
func (s *RoleService) ListRoles(ctx context.Context, languageKey string, page, pageSize int) (RoleListPage, error) {
	var result RoleListPage

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	language := domain.NormalizeLanguageKey(languageKey)
	if language == "" {
		language = "en"
	}

	roles, total, err := s.roles.ListWithTranslations(ctx, language, (page-1)*pageSize, pageSize)
	if err != nil {
		return result, fmt.Errorf("list roles: %w", err)
	}

	result.Roles = roles
	result.TotalCount = total
	return result, nil
}

// ListUserRoles returns the role names currently assigned to the user.
func (s *RoleService) ListUserRoles(ctx context.Context, userID string) ([]domain.Role, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	roles, err := s.roles.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}

	return roles, nil
}

func buildTranslations(roleID string, inputs []RoleTranslationInput) ([]domain.RoleTranslation, []string, error) {
	rows := make([]domain.RoleTranslation, 0, len(inputs))
	languages := make([]string, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))

	for _, input := range inputs {
		key := domain.NormalizeLanguageKey(input.LanguageKey)
		if key == "" {
			return nil, nil, fmt.Errorf("language key is required")
		}
		name := strings.TrimSpace(input.TranslatedName)
		if name == "" {
			return nil, nil, fmt.Errorf("translated name is required for %q", key)
		}
		if _, dup := seen[key]; dup {
			return nil, nil, fmt.Errorf("duplicate language key %q", key)
		}
		seen[key] = struct{}{}

		rows = append(rows, domain.RoleTranslation{
			ID:             uuid.NewString(),
			RoleID:         roleID,
			LanguageKey:    key,
			TranslatedName: name,
		})
		languages = append(languages, key)
	}

	return rows, languages, nil
}

func (s *RoleService) publishRoleChanged(ctx context.Context, role domain.Role, change domain.RoleChangeKind, languages []string) {
	event := domain.RoleChangedEvent{
		EventID:   uuid.NewString(),
		RoleID:    role.ID,
		RoleName:  role.Name,
		Change:    change,
		Languages: languages,
		ChangedAt: s.now(),
	}
	if err := s.events.PublishRoleChanged(ctx, event); err != nil {
		s.logger.Warn("publish role changed event failed", zap.Error(err))
	}
}

func (s *RoleService) publishAssignmentChanged(ctx context.Context, userID string, role domain.Role, assigned bool) {
	event := domain.RoleAssignmentChangedEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		RoleID:    role.ID,
		RoleName:  role.Name,
		Assigned:  assigned,
		ChangedAt: s.now(),
	}
	if err := s.events.PublishRoleAssignmentChanged(ctx, event); err != nil {
		s.logger.Warn("publish role assignment event failed", zap.Error(err))
	}
}
