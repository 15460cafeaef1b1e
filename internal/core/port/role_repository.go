package port

import (
	"context"

	"github.com/bitlane/admin-iam/internal/core/domain"
)

// RoleRepository abstracts persistence for roles, their per-language display
// names, and user assignments. Multi-step mutations (Create, Update, Delete)
// execute inside a single storage transaction.
type RoleRepository interface {
	// Create inserts the role together with all supplied translations.
	Create(ctx context.Context, role domain.Role, translations []domain.RoleTranslation) error
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	// Update renames the role (when the name changed) and reconciles its
	// translations against the supplied set: stored language keys missing
	// from the set are deleted, present ones are updated or inserted.
	Update(ctx context.Context, role domain.Role, translations []domain.RoleTranslation) error
	// Delete removes the role's translations and the role itself in one
	// transaction; either both succeed or neither does.
	Delete(ctx context.Context, id string) error
	// ListWithTranslations returns roles joined with the translation for
	// languageKey (falling back to the bare role name), ordered by name,
	// plus the unpaginated total.
	ListWithTranslations(ctx context.Context, languageKey string, offset, limit int) ([]domain.RoleWithTranslation, int, error)
	ListTranslations(ctx context.Context, roleID string) ([]domain.RoleTranslation, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Role, error)
	IsAssigned(ctx context.Context, roleID, userID string) (bool, error)
	AssignToUser(ctx context.Context, roleID, userID string) error
	RemoveFromUser(ctx context.Context, roleID, userID string) error
}
