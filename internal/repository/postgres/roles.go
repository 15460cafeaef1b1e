package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bitlane/admin-iam/internal/core/domain"
	"github.com/bitlane/admin-iam/internal/core/port"
	"github.com/bitlane/admin-iam/internal/repository"
)

// RoleRepository implements role, translation, and assignment persistence.
type RoleRepository struct {
	client  pgClient
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRoleRepository constructs a PostgreSQL-backed role repository.
func NewRoleRepository(client pgClient) *RoleRepository {
	return &RoleRepository{
		client:  client,
		exec:    client,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance executing within the provided transaction.
func (r *RoleRepository) WithTx(tx pgx.Tx) *RoleRepository {
	if tx == nil {
		return r
	}
	return &RoleRepository{
		client:  r.client,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts the role together with all supplied translations in one
// transaction.
func (r *RoleRepository) Create(ctx context.Context, role domain.Role, translations []domain.RoleTranslation) error {
	return inTx(ctx, r.client, func(tx pgx.Tx) error {
		scoped := r.WithTx(tx)

		stmt, args, err := scoped.builder.Insert("admin.roles").
			Columns("id", "name").
			Values(role.ID, role.Name).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert role sql: %w", err)
		}

		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("insert role: %w", translateError(err))
		}

		for _, tr := range translations {
			if err := scoped.insertTranslation(ctx, role.ID, tr); err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *RoleRepository) insertTranslation(ctx context.Context, roleID string, tr domain.RoleTranslation) error {
	id := tr.ID
	if id == "" {
		id = uuid.NewString()
	}

	stmt, args, err := r.builder.Insert("admin.role_translations").
		Columns("id", "role_id", "language_key", "translated_name").
		Values(id, roleID, tr.LanguageKey, tr.TranslatedName).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert role translation sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert role translation: %w", translateError(err))
	}

	return nil
}

// GetByName fetches a role by its normalized name.
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.getBy(ctx, squirrel.Eq{"name": name})
}

// GetByID fetches a role by primary key.
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

func (r *RoleRepository) getBy(ctx context.Context, where squirrel.Eq) (*domain.Role, error) {
	stmt, args, err := r.builder.Select("id", "name").
		From("admin.roles").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role sql: %w", err)
	}

	var role domain.Role
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan role: %w", err)
	}

	return &role, nil
}

// Update renames the role and reconciles its translations against the
// supplied set inside one transaction. Stored language keys missing from the
// set are deleted, present ones updated, new ones inserted.
func (r *RoleRepository) Update(ctx context.Context, role domain.Role, translations []domain.RoleTranslation) error {
	return inTx(ctx, r.client, func(tx pgx.Tx) error {
		scoped := r.WithTx(tx)

		stmt, args, err := scoped.builder.Update("admin.roles").
			Set("name", role.Name).
			Where(squirrel.Eq{"id": role.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update role sql: %w", err)
		}

		ct, err := tx.Exec(ctx, stmt, args...)
		if err != nil {
			return fmt.Errorf("update role: %w", translateError(err))
		}
		if ct.RowsAffected() == 0 {
			return repository.ErrNotFound
		}

		existing, err := scoped.ListTranslations(ctx, role.ID)
		if err != nil {
			return err
		}

		desired := make(map[string]domain.RoleTranslation, len(translations))
		for _, tr := range translations {
			desired[tr.LanguageKey] = tr
		}

		for _, current := range existing {
			tr, keep := desired[current.LanguageKey]
			if !keep {
				if err := scoped.deleteTranslation(ctx, current.ID); err != nil {
					return err
				}
				continue
			}

			if tr.TranslatedName != current.TranslatedName {
				if err := scoped.updateTranslation(ctx, current.ID, tr.TranslatedName); err != nil {
					return err
				}
			}
			delete(desired, current.LanguageKey)
		}

		// Whatever is left in desired had no stored counterpart.
		for _, tr := range translations {
			if _, pending := desired[tr.LanguageKey]; !pending {
				continue
			}
			if err := scoped.insertTranslation(ctx, role.ID, tr); err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *RoleRepository) deleteTranslation(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("admin.role_translations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete role translation sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete role translation: %w", err)
	}

	return nil
}

func (r *RoleRepository) updateTranslation(ctx context.Context, id, translatedName string) error {
	stmt, args, err := r.builder.Update("admin.role_translations").
		Set("translated_name", translatedName).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update role translation sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("update role translation: %w", err)
	}

	return nil
}

// Delete removes the role's translations, its user assignments, and the role
// itself in one transaction.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	return inTx(ctx, r.client, func(tx pgx.Tx) error {
		for _, table := range []string{"admin.role_translations", "admin.user_roles"} {
			column := "role_id"
			stmt, args, err := r.builder.Delete(table).
				Where(squirrel.Eq{column: id}).
				ToSql()
			if err != nil {
				return fmt.Errorf("build delete from %s sql: %w", table, err)
			}
			if _, err := tx.Exec(ctx, stmt, args...); err != nil {
				return fmt.Errorf("delete from %s: %w", table, err)
			}
		}

		stmt, args, err := r.builder.Delete("admin.roles").
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete role sql: %w", err)
		}

		ct, err := tx.Exec(ctx, stmt, args...)
		if err != nil {
			return fmt.Errorf("delete role: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return repository.ErrNotFound
		}

		return nil
	})
}

// ListWithTranslations returns roles joined with the translation for the
// requested language, falling back to the bare role name, ordered by name,
// plus the unpaginated total.
func (r *RoleRepository) ListWithTranslations(ctx context.Context, languageKey string, offset, limit int) ([]domain.RoleWithTranslation, int, error) {
	countStmt, countArgs, err := r.builder.Select("COUNT(*)").
		From("admin.roles").
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count roles sql: %w", err)
	}

	var total int
	if err := r.exec.QueryRow(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count roles: %w", err)
	}

	stmt, args, err := r.builder.Select(
		"r.id",
		"r.name",
		"COALESCE(t.translated_name, r.name) AS translated_name",
	).
		From("admin.roles r").
		LeftJoin("admin.role_translations t ON t.role_id = r.id AND t.language_key = ?", languageKey).
		OrderBy("r.name ASC").
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.RoleWithTranslation
	for rows.Next() {
		var role domain.RoleWithTranslation
		if err := rows.Scan(&role.ID, &role.Name, &role.TranslatedName); err != nil {
			return nil, 0, fmt.Errorf("scan role row: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate roles: %w", err)
	}

	return roles, total, nil
}

// ListTranslations returns every stored translation for the role.
func (r *RoleRepository) ListTranslations(ctx context.Context, roleID string) ([]domain.RoleTranslation, error) {
	stmt, args, err := r.builder.Select("id", "role_id", "language_key", "translated_name").
		From("admin.role_translations").
		Where(squirrel.Eq{"role_id": roleID}).
		OrderBy("language_key ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list role translations sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query role translations: %w", err)
	}
	defer rows.Close()

	var translations []domain.RoleTranslation
	for rows.Next() {
		var tr domain.RoleTranslation
		if err := rows.Scan(&tr.ID, &tr.RoleID, &tr.LanguageKey, &tr.TranslatedName); err != nil {
			return nil, fmt.Errorf("scan role translation: %w", err)
		}
		translations = append(translations, tr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role translations: %w", err)
	}

	return translations, nil
}

// ListByUser returns the roles assigned to a user ordered by name.
func (r *RoleRepository) ListByUser(ctx context.Context, userID string) ([]domain.Role, error) {
	stmt, args, err := r.builder.Select("r.id", "r.name").
		From("admin.roles r").
		Join("admin.user_roles ur ON ur.role_id = r.id").
		Where(squirrel.Eq{"ur.user_id": userID}).
		OrderBy("r.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list user roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query user roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan user role: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user roles: %w", err)
	}

	return roles, nil
}

// IsAssigned reports whether the role is currently assigned to the user.
func (r *RoleRepository) IsAssigned(ctx context.Context, roleID, userID string) (bool, error) {
	stmt, args, err := r.builder.Select("1").
		From("admin.user_roles").
		Where(squirrel.Eq{"role_id": roleID, "user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select user role sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("scan user role: %w", err)
	}

	return true, nil
}

// AssignToUser records a role assignment.
func (r *RoleRepository) AssignToUser(ctx context.Context, roleID, userID string) error {
	stmt, args, err := r.builder.Insert("admin.user_roles").
		Columns("user_id", "role_id", "assigned_at").
		Values(userID, roleID, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user role sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert user role: %w", translateError(err))
	}

	return nil
}

// RemoveFromUser removes a role assignment. repository.ErrNotFound when the
// assignment does not exist.
func (r *RoleRepository) RemoveFromUser(ctx context.Context, roleID, userID string) error {
	stmt, args, err := r.builder.Delete("admin.user_roles").
		Where(squirrel.Eq{"role_id": roleID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user role sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete user role: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.RoleRepository = (*RoleRepository)(nil)
