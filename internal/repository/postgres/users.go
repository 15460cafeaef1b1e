package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/bitlane/admin-iam/internal/core/domain"
	"github.com/bitlane/admin-iam/internal/core/port"
	"github.com/bitlane/admin-iam/internal/repository"
)

// UserRepository implements port.UserRepository using PostgreSQL tables.
type UserRepository struct {
	client  pgClient
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a PostgreSQL-backed user repository.
func NewUserRepository(client pgClient) *UserRepository {
	return &UserRepository{
		client:  client,
		exec:    client,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance executing within the provided transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{
		client:  r.client,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts the user and its initial role assignments in one transaction.
func (r *UserRepository) Create(ctx context.Context, user domain.User, roleIDs []string) error {
	return inTx(ctx, r.client, func(tx pgx.Tx) error {
		stmt, args, err := r.builder.Insert("admin.users").
			Columns("id", "username", "email", "password_hash", "created_at", "failed_login_attempts").
			Values(user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt, user.FailedLoginAttempts).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert user sql: %w", err)
		}

		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("insert user: %w", translateError(err))
		}

		assignedAt := time.Now().UTC()
		for _, roleID := range roleIDs {
			stmt, args, err := r.builder.Insert("admin.user_roles").
				Columns("user_id", "role_id", "assigned_at").
				Values(user.ID, roleID, assignedAt).
				ToSql()
			if err != nil {
				return fmt.Errorf("build insert user role sql: %w", err)
			}

			if _, err := tx.Exec(ctx, stmt, args...); err != nil {
				return fmt.Errorf("insert user role: %w", translateError(err))
			}
		}

		return nil
	})
}

// GetByID fetches a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByEmail fetches a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email})
}

func (r *UserRepository) getBy(ctx context.Context, where squirrel.Eq) (*domain.User, error) {
	stmt, args, err := r.builder.Select(
		"id", "username", "email", "password_hash",
		"created_at", "last_login", "failed_login_attempts", "locked_until",
	).
		From("admin.users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user        domain.User
		lastLogin   sql.NullTime
		lockedUntil sql.NullTime
	)

	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&lastLogin,
		&user.FailedLoginAttempts,
		&lockedUntil,
	); err != nil {
		return nil, err
	}

	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}
	if lockedUntil.Valid {
		t := lockedUntil.Time
		user.LockedUntil = &t
	}

	return &user, nil
}

// List returns a page of users ordered by username plus the unpaginated total.
func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	countStmt, countArgs, err := r.builder.Select("COUNT(*)").
		From("admin.users").
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count users sql: %w", err)
	}

	var total int
	if err := r.exec.QueryRow(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	stmt, args, err := r.builder.Select(
		"id", "username", "email", "password_hash",
		"created_at", "last_login", "failed_login_attempts", "locked_until",
	).
		From("admin.users").
		OrderBy("username ASC").
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	return users, total, nil
}

// Delete removes the user together with its role assignments and refresh
// tokens. Token rows go too because the account itself is gone rather than
// merely signed out.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return inTx(ctx, r.client, func(tx pgx.Tx) error {
		for _, table := range []string{"admin.user_roles", "admin.refresh_tokens"} {
			stmt, args, err := r.builder.Delete(table).
				Where(squirrel.Eq{"user_id": id}).
				ToSql()
			if err != nil {
				return fmt.Errorf("build delete %s sql: %w", table, err)
			}
			if _, err := tx.Exec(ctx, stmt, args...); err != nil {
				return fmt.Errorf("delete from %s: %w", table, err)
			}
		}

		stmt, args, err := r.builder.Delete("admin.users").
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete user sql: %w", err)
		}

		ct, err := tx.Exec(ctx, stmt, args...)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return repository.ErrNotFound
		}

		return nil
	})
}

// UpdateLoginState records the outcome of an authentication attempt.
func (r *UserRepository) UpdateLoginState(ctx context.Context, userID string, failedAttempts int, lockedUntil *time.Time, lastLogin *time.Time) error {
	update := r.builder.Update("admin.users").
		Set("failed_login_attempts", failedAttempts).
		Set("locked_until", lockedUntil).
		Where(squirrel.Eq{"id": userID})

	if lastLogin != nil {
		update = update.Set("last_login", lastLogin)
	}

	stmt, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build update login state sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update login state: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.UserRepository = (*UserRepository)(nil)
