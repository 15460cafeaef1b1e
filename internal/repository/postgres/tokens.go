package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/bitlane/admin-iam/internal/core/domain"
	"github.com/bitlane/admin-iam/internal/core/port"
	"github.com/bitlane/admin-iam/internal/repository"
)

// RefreshTokenRepository implements port.RefreshTokenRepository using the
// admin.refresh_tokens table. Tokens are flagged revoked rather than deleted.
type RefreshTokenRepository struct {
	client  pgClient
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

// NewRefreshTokenRepository constructs a PostgreSQL-backed refresh token repository.
func NewRefreshTokenRepository(client pgClient) *RefreshTokenRepository {
	return &RefreshTokenRepository{
		client:  client,
		exec:    client,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the repository clock for deterministic tests.
func (r *RefreshTokenRepository) WithClock(clock func() time.Time) {
	if clock != nil {
		r.now = clock
	}
}

// WithTx returns a repository instance executing within the provided transaction.
func (r *RefreshTokenRepository) WithTx(tx pgx.Tx) *RefreshTokenRepository {
	if tx == nil {
		return r
	}
	return &RefreshTokenRepository{
		client:  r.client,
		exec:    tx,
		builder: r.builder,
		now:     r.now,
	}
}

// Create revokes every active token for the owner and inserts the new one in
// a single transaction, so a user never ends up with two usable refresh
// tokens.
func (r *RefreshTokenRepository) Create(ctx context.Context, token domain.RefreshToken) error {
	return inTx(ctx, r.client, func(tx pgx.Tx) error {
		scoped := r.WithTx(tx)

		if err := scoped.revokeAllForUser(ctx, token.UserID); err != nil {
			return err
		}

		return scoped.insert(ctx, token)
	})
}

// Replace rotates the presented token: it locks the presented row, verifies
// it is still unrevoked and unexpired, then revokes the owner's active tokens
// and inserts the replacement. A concurrent rotation (or an expiry landing
// inside the race window) surfaces as repository.ErrNoLongerActive.
func (r *RefreshTokenRepository) Replace(ctx context.Context, presentedValue string, next domain.RefreshToken) error {
	return inTx(ctx, r.client, func(tx pgx.Tx) error {
		scoped := r.WithTx(tx)

		stmt, args, err := scoped.builder.Select("revoked", "expires_at").
			From("admin.refresh_tokens").
			Where(squirrel.Eq{"token": presentedValue}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("build lock refresh token sql: %w", err)
		}

		var (
			revoked   bool
			expiresAt time.Time
		)
		if err := tx.QueryRow(ctx, stmt, args...).Scan(&revoked, &expiresAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("lock refresh token: %w", err)
		}
		if revoked || !expiresAt.After(r.now()) {
			return repository.ErrNoLongerActive
		}

		if err := scoped.revokeAllForUser(ctx, next.UserID); err != nil {
			return err
		}

		return scoped.insert(ctx, next)
	})
}

func (r *RefreshTokenRepository) insert(ctx context.Context, token domain.RefreshToken) error {
	stmt, args, err := r.builder.Insert("admin.refresh_tokens").
		Columns("id", "token", "user_id", "issued_at", "expires_at", "revoked").
		Values(token.ID, token.Value, token.UserID, token.IssuedAt, token.ExpiresAt, token.Revoked).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert refresh token sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert refresh token: %w", translateError(err))
	}

	return nil
}

func (r *RefreshTokenRepository) revokeAllForUser(ctx context.Context, userID string) error {
	stmt, args, err := r.builder.Update("admin.refresh_tokens").
		Set("revoked", true).
		Where(squirrel.Eq{"user_id": userID, "revoked": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke refresh tokens sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	return nil
}

// GetByValue looks a token up by its opaque value.
func (r *RefreshTokenRepository) GetByValue(ctx context.Context, value string) (*domain.RefreshToken, error) {
	stmt, args, err := r.builder.Select("id", "token", "user_id", "issued_at", "expires_at", "revoked").
		From("admin.refresh_tokens").
		Where(squirrel.Eq{"token": value}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select refresh token sql: %w", err)
	}

	var token domain.RefreshToken
	row := r.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(
		&token.ID,
		&token.Value,
		&token.UserID,
		&token.IssuedAt,
		&token.ExpiresAt,
		&token.Revoked,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}

	return &token, nil
}

// Revoke flags the token with the given value. Revoking an already revoked
// token succeeds; an unknown value is repository.ErrNotFound.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, value string) error {
	stmt, args, err := r.builder.Update("admin.refresh_tokens").
		Set("revoked", true).
		Where(squirrel.Eq{"token": value}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke refresh token sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.RefreshTokenRepository = (*RefreshTokenRepository)(nil)
