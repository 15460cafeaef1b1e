package port

import (
	"context"

	"github.com/bitlane/admin-iam/internal/core/domain"
)

// RefreshTokenRepository abstracts persistence for refresh tokens. Tokens are
// never deleted, only flagged revoked.
type RefreshTokenRepository interface {
	// Create revokes every non-revoked token belonging to token.UserID and
	// inserts the new one, all within a single transaction.
	Create(ctx context.Context, token domain.RefreshToken) error
	// Replace behaves like Create but additionally locks the presented
	// token's row and verifies it is still unrevoked before inserting the
	// replacement. When a concurrent rotation already consumed the
	// presented token, Replace fails with repository.ErrNoLongerActive.
	Replace(ctx context.Context, presentedValue string, next domain.RefreshToken) error
	GetByValue(ctx context.Context, value string) (*domain.RefreshToken, error)
	// Revoke flags the token; repository.ErrNotFound when the value is unknown.
	Revoke(ctx context.Context, value string) error
}
