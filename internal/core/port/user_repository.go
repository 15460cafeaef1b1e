package port

import (
	"context"
	"time"

	"github.com/bitlane/admin-iam/internal/core/domain"
)

// UserRepository abstracts persistence for user accounts.
type UserRepository interface {
	// Create inserts the user and its initial role assignments atomically.
	Create(ctx context.Context, user domain.User, roleIDs []string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	Delete(ctx context.Context, id string) error
	// UpdateLoginState records the outcome of an authentication attempt:
	// the failed attempt counter, an optional lockout deadline, and an
	// optional successful login timestamp.
	UpdateLoginState(ctx context.Context, userID string, failedAttempts int, lockedUntil *time.Time, lastLogin *time.Time) error
}
