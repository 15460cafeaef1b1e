package port

import (
	"context"

	"github.com/bitlane/admin-iam/internal/core/domain"
)

// EventPublisher publishes audit events to the message bus. Publish failures
// must never fail the operation that produced the event.
type EventPublisher interface {
	PublishUserLoggedIn(ctx context.Context, event domain.UserLoggedInEvent) error
	PublishTokensRotated(ctx context.Context, event domain.TokensRotatedEvent) error
	PublishRefreshTokenRevoked(ctx context.Context, event domain.RefreshTokenRevokedEvent) error
	PublishRoleChanged(ctx context.Context, event domain.RoleChangedEvent) error
	PublishRoleAssignmentChanged(ctx context.Context, event domain.RoleAssignmentChangedEvent) error
	PublishUserCreated(ctx context.Context, event domain.UserCreatedEvent) error
	PublishUserDeleted(ctx context.Context, event domain.UserDeletedEvent) error
}
