package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bitlane/admin-iam/internal/core/domain"
	"github.com/bitlane/admin-iam/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserLoggedIn logs admin.auth.login events.
func (p *StubPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	payload := map[string]any{
		"user_id":   event.UserID,
		"email":     event.Email,
		"roles":     event.Roles,
		"logged_at": event.LoggedAt,
	}
	p.logEvent(TopicUserLoggedIn, event.UserID, event.LoggedAt, payload)
	return nil
}

// PublishTokensRotated logs admin.auth.token.rotated events.
func (p *StubPublisher) PublishTokensRotated(_ context.Context, event domain.TokensRotatedEvent) error {
	payload := map[string]any{
		"user_id":          event.UserID,
		"rotated_token_id": event.RotatedTokenID,
		"issued_token_id":  event.IssuedTokenID,
		"rotated_at":       event.RotatedAt,
	}
	p.logEvent(TopicTokensRotated, event.UserID, event.RotatedAt, payload)
	return nil
}

// PublishRefreshTokenRevoked logs admin.auth.token.revoked events.
func (p *StubPublisher) PublishRefreshTokenRevoked(_ context.Context, event domain.RefreshTokenRevokedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"token_id":   event.TokenID,
		"revoked_at": event.RevokedAt,
	}
	p.logEvent(TopicRefreshTokenRevoked, event.UserID, event.RevokedAt, payload)
	return nil
}

// PublishRoleChanged logs admin.role.changed events.
func (p *StubPublisher) PublishRoleChanged(_ context.Context, event domain.RoleChangedEvent) error {
	payload := map[string]any{
		"role_id":    event.RoleID,
		"role_name":  event.RoleName,
		"change":     string(event.Change),
		"languages":  event.Languages,
		"changed_at": event.ChangedAt,
	}
	p.logEvent(TopicRoleChanged, "", event.ChangedAt, payload)
	return nil
}

// PublishRoleAssignmentChanged logs admin.role.assignment events.
func (p *StubPublisher) PublishRoleAssignmentChanged(_ context.Context, event domain.RoleAssignmentChangedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"role_id":    event.RoleID,
		"role_name":  event.RoleName,
		"assigned":   event.Assigned,
		"changed_at": event.ChangedAt,
	}
	p.logEvent(TopicRoleAssignmentChanged, event.UserID, event.ChangedAt, payload)
	return nil
}

// PublishUserCreated logs admin.user.created events.
func (p *StubPublisher) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"email":      event.Email,
		"username":   event.Username,
		"roles":      event.Roles,
		"created_at": event.CreatedAt,
	}
	p.logEvent(TopicUserCreated, event.UserID, event.CreatedAt, payload)
	return nil
}

// PublishUserDeleted logs admin.user.deleted events.
func (p *StubPublisher) PublishUserDeleted(_ context.Context, event domain.UserDeletedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"deleted_at": event.DeletedAt,
	}
	p.logEvent(TopicUserDeleted, event.UserID, event.DeletedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
