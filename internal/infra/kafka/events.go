package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitlane/admin-iam/internal/core/domain"
	"github.com/bitlane/admin-iam/internal/core/port"
	"github.com/bitlane/admin-iam/internal/infra/config"
)

const schemaVersion = "1.0"

// Topic names published by the admin service.
const (
	TopicUserLoggedIn          = "admin.auth.login"
	TopicTokensRotated         = "admin.auth.token.rotated"
	TopicRefreshTokenRevoked   = "admin.auth.token.revoked"
	TopicRoleChanged           = "admin.role.changed"
	TopicRoleAssignmentChanged = "admin.role.assignment"
	TopicUserCreated           = "admin.user.created"
	TopicUserDeleted           = "admin.user.deleted"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: envelopeMetadata{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserLoggedIn publishes admin.auth.login events.
func (p *EventPublisher) PublishUserLoggedIn(ctx context.Context, event domain.UserLoggedInEvent) error {
	payload := struct {
		UserID   string    `json:"user_id"`
		Email    string    `json:"email"`
		Roles    []string  `json:"roles,omitempty"`
		LoggedAt time.Time `json:"logged_at"`
	}{
		UserID:   event.UserID,
		Email:    event.Email,
		Roles:    event.Roles,
		LoggedAt: event.LoggedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, TopicUserLoggedIn, event.UserID, event.LoggedAt, payload)
}

// PublishTokensRotated publishes admin.auth.token.rotated events.
func (p *EventPublisher) PublishTokensRotated(ctx context.Context, event domain.TokensRotatedEvent) error {
	payload := struct {
		UserID         string    `json:"user_id"`
		RotatedTokenID string    `json:"rotated_token_id"`
		IssuedTokenID  string    `json:"issued_token_id"`
		RotatedAt      time.Time `json:"rotated_at"`
	}{
		UserID:         event.UserID,
		RotatedTokenID: event.RotatedTokenID,
		IssuedTokenID:  event.IssuedTokenID,
		RotatedAt:      event.RotatedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, TopicTokensRotated, event.UserID, event.RotatedAt, payload)
}

// PublishRefreshTokenRevoked publishes admin.auth.token.revoked events.
func (p *EventPublisher) PublishRefreshTokenRevoked(ctx context.Context, event domain.RefreshTokenRevokedEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		TokenID   string    `json:"token_id"`
		RevokedAt time.Time `json:"revoked_at"`
	}{
		UserID:    event.UserID,
		TokenID:   event.TokenID,
		RevokedAt: event.RevokedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, TopicRefreshTokenRevoked, event.UserID, event.RevokedAt, payload)
}

// PublishRoleChanged publishes admin.role.changed events.
func (p *EventPublisher) PublishRoleChanged(ctx context.Context, event domain.RoleChangedEvent) error {
	payload := struct {
		RoleID    string    `json:"role_id"`
		RoleName  string    `json:"role_name"`
		Change    string    `json:"change"`
		Languages []string  `json:"languages,omitempty"`
		ChangedAt time.Time `json:"changed_at"`
	}{
		RoleID:    event.RoleID,
		RoleName:  event.RoleName,
		Change:    string(event.Change),
		Languages: event.Languages,
		ChangedAt: event.ChangedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, TopicRoleChanged, "", event.ChangedAt, payload)
}

// PublishRoleAssignmentChanged publishes admin.role.assignment events.
func (p *EventPublisher) PublishRoleAssignmentChanged(ctx context.Context, event domain.RoleAssignmentChangedEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		RoleID    string    `json:"role_id"`
		RoleName  string    `json:"role_name"`
		Assigned  bool      `json:"assigned"`
		ChangedAt time.Time `json:"changed_at"`
	}{
		UserID:    event.UserID,
		RoleID:    event.RoleID,
		RoleName:  event.RoleName,
		Assigned:  event.Assigned,
		ChangedAt: event.ChangedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, TopicRoleAssignmentChanged, event.UserID, event.ChangedAt, payload)
}

// PublishUserCreated publishes admin.user.created events.
func (p *EventPublisher) PublishUserCreated(ctx context.Context, event domain.UserCreatedEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		Email     string    `json:"email"`
		Username  string    `json:"username"`
		Roles     []string  `json:"roles,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}{
		UserID:    event.UserID,
		Email:     event.Email,
		Username:  event.Username,
		Roles:     event.Roles,
		CreatedAt: event.CreatedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, TopicUserCreated, event.UserID, event.CreatedAt, payload)
}

// PublishUserDeleted publishes admin.user.deleted events.
func (p *EventPublisher) PublishUserDeleted(ctx context.Context, event domain.UserDeletedEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		DeletedAt time.Time `json:"deleted_at"`
	}{
		UserID:    event.UserID,
		DeletedAt: event.DeletedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, TopicUserDeleted, event.UserID, event.DeletedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
