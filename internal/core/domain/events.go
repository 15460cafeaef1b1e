package domain

import "time"

// UserLoggedInEvent represents the payload for admin.auth.login messages.
type UserLoggedInEvent struct {
	EventID  string
	UserID   string
	Email    string
	Roles    []string
	LoggedAt time.Time
}

// TokensRotatedEvent represents the payload for admin.auth.token.rotated messages.
type TokensRotatedEvent struct {
	EventID        string
	UserID         string
	RotatedTokenID string
	IssuedTokenID  string
	RotatedAt      time.Time
}

// RefreshTokenRevokedEvent represents the payload for admin.auth.token.revoked messages.
type RefreshTokenRevokedEvent struct {
	EventID   string
	UserID    string
	TokenID   string
	RevokedAt time.Time
}

// RoleChangeKind enumerates role lifecycle transitions carried by RoleChangedEvent.
type RoleChangeKind string

const (
	RoleChangeCreated RoleChangeKind = "created"
	RoleChangeUpdated RoleChangeKind = "updated"
	RoleChangeDeleted RoleChangeKind = "deleted"
)

// RoleChangedEvent represents the payload for admin.role.changed messages.
type RoleChangedEvent struct {
	EventID   string
	RoleID    string
	RoleName  string
	Change    RoleChangeKind
	Languages []string
	ChangedAt time.Time
}

// RoleAssignmentChangedEvent represents the payload for admin.role.assignment messages.
type RoleAssignmentChangedEvent struct {
	EventID   string
	UserID    string
	RoleID    string
	RoleName  string
	Assigned  bool
	ChangedAt time.Time
}

// UserCreatedEvent represents the payload for admin.user.created messages.
type UserCreatedEvent struct {
	EventID   string
	UserID    string
	Email     string
	Username  string
	Roles     []string
	CreatedAt time.Time
}

// UserDeletedEvent represents the payload for admin.user.deleted messages.
type UserDeletedEvent struct {
	EventID   string
	UserID    string
	DeletedAt time.Time
}
