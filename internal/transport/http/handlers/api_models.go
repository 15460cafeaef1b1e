package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserSummary describes a minimal view of a user returned by the API.
type UserSummary struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Roles     []string   `json:"roles,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int         `json:"expires_in"`
	User         UserSummary `json:"user"`
}

// TokenRefreshRequest represents the payload to refresh an access token. The
// expired access token travels in the Authorization header.
type TokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenRefreshResponse contains tokens issued by the refresh endpoint.
type TokenRefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// LogoutRequest carries the refresh token to revoke.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RoleTranslationPayload is a per-language display name in role payloads.
type RoleTranslationPayload struct {
	LanguageKey    string `json:"language_key" binding:"required"`
	TranslatedName string `json:"translated_name" binding:"required"`
}

// RoleCreateRequest defines the role creation payload.
type RoleCreateRequest struct {
	Name         string                   `json:"name" binding:"required"`
	Translations []RoleTranslationPayload `json:"translations"`
}

// RoleUpdateRequest defines the role update payload. The target role is
// addressed by name in the URL; Name, when present, is the new name and an
// empty value keeps the current one.
type RoleUpdateRequest struct {
	Name         string                   `json:"name"`
	Translations []RoleTranslationPayload `json:"translations"`
}

// RolePayload is the canonical role representation.
type RolePayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoleListItem carries a role with its display name for the requested language.
type RoleListItem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	TranslatedName string `json:"translated_name"`
}

// RoleAssignmentRequest targets a user and a role by name for assignment
// operations.
type RoleAssignmentRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	RoleName string `json:"role_name" binding:"required"`
}

// UserCreateRequest defines the account provisioning payload.
type UserCreateRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required,min=8"`
	Roles    []string `json:"roles"`
}

// HealthResponse reports service status.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessCheckResult captures a single dependency probe outcome.
type ReadinessCheckResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReadinessResponse aggregates dependency probe outcomes.
type ReadinessResponse struct {
	Status string                 `json:"status"`
	Checks []ReadinessCheckResult `json:"checks"`
}
