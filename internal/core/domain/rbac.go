package domain

import (
	"strings"
	"time"
)

// Role defines a named grouping of privileges assignable to users.
type Role struct {
	ID   string
	Name string
}

// NormalizeRoleName canonicalizes a role name for uniqueness comparisons.
func NormalizeRoleName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RoleTranslation holds a language-specific display name for a role.
// The (RoleID, LanguageKey) pair is unique.
type RoleTranslation struct {
	ID             string
	RoleID         string
	LanguageKey    string
	TranslatedName string
}

// NormalizeLanguageKey canonicalizes a language key such as "en" or "hi".
func NormalizeLanguageKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// RoleWithTranslation is the list projection of a role joined with the
// translation for a requested language, falling back to the bare name.
type RoleWithTranslation struct {
	ID             string
	Name           string
	TranslatedName string
}

// UserRole assigns a role to a user.
type UserRole struct {
	UserID     string
	RoleID     string
	AssignedAt time.Time
}
