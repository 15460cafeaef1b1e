package domain

import "time"

// User mirrors the persisted representation in the users table.
type User struct {
	ID                  string
	Username            string
	Email               string
	PasswordHash        string
	CreatedAt           time.Time
	LastLogin           *time.Time
	FailedLoginAttempts int
	LockedUntil         *time.Time
}

// IsLocked reports whether the account is locked out at the given instant.
func (u User) IsLocked(at time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(at)
}
