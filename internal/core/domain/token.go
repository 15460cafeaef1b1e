package domain

import "time"

// RefreshToken represents a persisted long-lived refresh credential.
// Rows are never deleted; superseded or revoked tokens keep their row with
// the revoked flag set for audit purposes.
type RefreshToken struct {
	ID        string
	Value     string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// IsExpired reports whether the token has elapsed its validity window.
func (t RefreshToken) IsExpired(at time.Time) bool {
	return at.After(t.ExpiresAt)
}

// IsUsable reports whether the token can still be presented for rotation.
func (t RefreshToken) IsUsable(at time.Time) bool {
	return !t.Revoked && !t.IsExpired(at)
}
