package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a uniqueness constraint rejected the write.
	ErrDuplicate = errors.New("repository: duplicate")
	// ErrNoLongerActive indicates a refresh token was revoked or expired
	// between lookup and replacement, typically by a concurrent rotation.
	ErrNoLongerActive = errors.New("repository: token no longer active")
)
