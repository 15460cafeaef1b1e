package usecase

import "errors"

var (
	// ErrInvalidAccessToken indicates an access token that failed signature,
	// issuer, or audience checks.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrInvalidRefreshToken indicates an unknown refresh token value or one
	// that belongs to a different user than the presented access token.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrRefreshTokenExpiredOrRevoked indicates a known refresh token that is
	// no longer usable.
	ErrRefreshTokenExpiredOrRevoked = errors.New("refresh token expired or revoked")
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the two cases are indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked indicates too many consecutive failed logins.
	ErrAccountLocked = errors.New("account locked")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already taken")

	// ErrRoleExists indicates a role with the provided name already exists.
	ErrRoleExists = errors.New("role already exists")
	// ErrRoleNotFound indicates the referenced role does not exist.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleAlreadyAssigned indicates the user already holds the role.
	ErrRoleAlreadyAssigned = errors.New("role already assigned")
	// ErrRoleNotAssigned indicates the user does not hold the role.
	ErrRoleNotAssigned = errors.New("role not assigned")
	// ErrRoleCreateFailed wraps storage failures during role creation.
	ErrRoleCreateFailed = errors.New("role creation failed")
	// ErrRoleUpdateFailed wraps storage failures during role update.
	ErrRoleUpdateFailed = errors.New("role update failed")
	// ErrRoleDeleteFailed wraps storage failures during role deletion.
	ErrRoleDeleteFailed = errors.New("role deletion failed")
)
