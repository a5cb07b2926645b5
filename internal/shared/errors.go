package shared

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique-name constraint violation.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactive indicates a deactivated account.
	ErrInactive = errors.New("account inactive")
	// ErrInvalidToken indicates a malformed, expired, or revoked token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnauthenticated indicates a request without a valid principal.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates an authenticated principal lacking permission.
	ErrForbidden = errors.New("forbidden")
	// ErrThrottled indicates too many attempts within the rate window.
	ErrThrottled = errors.New("too many attempts")
)
