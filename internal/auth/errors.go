package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown identifier and wrong
	// password. One error value for both keeps login responses from
	// leaking which part was wrong.
	ErrInvalidCredentials = errors.New("auth: incorrect username/email or password")

	// ErrAccountInactive is distinct from ErrInvalidCredentials: the
	// account holder already knows their own status, so this is not an
	// enumeration risk.
	ErrAccountInactive = errors.New("auth: account is inactive")

	ErrMissingToken   = errors.New("auth: token missing")
	ErrInvalidToken   = errors.New("auth: invalid or expired token")
	ErrWrongTokenKind = errors.New("auth: wrong token kind")
	ErrUserMismatch   = errors.New("auth: user not found or token mismatch")

	// ErrUnauthenticated is raised by the session boundary when a route
	// requires a signed-in user and none resolved.
	ErrUnauthenticated = errors.New("auth: not authenticated")
)
