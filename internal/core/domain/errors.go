package domain

import "errors"

// Authentication and registration.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrRoleNotConfigured  = errors.New("role not configured")
)

// Session tokens.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrUnauthenticated       = errors.New("unauthenticated")
)

// Resources and access.
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrUserNotFound = errors.New("user not found")
	ErrRoleNotFound = errors.New("role not found")
	ErrForbidden    = errors.New("access forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
