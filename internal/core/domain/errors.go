package domain

import "errors"

// Validation errors.
var (
	ErrInvalidPin        = errors.New("secret PIN must be exactly 4 digits")
	ErrInvalidFormat     = errors.New("login key must be exactly 8 digits")
	ErrInvalidIdentifier = errors.New("email is required")
)

// Lookup errors.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAlreadyExists   = errors.New("account already exists")
)

// Login state errors.
var (
	ErrCodeExpiredOrMissing = errors.New("login code has expired or was never requested")
	ErrCodeMismatch         = errors.New("invalid email code")
	ErrPinMismatch          = errors.New("invalid secret PIN")
)

// Access errors.
var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrForbidden    = errors.New("access forbidden")
	ErrRateLimited  = errors.New("too many attempts, try again later")
)
