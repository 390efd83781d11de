package domain

import "errors"

// ErrorCode returns the stable, client-facing name of a domain error, or ""
// when err is not one of them.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidPin):
		return "InvalidPin"
	case errors.Is(err, ErrInvalidFormat):
		return "InvalidFormat"
	case errors.Is(err, ErrInvalidIdentifier):
		return "InvalidIdentifier"
	case errors.Is(err, ErrAccountNotFound):
		return "AccountNotFound"
	case errors.Is(err, ErrAlreadyExists):
		return "AlreadyExists"
	case errors.Is(err, ErrCodeExpiredOrMissing):
		return "CodeExpiredOrMissing"
	case errors.Is(err, ErrCodeMismatch):
		return "CodeMismatch"
	case errors.Is(err, ErrPinMismatch):
		return "PinMismatch"
	case errors.Is(err, ErrInvalidToken):
		return "InvalidToken"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrRateLimited):
		return "RateLimited"
	}
	return ""
}
