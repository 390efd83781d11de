package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/peerrent/auth-service/internal/api/handler"
	"github.com/peerrent/auth-service/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status and stable error code.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<code>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorBody) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorBody{
			Error: fmt.Sprintf("%v", he.Message),
			Code:  domain.ErrorCode(he.Internal),
		}
	}

	if status, msg, ok := domainStatus(err); ok {
		return status, handler.ErrorBody{Error: msg, Code: domain.ErrorCode(err)}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorBody{Error: "internal server error"}
}

// domainStatus maps known domain errors to deterministic HTTP codes. The three
// code/PIN failures share 401 but keep distinct messages.
func domainStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidPin):
		return http.StatusBadRequest, "secret PIN must be exactly 4 digits", true
	case errors.Is(err, domain.ErrInvalidFormat):
		return http.StatusBadRequest, "login key must be exactly 8 digits", true
	case errors.Is(err, domain.ErrInvalidIdentifier):
		return http.StatusBadRequest, "email is required", true
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "account not found", true
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "account already exists", true
	case errors.Is(err, domain.ErrCodeExpiredOrMissing):
		return http.StatusUnauthorized, "login code expired or missing, request a new one", true
	case errors.Is(err, domain.ErrCodeMismatch):
		return http.StatusUnauthorized, "invalid login code", true
	case errors.Is(err, domain.ErrPinMismatch):
		return http.StatusUnauthorized, "invalid secret PIN", true
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid or expired token", true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden", true
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "too many attempts, try again later", true
	}
	return 0, "", false
}
