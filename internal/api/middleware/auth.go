package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/peerrent/auth-service/internal/core/domain"
	"github.com/peerrent/auth-service/internal/core/ports"
)

const (
	// IdentityKey is the echo.Context key holding the caller's domain.Identity.
	IdentityKey = "identity"
	// TokenCookie is the cookie set at login.
	TokenCookie = "token"
)

// Auth validates the session token and injects the identity into context.
// The token is read from the Authorization header first, then from the
// token cookie.
func Auth(validator ports.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := ExtractToken(c)
			if err != nil {
				return err
			}

			identity, err := validator.Validate(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token").SetInternal(domain.ErrInvalidToken)
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// ExtractToken returns the bearer token or the token cookie value.
func ExtractToken(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header").SetInternal(domain.ErrInvalidToken)
		}
		return parts[1], nil
	}

	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication token").SetInternal(domain.ErrInvalidToken)
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(domain.Identity)
	return id, ok && id.AccountID != ""
}
