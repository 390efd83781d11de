package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/peerrent/auth-service/internal/api/middleware"
	"github.com/peerrent/auth-service/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware. Its
// absence means the route was wired without Auth.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims").SetInternal(domain.ErrInvalidToken)
	}
	return identity, nil
}
