package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/peerrent/auth-service/internal/api/metrics"
	"github.com/peerrent/auth-service/internal/core/domain"
	"github.com/peerrent/auth-service/internal/core/ports"
)

// RateLimit rejects requests from a client IP once it exceeds the limiter's
// budget for scope. Limiter failures let the request through.
func RateLimit(limiter ports.AttemptLimiter, scope string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, err := limiter.Allow(c.Request().Context(), scope, "ip:"+c.RealIP())
			if err != nil {
				log.Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable")
				return next(c)
			}
			if !ok {
				metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts, try again later").SetInternal(domain.ErrRateLimited)
			}
			return next(c)
		}
	}
}
