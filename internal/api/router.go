package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/peerrent/auth-service/docs"
	"github.com/peerrent/auth-service/internal/api/handler"
	"github.com/peerrent/auth-service/internal/api/middleware"
	"github.com/peerrent/auth-service/internal/core/domain"
	"github.com/peerrent/auth-service/internal/core/ports"
)

// RouterConfig carries the collaborators and switches the router needs.
type RouterConfig struct {
	AuthService ports.AuthService
	Tokens      ports.TokenValidator
	// Limiter is optional; nil disables rate limiting.
	Limiter ports.AttemptLimiter
	Health  *handler.HealthHandler
	Log     zerolog.Logger

	SecureCookies       bool
	TokenTTL            time.Duration
	UniformCodeResponse bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// HTTP metrics get their own registry so that several routers can coexist
	// in one process; /metrics serves it together with the default registry.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(cfg.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "peerrent_auth",
		Subsystem:  "http",
		Registerer: reg,
	}))

	// --- Dependencies ---
	opts := []handler.AuthHandlerOption{
		handler.WithCookie(handler.CookieConfig{Secure: cfg.SecureCookies, TTL: cfg.TokenTTL}),
		handler.WithUniformCodeResponse(cfg.UniformCodeResponse),
		handler.WithHandlerLogger(cfg.Log),
	}
	if cfg.Limiter != nil {
		opts = append(opts, handler.WithAccountLimiter(cfg.Limiter))
	}
	authHandler := handler.NewAuthHandler(cfg.AuthService, opts...)
	authMiddleware := middleware.Auth(cfg.Tokens)

	limit := func(scope string) []echo.MiddlewareFunc {
		if cfg.Limiter == nil {
			return nil
		}
		return []echo.MiddlewareFunc{middleware.RateLimit(cfg.Limiter, scope, cfg.Log)}
	}

	// --- Auth routes ---
	users := e.Group("/api/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login/request-code", authHandler.RequestCode, limit("request_code")...)
	users.POST("/login/verify-otp", authHandler.Verify, limit("verify")...)
	users.GET("/logout", authHandler.Logout)
	users.POST("/logout", authHandler.Logout)
	users.GET("/me", authHandler.Me, authMiddleware)

	// --- Admin routes ---
	admin := e.Group("/admin", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/accounts/:email", authHandler.AdminLookup)

	// --- Health probes (no auth required) ---
	health := cfg.Health
	if health == nil {
		health = handler.NewHealthHandler(cfg.Log)
	}
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
