package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/peerrent/auth-service/internal/api/metrics"
	"github.com/peerrent/auth-service/internal/api/middleware"
	"github.com/peerrent/auth-service/internal/core/domain"
	"github.com/peerrent/auth-service/internal/core/ports"
)

const (
	scopeRequestCode = "request_code"
	scopeVerify      = "verify"

	codeSentMessage = "Login code sent. It expires in 10 minutes."
)

// CookieConfig controls the session cookie set at login.
type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	authService ports.AuthService
	cookie      CookieConfig
	uniform     bool
	limiter     ports.AttemptLimiter
	log         zerolog.Logger
}

type AuthHandlerOption func(*AuthHandler)

func WithCookie(cfg CookieConfig) AuthHandlerOption {
	return func(h *AuthHandler) { h.cookie = cfg }
}

// WithUniformCodeResponse makes request-code answer unknown emails exactly
// like known ones.
func WithUniformCodeResponse(on bool) AuthHandlerOption {
	return func(h *AuthHandler) { h.uniform = on }
}

// WithAccountLimiter throttles request-code and verify per email, on top of
// any per-IP limit in front of the handler.
func WithAccountLimiter(l ports.AttemptLimiter) AuthHandlerOption {
	return func(h *AuthHandler) { h.limiter = l }
}

func WithHandlerLogger(log zerolog.Logger) AuthHandlerOption {
	return func(h *AuthHandler) { h.log = log }
}

func NewAuthHandler(authService ports.AuthService, opts ...AuthHandlerOption) *AuthHandler {
	h := &AuthHandler{
		authService: authService,
		cookie:      CookieConfig{TTL: time.Hour},
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register creates a new account.
//
// @Summary      Register an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Email and 4-digit secret PIN"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  ErrorBody
// @Failure      409   {object}  ErrorBody
// @Failure      422   {object}  ErrorBody
// @Router       /api/users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	account, err := h.authService.Register(c.Request().Context(), req.Email, req.SecretPin)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Message: "Account registered. Request a login code to sign in.",
		Account: account,
	})
}

// RequestCode emails a fresh 4-digit login code.
//
// @Summary      Request a login code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      requestCodeRequest  true  "Account email"
// @Success      200   {object}  requestCodeResponse
// @Failure      404   {object}  ErrorBody
// @Failure      422   {object}  ErrorBody
// @Failure      429   {object}  ErrorBody
// @Router       /api/users/login/request-code [post]
func (h *AuthHandler) RequestCode(c echo.Context) error {
	var req requestCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if err := h.allow(c, scopeRequestCode, req.Email); err != nil {
		return err
	}

	err := h.authService.RequestLoginCode(c.Request().Context(), req.Email)
	if err != nil && !(h.uniform && errors.Is(err, domain.ErrAccountNotFound)) {
		return err
	}

	return c.JSON(http.StatusOK, requestCodeResponse{Message: codeSentMessage, Email: req.Email})
}

// Verify checks the 8-digit combined key (PIN followed by code) and starts a
// session.
//
// @Summary      Verify the combined key and log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyRequest  true  "Email and 8-digit combined key"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  ErrorBody
// @Failure      401   {object}  ErrorBody
// @Failure      404   {object}  ErrorBody
// @Failure      429   {object}  ErrorBody
// @Router       /api/users/login/verify-otp [post]
func (h *AuthHandler) Verify(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if err := h.allow(c, scopeVerify, req.Email); err != nil {
		return err
	}

	session, err := h.authService.VerifyAndLogin(c.Request().Context(), req.Email, req.FullOtp)
	if err != nil {
		return err
	}

	c.SetCookie(h.sessionCookie(session.Token, session.ExpiresAt))
	return c.JSON(http.StatusOK, loginResponse{Token: session.Token, ExpiresAt: session.ExpiresAt})
}

// Logout clears the session cookie. Tokens are not revoked server-side.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/users/logout [get]
// @Router       /api/users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := middleware.ExtractToken(c)
	h.authService.Logout(c.Request().Context(), token)

	expired := h.sessionCookie("", time.Unix(0, 0))
	expired.MaxAge = -1
	c.SetCookie(expired)

	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out."})
}

// Me returns the identity behind the caller's token.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Identity
// @Failure      401  {object}  ErrorBody
// @Router       /api/users/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}

// AdminLookup returns the stored account for an email.
//
// @Summary      Look up an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Account email"
// @Success      200    {object}  domain.Account
// @Failure      401    {object}  ErrorBody
// @Failure      403    {object}  ErrorBody
// @Failure      404    {object}  ErrorBody
// @Router       /admin/accounts/{email} [get]
func (h *AuthHandler) AdminLookup(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	account, err := h.authService.Lookup(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

func (h *AuthHandler) allow(c echo.Context, scope, email string) error {
	if h.limiter == nil {
		return nil
	}
	ok, err := h.limiter.Allow(c.Request().Context(), scope, "email:"+email)
	if err != nil {
		h.log.Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable")
		return nil
	}
	if !ok {
		metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
		return domain.ErrRateLimited
	}
	return nil
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
