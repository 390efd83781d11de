package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/peerrent/auth-service/internal/core/domain"
)

type stubValidator struct {
	token    string
	identity domain.Identity
}

func (s stubValidator) Validate(token string) (domain.Identity, error) {
	if token != s.token {
		return domain.Identity{}, domain.ErrInvalidToken
	}
	return s.identity, nil
}

var alice = domain.Identity{AccountID: "acc-1", Identifier: "alice@example.com", Role: domain.RoleUser}

func runAuth(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(stubValidator{token: "good", identity: alice})(func(c echo.Context) error {
		called = true
		id, ok := IdentityFrom(c)
		if !ok || id != alice {
			t.Fatalf("identity not set: %+v", id)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")

	rec, called := runAuth(t, req)
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_CookieToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "good"})

	rec, called := runAuth(t, req)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected cookie auth to pass, got %d", rec.Code)
	}
}

func TestAuthMiddleware_HeaderWinsOverCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale")
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "good"})

	rec, called := runAuth(t, req)
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 from header token, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Token abc"},
		{"empty bearer", "Bearer "},
		{"invalid token", "Bearer not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec, called := runAuth(t, req)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestExtractToken_CarriesDomainError(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := ExtractToken(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || !errors.Is(he.Internal, domain.ErrInvalidToken) {
		t.Fatalf("expected HTTPError wrapping ErrInvalidToken, got %v", err)
	}
}
