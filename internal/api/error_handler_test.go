package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/peerrent/auth-service/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid pin", domain.ErrInvalidPin, http.StatusBadRequest, "InvalidPin"},
		{"wrapped not found", fmt.Errorf("lookup: %w", domain.ErrAccountNotFound), http.StatusNotFound, "AccountNotFound"},
		{"code mismatch", domain.ErrCodeMismatch, http.StatusUnauthorized, "CodeMismatch"},
		{"pin mismatch", domain.ErrPinMismatch, http.StatusUnauthorized, "PinMismatch"},
		{"expired", domain.ErrCodeExpiredOrMissing, http.StatusUnauthorized, "CodeExpiredOrMissing"},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests, "RateLimited"},
		{"echo error with internal", echo.NewHTTPError(http.StatusForbidden, "forbidden").SetInternal(domain.ErrForbidden), http.StatusForbidden, "Forbidden"},
		{"plain echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, ""},
		{"unexpected", errors.New("mongo: connection reset"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body["code"] != tt.code || body["error"] == "" {
				t.Fatalf("unexpected envelope: %v", body)
			}
			if tt.status == http.StatusInternalServerError && body["error"] != "internal server error" {
				t.Fatalf("internal details leaked: %v", body)
			}
		})
	}
}

func TestHTTPErrorHandler_DistinctLoginMessages(t *testing.T) {
	seen := map[string]bool{}
	for _, err := range []error{domain.ErrCodeExpiredOrMissing, domain.ErrCodeMismatch, domain.ErrPinMismatch} {
		_, msg, ok := domainStatus(err)
		if !ok || seen[msg] {
			t.Fatalf("expected a distinct message for %v, got %q", err, msg)
		}
		seen[msg] = true
	}
}
