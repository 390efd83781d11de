package handler

import (
	"context"
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestHealthHandler_Liveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := NewHealthHandler(zerolog.Nop()).Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := DependencyCheck{Name: "mongodb", Check: func(context.Context) error { return nil }}
	down := DependencyCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }}

	tests := []struct {
		name   string
		checks []DependencyCheck
		status int
		want   string
	}{
		{"no dependencies", nil, http.StatusOK, "ok"},
		{"all healthy", []DependencyCheck{ok}, http.StatusOK, "ok"},
		{"one down", []DependencyCheck{ok, down}, http.StatusServiceUnavailable, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

			if err := NewHealthHandler(zerolog.Nop(), tt.checks...).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}

			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tt.want || len(resp.Dependencies) != len(tt.checks) {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestHealthHandler_ReadinessHidesFailureCause(t *testing.T) {
	down := DependencyCheck{Name: "mongodb", Check: func(context.Context) error {
		return errors.New("dial tcp 10.0.0.7:27017: connection refused")
	}}

	var logs bytes.Buffer
	h := NewHealthHandler(zerolog.New(&logs), down)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.7") || strings.Contains(rec.Body.String(), "refused") {
		t.Fatalf("response leaks the failure cause: %s", rec.Body.String())
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Dependencies["mongodb"].Status != "unhealthy" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !strings.Contains(logs.String(), "connection refused") || !strings.Contains(logs.String(), `"dependency":"mongodb"`) {
		t.Fatalf("expected the cause in the log, got %q", logs.String())
	}
}
