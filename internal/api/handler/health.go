package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DependencyCheck probes one backing service for the readiness endpoint.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

func MongoCheck(client *mongo.Client) DependencyCheck {
	return DependencyCheck{Name: "mongodb", Check: func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}}
}

func RedisCheck(rdb *redis.Client) DependencyCheck {
	return DependencyCheck{Name: "redis", Check: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}

// HealthHandler serves the liveness and readiness probes. Probe failures are
// logged; callers only see which dependency is unhealthy.
type HealthHandler struct {
	checks []DependencyCheck
	log    zerolog.Logger
}

func NewHealthHandler(log zerolog.Logger, checks ...DependencyCheck) *HealthHandler {
	return &HealthHandler{checks: checks, log: log}
}

// Liveness handles GET /health. Returns 200 immediately; confirms the process
// is alive.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type dependencyStatus struct {
	Status string `json:"status"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness handles GET /health/ready. Every configured dependency must answer
// its ping before the service is declared ready.
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.checks))
	healthy := true

	for _, dep := range h.checks {
		if err := dep.Check(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", dep.Name).Msg("readiness check failed")
			deps[dep.Name] = dependencyStatus{Status: "unhealthy"}
			healthy = false
			continue
		}
		deps[dep.Name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
