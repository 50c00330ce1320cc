package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is anything whose connectivity can be checked, such as
// *pgxpool.Pool or caching.CacheService.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check endpoints
type HealthHandlers struct {
	db      Pinger
	cache   Pinger
	timeout time.Duration
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db, cache Pinger) *HealthHandlers {
	return &HealthHandlers{db: db, cache: cache, timeout: 2 * time.Second}
}

// ReadinessResponse reports the state of each critical dependency
type ReadinessResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// LivenessCheck determines if the application is running
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck determines if the application is ready to serve traffic
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp := ReadinessResponse{Status: "ready", Services: map[string]string{}}
	for name, dep := range map[string]Pinger{"database": h.db, "redis": h.cache} {
		if err := dep.Ping(ctx); err != nil {
			resp.Services[name] = "unhealthy"
			resp.Status = "not_ready"
			continue
		}
		resp.Services[name] = "healthy"
	}

	if resp.Status != "ready" {
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
