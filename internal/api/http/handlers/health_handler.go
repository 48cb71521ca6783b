package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/persistence"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	remote      *persistence.RemoteManager
	redis       *persistence.Redis
	cache       *persistence.LocalCache
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, remote *persistence.RemoteManager, redis *persistence.Redis, cache *persistence.LocalCache) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, remote: remote, redis: redis, cache: cache}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness. The remote store and redis are degraded
// dependencies, not required ones: the service stays ready on the local
// cache alone.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}

	if err := h.remote.Ping(ctx); err != nil {
		depStatus["remote_store"] = err.Error()
	} else {
		depStatus["remote_store"] = "ok"
	}

	if err := h.redis.Ping(ctx); err != nil {
		depStatus["redis"] = err.Error()
	} else {
		depStatus["redis"] = "ok"
	}

	if err := h.cache.Ping(ctx); err != nil {
		depStatus["local_cache"] = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "local cache unavailable",
				"details": depStatus,
			},
		})
	}
	depStatus["local_cache"] = "ok"

	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": depStatus,
	})
}
