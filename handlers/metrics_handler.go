package handlers

import (
	"time"

	"github.com/fenilmodi00/counsel-backend/database"
	"github.com/fenilmodi00/counsel-backend/services"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/gofiber/fiber/v2"
)

type MetricsHandler struct {
	Registry *shared.MetricsRegistry
	Cache    *services.CacheService
	Content  *services.CachedContentService
	Upstream *services.UpstreamClient
}

func NewMetricsHandler(registry *shared.MetricsRegistry, cache *services.CacheService, content *services.CachedContentService, upstream *services.UpstreamClient) *MetricsHandler {
	return &MetricsHandler{Registry: registry, Cache: cache, Content: content, Upstream: upstream}
}

func (h *MetricsHandler) Health(c *fiber.Ctx) error {
	status := fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	}
	if database.DB != nil {
		if err := database.HealthCheck(); err != nil {
			status["database"] = "unavailable"
			status["status"] = "degraded"
		} else {
			status["database"] = "ok"
		}
	}
	if h.Upstream != nil && h.Upstream.IsCircuitOpen() {
		status["upstream"] = "circuit_open"
		status["status"] = "degraded"
	}
	return c.JSON(status)
}

func (h *MetricsHandler) GetMetrics(c *fiber.Ctx) error {
	data := fiber.Map{
		"services": h.Registry.Snapshots(),
	}
	if h.Cache != nil {
		data["cache"] = h.Cache.GetCacheStats()
	}
	if database.DB != nil {
		stats := database.GetConnectionStats()
		data["database"] = fiber.Map{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
		}
	}
	return respondData(c, data)
}

func (h *MetricsHandler) ClearCache(c *fiber.Ctx) error {
	if h.Content != nil {
		h.Content.InvalidateAll()
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Content cache cleared",
	})
}
