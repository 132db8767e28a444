package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
	"github.com/jaybpaid/DFS-APP-sub002/internal/websocket"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	redis     *redis.Client
	wsHub     *websocket.Hub
	logger    *logrus.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler. Redis is optional; the
// engine itself is stateless and stays healthy without it.
func NewHealthHandler(redis *redis.Client, wsHub *websocket.Hub, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		redis:     redis,
		wsHub:     wsHub,
		logger:    logger,
		startTime: time.Now(),
	}
}

// GetHealth returns the basic health status
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := types.HealthStatus{
		Status:    "ok",
		Service:   "lineup-engine",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			response.Status = "degraded"
			response.Checks["redis"] = "failed: " + err.Error()
		} else {
			response.Checks["redis"] = "ok"
		}
	} else {
		response.Checks["redis"] = "not_configured"
	}

	statusCode := http.StatusOK
	if response.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}

	c.JSON(statusCode, response)
}

// GetReady returns the readiness status. Optimization and simulation run
// in-memory, so the service is ready as soon as it is serving.
func (h *HealthHandler) GetReady(c *gin.Context) {
	response := types.HealthStatus{
		Status:    "ready",
		Service:   "lineup-engine",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			// Cache failure degrades performance but not readiness
			response.Checks["redis"] = "failed: " + err.Error()
		} else {
			response.Checks["redis"] = "ok"
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetMetrics returns service metrics
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	metrics := map[string]interface{}{
		"service":   "lineup-engine",
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).Seconds(),
	}

	if h.wsHub != nil {
		metrics["websocket"] = map[string]interface{}{
			"active_connections": h.wsHub.GetConnectionCount(),
		}
	}

	if h.redis != nil {
		if dbSize, err := h.redis.DBSize(c.Request.Context()).Result(); err == nil {
			metrics["cache"] = map[string]interface{}{
				"total_keys": dbSize,
			}
		}

		if optimizationKeys, err := h.redis.Keys(c.Request.Context(), "optimization:*").Result(); err == nil {
			metrics["optimization_cache"] = map[string]interface{}{
				"cached_results": len(optimizationKeys),
			}
		}

		if simulationKeys, err := h.redis.Keys(c.Request.Context(), "simulation:*").Result(); err == nil {
			metrics["simulation_cache"] = map[string]interface{}{
				"cached_results": len(simulationKeys),
			}
		}
	}

	c.JSON(http.StatusOK, metrics)
}
