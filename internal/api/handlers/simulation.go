package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jaybpaid/DFS-APP-sub002/internal/config"
	"github.com/jaybpaid/DFS-APP-sub002/internal/simulator"
	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
	"github.com/jaybpaid/DFS-APP-sub002/pkg/cache"
)

// SimulationHandler handles Monte Carlo simulation endpoints
type SimulationHandler struct {
	cache  *cache.ResultCache
	config *config.Config
	logger *logrus.Logger
}

// NewSimulationHandler creates a new simulation handler. The cache is
// optional; a nil cache disables result reuse.
func NewSimulationHandler(cache *cache.ResultCache, cfg *config.Config, logger *logrus.Logger) *SimulationHandler {
	return &SimulationHandler{
		cache:  cache,
		config: cfg,
		logger: logger,
	}
}

// SimulateOutcomes handles simulation requests
func (h *SimulationHandler) SimulateOutcomes(c *gin.Context) {
	var req types.SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid simulation request",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	if req.NumSimulations > h.config.MaxSimulations {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Requested simulation count exceeds service limit",
			Code:  "LIMIT_EXCEEDED",
			Details: map[string]string{
				"num_simulations": fmt.Sprintf("%d", req.NumSimulations),
				"max_simulations": fmt.Sprintf("%d", h.config.MaxSimulations),
			},
		})
		return
	}

	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	if req.EntryFee <= 0 {
		req.EntryFee = h.config.DefaultEntryFee
	}
	if req.PayoutMultiplier <= 0 {
		req.PayoutMultiplier = h.config.DefaultPayoutMult
	}

	cacheKey := ""
	if h.cache != nil {
		key, err := cache.RequestKey(req)
		if err == nil {
			cacheKey = key
			if cached, err := h.cache.GetSimulationResponse(c.Request.Context(), cacheKey); err == nil && cached != nil {
				h.logger.WithField("cache_key", cacheKey).Info("Returning cached simulation result")
				c.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	startTime := time.Now()
	resp, err := simulator.Simulate(req)
	if err != nil {
		h.logger.WithError(err).Error("Simulation failed")
		c.JSON(http.StatusUnprocessableEntity, types.SimulationResponse{
			Success:        false,
			PlayerOutcomes: []types.PlayerOutcome{},
			LineupResults:  []types.LineupResult{},
			Message:        err.Error(),
		})
		return
	}

	if h.cache != nil && cacheKey != "" {
		ttl := time.Duration(h.config.CacheTTLHours) * time.Hour
		if err := h.cache.SetSimulationResponse(c.Request.Context(), cacheKey, resp, ttl); err != nil {
			h.logger.WithError(err).Warn("Failed to cache simulation result")
		}
	}

	h.logger.WithFields(logrus.Fields{
		"slate_id":        req.SlateID,
		"num_simulations": resp.SimulationStats.NumSimulations,
		"num_lineups":     resp.SimulationStats.NumLineups,
		"execution_time":  time.Since(startTime),
	}).Info("Simulation completed successfully")

	c.JSON(http.StatusOK, resp)
}
