package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jaybpaid/DFS-APP-sub002/internal/config"
	"github.com/jaybpaid/DFS-APP-sub002/internal/optimizer"
	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
	"github.com/jaybpaid/DFS-APP-sub002/internal/websocket"
	"github.com/jaybpaid/DFS-APP-sub002/pkg/cache"
)

// OptimizationHandler handles lineup-generation endpoints
type OptimizationHandler struct {
	cache  *cache.ResultCache
	wsHub  *websocket.Hub
	config *config.Config
	logger *logrus.Logger
}

// NewOptimizationHandler creates a new optimization handler. The cache is
// optional; a nil cache disables result reuse.
func NewOptimizationHandler(
	cache *cache.ResultCache,
	wsHub *websocket.Hub,
	cfg *config.Config,
	logger *logrus.Logger,
) *OptimizationHandler {
	return &OptimizationHandler{
		cache:  cache,
		wsHub:  wsHub,
		config: cfg,
		logger: logger,
	}
}

// OptimizeLineups handles lineup optimization requests
func (h *OptimizationHandler) OptimizeLineups(c *gin.Context) {
	var req types.OptimizationRequest
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
			Error: "Invalid optimization request",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	if req.NumLineups > h.config.MaxLineups {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Requested lineup count exceeds service limit",
			Code:  "LIMIT_EXCEEDED",
			Details: map[string]string{
				"num_lineups": fmt.Sprintf("%d", req.NumLineups),
				"max_lineups": fmt.Sprintf("%d", h.config.MaxLineups),
			},
		})
		return
	}

	cacheKey := ""
	if h.cache != nil {
		key, err := cache.RequestKey(req)
		if err == nil {
			cacheKey = key
			if cached, err := h.cache.GetOptimizationResponse(c.Request.Context(), cacheKey); err == nil && cached != nil {
				h.logger.WithField("cache_key", cacheKey).Info("Returning cached optimization result")
				c.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	randomness := h.config.DefaultRandomness
	seed := time.Now().UnixNano()
	if req.VarianceSettings != nil {
		randomness = req.VarianceSettings.Randomness
		if req.VarianceSettings.Seed != 0 {
			seed = req.VarianceSettings.Seed
		}
	}

	progressChan := make(chan types.ProgressUpdate, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressChan {
			h.wsHub.BroadcastProgress(update)
		}
	}()

	startTime := time.Now()
	batch, err := optimizer.GenerateLineups(req.SlateID, req.Players, req.Constraints, req.Stacks, optimizer.BatchConfig{
		NumLineups:    req.NumLineups,
		RandomnessPct: randomness,
		Seed:          seed,
		MaxNodes:      h.config.SolverMaxNodes,
	}, progressChan)
	close(progressChan)
	<-done
	if err != nil {
		h.logger.WithError(err).Error("Optimization failed")
		c.JSON(http.StatusUnprocessableEntity, types.OptimizationResponse{
			Success:    false,
			Lineups:    []types.Lineup{},
			Exposures:  []types.ExposureRow{},
			StackAudit: []types.StackAuditRow{},
			Message:    err.Error(),
		})
		return
	}

	response := types.OptimizationResponse{
		Success:        len(batch.Lineups) > 0,
		Lineups:        batch.Lineups,
		Exposures:      batch.Exposures,
		StackAudit:     batch.StackAudit,
		TotalGenerated: batch.TotalGenerated,
		Message:        fmt.Sprintf("Generated %d of %d lineups", batch.TotalGenerated, req.NumLineups),
	}
	if batch.Infeasible > 0 {
		response.Message = fmt.Sprintf("Generated %d of %d lineups (%d infeasible)", batch.TotalGenerated, req.NumLineups, batch.Infeasible)
	}

	if h.cache != nil && cacheKey != "" && response.Success {
		ttl := time.Duration(h.config.CacheTTLHours) * time.Hour
		if err := h.cache.SetOptimizationResponse(c.Request.Context(), cacheKey, &response, ttl); err != nil {
			h.logger.WithError(err).Warn("Failed to cache optimization result")
		}
	}

	h.logger.WithFields(logrus.Fields{
		"slate_id":          req.SlateID,
		"lineups_generated": batch.TotalGenerated,
		"infeasible":        batch.Infeasible,
		"execution_time":    time.Since(startTime),
	}).Info("Optimization completed successfully")

	if !response.Success {
		c.JSON(http.StatusUnprocessableEntity, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetCacheStatus reports result-cache statistics
func (h *OptimizationHandler) GetCacheStatus(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusOK, gin.H{"connected": false})
		return
	}
	c.JSON(http.StatusOK, h.cache.GetStatus(c.Request.Context()))
}

// ValidateOptimizationRequest validates an optimization request without
// running it
func (h *OptimizationHandler) ValidateOptimizationRequest(c *gin.Context) {
	var req types.OptimizationRequest
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
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":       true,
		"num_players": len(req.Players),
		"num_lineups": req.NumLineups,
	})
}
