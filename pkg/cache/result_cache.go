package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

// ErrCacheMiss is returned when no entry exists for a key.
var ErrCacheMiss = errors.New("result not found in cache")

// ResultCache stores optimization and simulation responses keyed by a hash
// of the request that produced them. Results are deterministic for a fixed
// seed, so replaying an identical request can be served from cache.
type ResultCache struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewResultCache creates a new result cache backed by Redis
func NewResultCache(client *redis.Client, logger *logrus.Logger) *ResultCache {
	return &ResultCache{
		client: client,
		logger: logger,
	}
}

// RequestKey hashes a request payload into a stable cache key.
func RequestKey(request interface{}) (string, error) {
	data, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request for cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// SetOptimizationResponse stores an optimization response in cache
func (c *ResultCache) SetOptimizationResponse(ctx context.Context, key string, resp *types.OptimizationResponse, expiration time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal optimization response: %w", err)
	}

	fullKey := fmt.Sprintf("optimization:%s", key)
	if err := c.client.Set(ctx, fullKey, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set optimization response in cache: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":     fullKey,
		"expiration":    expiration,
		"lineups_count": len(resp.Lineups),
	}).Debug("Cached optimization response")

	return nil
}

// GetOptimizationResponse retrieves an optimization response from cache
func (c *ResultCache) GetOptimizationResponse(ctx context.Context, key string) (*types.OptimizationResponse, error) {
	fullKey := fmt.Sprintf("optimization:%s", key)
	data, err := c.client.Get(ctx, fullKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get optimization response from cache: %w", err)
	}

	var resp types.OptimizationResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal optimization response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":     fullKey,
		"lineups_count": len(resp.Lineups),
	}).Debug("Retrieved optimization response from cache")

	return &resp, nil
}

// SetSimulationResponse stores a simulation response in cache
func (c *ResultCache) SetSimulationResponse(ctx context.Context, key string, resp *types.SimulationResponse, expiration time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal simulation response: %w", err)
	}

	fullKey := fmt.Sprintf("simulation:%s", key)
	if err := c.client.Set(ctx, fullKey, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set simulation response in cache: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":  fullKey,
		"expiration": expiration,
		"iterations": resp.SimulationStats.NumSimulations,
	}).Debug("Cached simulation response")

	return nil
}

// GetSimulationResponse retrieves a simulation response from cache
func (c *ResultCache) GetSimulationResponse(ctx context.Context, key string) (*types.SimulationResponse, error) {
	fullKey := fmt.Sprintf("simulation:%s", key)
	data, err := c.client.Get(ctx, fullKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get simulation response from cache: %w", err)
	}

	var resp types.SimulationResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal simulation response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":  fullKey,
		"iterations": resp.SimulationStats.NumSimulations,
	}).Debug("Retrieved simulation response from cache")

	return &resp, nil
}

// GetStatus returns cache statistics
func (c *ResultCache) GetStatus(ctx context.Context) map[string]interface{} {
	dbSize := c.client.DBSize(ctx)

	status := map[string]interface{}{
		"service":   "result-cache",
		"timestamp": time.Now(),
		"connected": true,
	}

	if dbSize.Err() == nil {
		status["db_size"] = dbSize.Val()
	}

	optimizationKeys, err := c.client.Keys(ctx, "optimization:*").Result()
	if err == nil {
		status["optimization_keys"] = len(optimizationKeys)
	}

	simulationKeys, err := c.client.Keys(ctx, "simulation:*").Result()
	if err == nil {
		status["simulation_keys"] = len(simulationKeys)
	}

	return status
}

// Flush clears all cached optimization and simulation responses
func (c *ResultCache) Flush(ctx context.Context) error {
	for _, pattern := range []string{"optimization:*", "simulation:*"} {
		keys, err := c.client.Keys(ctx, pattern).Result()
		if err != nil {
			return fmt.Errorf("failed to list %s keys: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete %s keys: %w", pattern, err)
			}
		}
		c.logger.WithFields(logrus.Fields{
			"pattern":      pattern,
			"deleted_keys": len(keys),
		}).Info("Flushed result cache")
	}
	return nil
}
