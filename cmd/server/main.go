package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jaybpaid/DFS-APP-sub002/internal/api/handlers"
	"github.com/jaybpaid/DFS-APP-sub002/internal/config"
	"github.com/jaybpaid/DFS-APP-sub002/internal/websocket"
	"github.com/jaybpaid/DFS-APP-sub002/pkg/cache"
	"github.com/jaybpaid/DFS-APP-sub002/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	logger.WithService("lineup-engine").WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting lineup engine")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Redis is optional; without it the engine just skips result caching.
	var redisClient *redis.Client
	var resultCache *cache.ResultCache
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithService("lineup-engine").Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opt)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.WithService("lineup-engine").WithError(err).Warn("Redis unavailable, caching disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
			resultCache = cache.NewResultCache(redisClient, structuredLogger)
		}
	}

	wsHub := websocket.NewHub(structuredLogger)
	go wsHub.Run()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	optimizationHandler := handlers.NewOptimizationHandler(resultCache, wsHub, cfg, structuredLogger)
	simulationHandler := handlers.NewSimulationHandler(resultCache, cfg, structuredLogger)
	healthHandler := handlers.NewHealthHandler(redisClient, wsHub, structuredLogger)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/optimize", optimizationHandler.OptimizeLineups)
		apiV1.POST("/optimize/validate", optimizationHandler.ValidateOptimizationRequest)
		apiV1.GET("/optimize/cache-status", optimizationHandler.GetCacheStatus)

		apiV1.POST("/simulate", simulationHandler.SimulateOutcomes)
	}

	// WebSocket endpoint for progress updates
	router.GET("/ws/progress/:slate_id", wsHub.HandleWebSocket)

	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.GET("/metrics", healthHandler.GetMetrics)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.WithService("lineup-engine").WithField("port", cfg.Port).Info("Lineup engine started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService("lineup-engine").Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService("lineup-engine").Info("Shutting down lineup engine...")

	// In-flight requests get 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithService("lineup-engine").Fatalf("Lineup engine forced to shutdown: %v", err)
	}

	logger.WithService("lineup-engine").Info("Lineup engine exited")
}
