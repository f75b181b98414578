package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/trainpulse/trainpulse-ai-go/internal/database"
	"github.com/trainpulse/trainpulse-ai-go/internal/handlers"
	"github.com/trainpulse/trainpulse-ai-go/internal/middleware"
)

var startTime = time.Now()

type HealthResponse struct {
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Version   string      `json:"version"`
	Uptime    string      `json:"uptime"`
	Services  Services    `json:"services"`
	System    SystemStats `json:"system"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// SystemStats reports host-level utilization alongside service health so a
// degraded score pipeline can be told apart from a starved box.
type SystemStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  uint64  `json:"memory_used_mb"`
}

func SetupRoutes(router *gin.Engine, db *database.PostgresDB, redis *database.RedisClient, readinessHandler *handlers.ReadinessHandler, auth *middleware.AuthMiddleware) {
	// Health check endpoint
	router.GET("/health", healthCheck(db, redis))

	// API v1 routes, all behind auth
	v1 := router.Group("/api/v1")
	v1.Use(auth.RequireAuth())
	{
		metrics := v1.Group("/metrics")
		{
			metrics.POST("/daily", readinessHandler.RecordDailyMetrics)
		}

		checkins := v1.Group("/checkins")
		{
			checkins.POST("", readinessHandler.RecordCheckin)
		}

		readiness := v1.Group("/readiness")
		{
			readiness.GET("", readinessHandler.GetReadiness)
			readiness.GET("/history", readinessHandler.GetReadinessHistory)
		}
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Uptime:    time.Since(startTime).String(),
			Services: Services{
				Database: "ok",
				Redis:    "ok",
			},
			System: collectSystemStats(),
		}

		// Check database health
		if db == nil || db.HealthCheck(c.Request.Context()) != nil {
			response.Services.Database = "error"
			response.Status = "degraded"
		}

		// Check Redis health
		if redis == nil || redis.HealthCheck(c.Request.Context()) != nil {
			response.Services.Redis = "error"
			response.Status = "degraded"
		}

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}

func collectSystemStats() SystemStats {
	var stats SystemStats

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}

	if memInfo, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = memInfo.UsedPercent
		stats.MemoryUsedMB = memInfo.Used / (1024 * 1024)
	}

	return stats
}
