package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainpulse/trainpulse-ai-go/internal/database"
	"github.com/trainpulse/trainpulse-ai-go/internal/handlers"
	"github.com/trainpulse/trainpulse-ai-go/internal/middleware"
)

func setupTestRedisClient(t *testing.T) *database.RedisClient {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return &database.RedisClient{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
}

func setupTestRouter(t *testing.T, redisClient *database.RedisClient) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	handler := handlers.NewReadinessHandler(nil, logger)
	auth := middleware.NewAuthMiddleware("test-secret-key")

	router := gin.New()
	SetupRoutes(router, nil, redisClient, handler, auth)
	return router
}

func TestSetupRoutes_RouteRegistration(t *testing.T) {
	router := setupTestRouter(t, setupTestRedisClient(t))

	routes := router.Routes()
	require.Greater(t, len(routes), 0)

	registered := make(map[string]string, len(routes))
	for _, route := range routes {
		registered[route.Method+" "+route.Path] = route.Handler
	}

	assert.Contains(t, registered, "GET /health")
	assert.Contains(t, registered, "POST /api/v1/metrics/daily")
	assert.Contains(t, registered, "POST /api/v1/checkins")
	assert.Contains(t, registered, "GET /api/v1/readiness")
	assert.Contains(t, registered, "GET /api/v1/readiness/history")
}

func TestSetupRoutes_APIRequiresAuth(t *testing.T) {
	router := setupTestRouter(t, setupTestRedisClient(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/readiness", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthCheck_DegradedWithoutDatabase(t *testing.T) {
	router := setupTestRouter(t, setupTestRedisClient(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "error", resp.Services.Database)
	assert.Equal(t, "ok", resp.Services.Redis)
	assert.NotEmpty(t, resp.Uptime)
}

func TestHealthCheck_RedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	redisClient := &database.RedisClient{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
	mr.Close()

	router := setupTestRouter(t, redisClient)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Services.Redis)
}

func TestHealthResponse_JSONFields(t *testing.T) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    "5s",
		Services: Services{
			Database: "ok",
			Redis:    "ok",
		},
		System: SystemStats{
			CPUPercent:    12.5,
			MemoryPercent: 40.0,
			MemoryUsedMB:  2048,
		},
	}

	jsonData, err := json.Marshal(response)
	require.NoError(t, err)

	jsonStr := string(jsonData)
	assert.Contains(t, jsonStr, "status")
	assert.Contains(t, jsonStr, "services")
	assert.Contains(t, jsonStr, "cpu_percent")
	assert.Contains(t, jsonStr, "memory_percent")
	assert.Contains(t, jsonStr, "memory_used_mb")
}

func TestCollectSystemStats(t *testing.T) {
	stats := collectSystemStats()

	assert.GreaterOrEqual(t, stats.CPUPercent, 0.0)
	assert.GreaterOrEqual(t, stats.MemoryPercent, 0.0)
}
