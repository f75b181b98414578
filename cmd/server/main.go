package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/trainpulse/trainpulse-ai-go/internal/api"
	"github.com/trainpulse/trainpulse-ai-go/internal/cache"
	"github.com/trainpulse/trainpulse-ai-go/internal/config"
	"github.com/trainpulse/trainpulse-ai-go/internal/database"
	"github.com/trainpulse/trainpulse-ai-go/internal/handlers"
	"github.com/trainpulse/trainpulse-ai-go/internal/logging"
	"github.com/trainpulse/trainpulse-ai-go/internal/middleware"
	"github.com/trainpulse/trainpulse-ai-go/internal/services"
	"github.com/trainpulse/trainpulse-ai-go/internal/telemetry"
)

func main() {
	// Load .env if present; real deployments set env vars directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)

	// Ship logs to the OTLP collector when telemetry is configured
	shutdownLogs, err := logging.AttachOTLP(logger, cfg.Telemetry)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize OTLP logging")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownLogs(ctx); err != nil {
			logger.WithError(err).Warn("OTLP log shutdown failed")
		}
	}()

	// Initialize tracing
	shutdownTelemetry, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize telemetry")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.WithError(err).Warn("Telemetry shutdown failed")
		}
	}()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis
	redisClient, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Wire the readiness pipeline
	baselineCache := cache.NewRedisBaselineCache(redisClient.Client, cfg.Readiness.CacheTTL(), logger)
	readinessService := services.NewReadinessService(db.Pool, baselineCache, cfg, logger)
	readinessHandler := handlers.NewReadinessHandler(readinessService, logger)
	authMiddleware := middleware.NewAuthMiddleware(cfg.Security.JWTSecret)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))

	api.SetupRoutes(router, db, redisClient, readinessHandler, authMiddleware)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
