package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/trainpulse/trainpulse-ai-go/internal/models"
	"github.com/trainpulse/trainpulse-ai-go/internal/utils"
)

// ReadinessScorer is the service surface the handler needs. Tests substitute
// a stub.
type ReadinessScorer interface {
	ComputeForDate(ctx context.Context, userID string, date time.Time) (*models.ReadinessScore, error)
	RecordHealthMetrics(ctx context.Context, userID string, req models.HealthMetricsRequest) (*models.ReadinessScore, error)
	RecordCheckin(ctx context.Context, userID string, req models.CheckinRequest) (*models.ReadinessScore, error)
	GetHistory(ctx context.Context, userID string, days int) ([]models.ReadinessScore, error)
}

// ReadinessHandler handles readiness scoring endpoints.
type ReadinessHandler struct {
	service ReadinessScorer
	logger  *logrus.Logger
}

// NewReadinessHandler creates a new readiness handler.
func NewReadinessHandler(service ReadinessScorer, logger *logrus.Logger) *ReadinessHandler {
	return &ReadinessHandler{
		service: service,
		logger:  logger,
	}
}

// GetReadiness handles GET /api/v1/readiness?date=YYYY-MM-DD. Without a date
// it scores today. An absent score is not an error; it means there was not
// enough data to score the day.
func (h *ReadinessHandler) GetReadiness(c *gin.Context) {
	userID := c.GetString("user_id")

	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	record, err := h.service.ComputeForDate(c.Request.Context(), userID, date)
	if err != nil {
		h.respondError(c, err, "Failed to compute readiness")
		return
	}

	c.JSON(http.StatusOK, toReadinessResponse(record))
}

// GetReadinessHistory handles GET /api/v1/readiness/history?days=N.
func (h *ReadinessHandler) GetReadinessHistory(c *gin.Context) {
	userID := c.GetString("user_id")

	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 90 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer between 1 and 90"})
			return
		}
		days = parsed
	}

	scores, err := h.service.GetHistory(c.Request.Context(), userID, days)
	if err != nil {
		h.respondError(c, err, "Failed to fetch readiness history")
		return
	}

	c.JSON(http.StatusOK, models.ReadinessHistoryResponse{
		Scores: scores,
		Count:  len(scores),
		Days:   days,
	})
}

// RecordDailyMetrics handles POST /api/v1/metrics/daily.
func (h *ReadinessHandler) RecordDailyMetrics(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.HealthMetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	record, err := h.service.RecordHealthMetrics(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, err, "Failed to record daily metrics")
		return
	}

	c.JSON(http.StatusOK, toReadinessResponse(record))
}

// RecordCheckin handles POST /api/v1/checkins.
func (h *ReadinessHandler) RecordCheckin(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	record, err := h.service.RecordCheckin(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, err, "Failed to record checkin")
		return
	}

	c.JSON(http.StatusOK, toReadinessResponse(record))
}

func (h *ReadinessHandler) respondError(c *gin.Context, err error, msg string) {
	var verr *utils.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		return
	}

	h.logger.WithError(err).Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func toReadinessResponse(record *models.ReadinessScore) models.ReadinessResponse {
	return models.ReadinessResponse{
		UserID:         record.UserID,
		Date:           record.ScoreDate.Format("2006-01-02"),
		Score:          record.Score,
		Factors:        record.Factors,
		FactorsPresent: record.FactorsPresent,
		FactorsTotal:   record.FactorsTotal,
		ComputedAt:     record.UpdatedAt,
	}
}
