package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/trainpulse/trainpulse-ai-go/internal/config"
	"github.com/trainpulse/trainpulse-ai-go/internal/models"
	"github.com/trainpulse/trainpulse-ai-go/internal/readiness"
	"github.com/trainpulse/trainpulse-ai-go/internal/telemetry"
	"github.com/trainpulse/trainpulse-ai-go/internal/utils"
)

// PgxPool is the subset of pgxpool.Pool the readiness service uses. Tests
// substitute a pgxmock pool.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BaselineCache is the cache the service consults before recomputing a
// user's baselines. A nil cache disables caching.
type BaselineCache interface {
	Get(ctx context.Context, userID string, date time.Time) (readiness.Baselines, bool)
	Set(ctx context.Context, userID string, date time.Time, baselines readiness.Baselines)
	Invalidate(ctx context.Context, userID string)
}

// ReadinessService orchestrates daily readiness scoring: it fetches the
// trailing signal history and the day's inputs from storage, runs the pure
// scoring engine, and upserts the day-keyed result. The engine itself never
// touches the database.
type ReadinessService struct {
	db            PgxPool
	baselineCache BaselineCache
	weights       readiness.Weights
	logger        *logrus.Logger
}

// NewReadinessService creates a readiness service using the configured
// factor weights.
func NewReadinessService(db PgxPool, baselineCache BaselineCache, cfg *config.Config, logger *logrus.Logger) *ReadinessService {
	return &ReadinessService{
		db:            db,
		baselineCache: baselineCache,
		weights:       cfg.Readiness.Weights(),
		logger:        logger,
	}
}

const historyQuery = `
	SELECT hrv_ms, resting_hr_bpm
	FROM daily_health_metrics
	WHERE user_id = $1 AND metric_date < $2
	ORDER BY metric_date DESC
	LIMIT $3`

const dayMetricsQuery = `
	SELECT hrv_ms, resting_hr_bpm, sleep_duration_hours
	FROM daily_health_metrics
	WHERE user_id = $1 AND metric_date = $2`

const dayCheckinQuery = `
	SELECT soreness, stress, sleep_quality
	FROM daily_checkins
	WHERE user_id = $1 AND checkin_date = $2`

const upsertScoreQuery = `
	INSERT INTO readiness_scores (id, user_id, score_date, score, factors, factors_present, factors_total, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	ON CONFLICT (user_id, score_date)
	DO UPDATE SET score = EXCLUDED.score,
		factors = EXCLUDED.factors,
		factors_present = EXCLUDED.factors_present,
		factors_total = EXCLUDED.factors_total,
		updated_at = NOW()`

const upsertMetricsQuery = `
	INSERT INTO daily_health_metrics (id, user_id, metric_date, hrv_ms, resting_hr_bpm, sleep_duration_hours, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	ON CONFLICT (user_id, metric_date)
	DO UPDATE SET hrv_ms = EXCLUDED.hrv_ms,
		resting_hr_bpm = EXCLUDED.resting_hr_bpm,
		sleep_duration_hours = EXCLUDED.sleep_duration_hours,
		updated_at = NOW()`

const upsertCheckinQuery = `
	INSERT INTO daily_checkins (id, user_id, checkin_date, soreness, stress, sleep_quality, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	ON CONFLICT (user_id, checkin_date)
	DO UPDATE SET soreness = EXCLUDED.soreness,
		stress = EXCLUDED.stress,
		sleep_quality = EXCLUDED.sleep_quality,
		updated_at = NOW()`

const historyScoresQuery = `
	SELECT id, user_id, score_date, score, factors, factors_present, factors_total, created_at, updated_at
	FROM readiness_scores
	WHERE user_id = $1 AND score_date >= $2
	ORDER BY score_date DESC`

// ComputeForDate scores a user's readiness for the given day and persists
// the result. Missing metrics or check-in rows are not errors; they simply
// leave factors absent.
func (s *ReadinessService) ComputeForDate(ctx context.Context, userID string, date time.Time) (*models.ReadinessScore, error) {
	date = normalizeDate(date)

	ctx, span := telemetry.Tracer("readiness-service").Start(ctx, "readiness.compute_for_date")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("readiness.date", date.Format("2006-01-02")),
	)

	baselines, err := s.getBaselines(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	health, err := s.fetchDayMetrics(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	checkin, err := s.fetchDayCheckin(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	result := readiness.ComputeReadiness(health, checkin, baselines, s.weights)
	span.SetAttributes(attribute.Int("readiness.factors_present", result.FactorsPresent))

	s.logger.WithFields(logrus.Fields{
		"user_id":         userID,
		"date":            date.Format("2006-01-02"),
		"factors_present": result.FactorsPresent,
	}).Info("Computed readiness score")

	record, err := s.storeResult(ctx, userID, date, result)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// RecordHealthMetrics upserts one day's device readings, invalidates the
// user's cached baselines and recomputes the day's score.
func (s *ReadinessService) RecordHealthMetrics(ctx context.Context, userID string, req models.HealthMetricsRequest) (*models.ReadinessScore, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := validateReading("hrv_ms", req.HRVMs); err != nil {
		return nil, err
	}
	if err := validateReading("resting_hr_bpm", req.RestingHRBPM); err != nil {
		return nil, err
	}
	if err := validateReading("sleep_duration_hours", req.SleepDurationHours); err != nil {
		return nil, err
	}

	_, err = s.db.Exec(ctx, upsertMetricsQuery,
		uuid.NewString(), userID, date, req.HRVMs, req.RestingHRBPM, req.SleepDurationHours)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert daily health metrics: %w", err)
	}

	// The history behind the user's baselines changed.
	if s.baselineCache != nil {
		s.baselineCache.Invalidate(ctx, userID)
	}

	return s.ComputeForDate(ctx, userID, date)
}

// RecordCheckin upserts one day's subjective check-in and recomputes the
// day's score. Check-in values are validated here, not in the engine.
func (s *ReadinessService) RecordCheckin(ctx context.Context, userID string, req models.CheckinRequest) (*models.ReadinessScore, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := validateCheckinValue("soreness", req.Soreness); err != nil {
		return nil, err
	}
	if err := validateCheckinValue("stress", req.Stress); err != nil {
		return nil, err
	}
	if err := validateCheckinValue("sleep_quality", req.SleepQuality); err != nil {
		return nil, err
	}

	_, err = s.db.Exec(ctx, upsertCheckinQuery,
		uuid.NewString(), userID, date, req.Soreness, req.Stress, req.SleepQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert daily checkin: %w", err)
	}

	return s.ComputeForDate(ctx, userID, date)
}

// GetHistory returns the stored scores of the trailing days, newest first.
func (s *ReadinessService) GetHistory(ctx context.Context, userID string, days int) ([]models.ReadinessScore, error) {
	if days <= 0 {
		days = 7
	}
	since := normalizeDate(time.Now().UTC()).AddDate(0, 0, -days)

	rows, err := s.db.Query(ctx, historyScoresQuery, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query readiness history: %w", err)
	}
	defer rows.Close()

	scores := make([]models.ReadinessScore, 0, days)
	for rows.Next() {
		var rec models.ReadinessScore
		var factorsJSON []byte
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ScoreDate, &rec.Score, &factorsJSON,
			&rec.FactorsPresent, &rec.FactorsTotal, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan readiness score row: %w", err)
		}
		if err := json.Unmarshal(factorsJSON, &rec.Factors); err != nil {
			return nil, fmt.Errorf("failed to decode stored factors: %w", err)
		}
		scores = append(scores, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read readiness history: %w", err)
	}

	return scores, nil
}

// getBaselines returns the user's baselines for the scoring date, consulting
// the cache first. The baseline window only covers days before the scoring
// date, so today's partial data never leaks into its own reference values.
func (s *ReadinessService) getBaselines(ctx context.Context, userID string, date time.Time) (readiness.Baselines, error) {
	if s.baselineCache != nil {
		if baselines, ok := s.baselineCache.Get(ctx, userID, date); ok {
			return baselines, nil
		}
	}

	hrvHistory, hrHistory, err := s.fetchSignalHistory(ctx, userID, date)
	if err != nil {
		return readiness.Baselines{}, err
	}

	baselines := readiness.ComputeBaselines(hrvHistory, hrHistory)

	if s.baselineCache != nil {
		s.baselineCache.Set(ctx, userID, date, baselines)
	}
	return baselines, nil
}

// fetchSignalHistory loads the trailing baseline window of HRV and resting HR
// readings. Days with a NULL reading become NaN so the engine's validity
// guard filters them while the window stays positional.
func (s *ReadinessService) fetchSignalHistory(ctx context.Context, userID string, before time.Time) ([]float64, []float64, error) {
	rows, err := s.db.Query(ctx, historyQuery, userID, before, readiness.BaselineWindowDays)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query signal history: %w", err)
	}
	defer rows.Close()

	var hrvHistory, hrHistory []float64
	for rows.Next() {
		var hrv, hr *float64
		if err := rows.Scan(&hrv, &hr); err != nil {
			return nil, nil, fmt.Errorf("failed to scan signal history row: %w", err)
		}
		hrvHistory = append(hrvHistory, orNaN(hrv))
		hrHistory = append(hrHistory, orNaN(hr))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read signal history: %w", err)
	}

	return hrvHistory, hrHistory, nil
}

func (s *ReadinessService) fetchDayMetrics(ctx context.Context, userID string, date time.Time) (readiness.HealthMetrics, error) {
	var health readiness.HealthMetrics
	err := s.db.QueryRow(ctx, dayMetricsQuery, userID, date).
		Scan(&health.HRVMs, &health.RestingHRBPM, &health.SleepDurationHours)
	if errors.Is(err, pgx.ErrNoRows) {
		return readiness.HealthMetrics{}, nil
	}
	if err != nil {
		return readiness.HealthMetrics{}, fmt.Errorf("failed to fetch daily health metrics: %w", err)
	}
	return health, nil
}

func (s *ReadinessService) fetchDayCheckin(ctx context.Context, userID string, date time.Time) (*readiness.UserCheckin, error) {
	var checkin readiness.UserCheckin
	err := s.db.QueryRow(ctx, dayCheckinQuery, userID, date).
		Scan(&checkin.Soreness, &checkin.Stress, &checkin.SleepQuality)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily checkin: %w", err)
	}
	return &checkin, nil
}

func (s *ReadinessService) storeResult(ctx context.Context, userID string, date time.Time, result readiness.Result) (*models.ReadinessScore, error) {
	factorsJSON, err := json.Marshal(result.Factors)
	if err != nil {
		return nil, fmt.Errorf("failed to encode factors: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(ctx, upsertScoreQuery,
		id, userID, date, result.Score, factorsJSON, result.FactorsPresent, result.FactorsTotal)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert readiness score: %w", err)
	}

	now := time.Now().UTC()
	return &models.ReadinessScore{
		ID:             id,
		UserID:         userID,
		ScoreDate:      date,
		Score:          result.Score,
		Factors:        result.Factors,
		FactorsPresent: result.FactorsPresent,
		FactorsTotal:   result.FactorsTotal,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// validateCheckinValue enforces the 1-5 scale on supplied check-in fields.
// The scoring engine deliberately trusts this layer and does not re-check.
func validateCheckinValue(field string, value *int) error {
	if value == nil {
		return nil
	}
	if *value < 1 || *value > 5 {
		return utils.NewValidationErrorf("%s must be between 1 and 5, got %d", field, *value)
	}
	return nil
}

// validateReading rejects non-finite numeric readings at the API boundary.
// The engine would absorb them anyway, but storing NaN serves nobody.
func validateReading(field string, value *float64) error {
	if value == nil {
		return nil
	}
	if math.IsNaN(*value) || math.IsInf(*value, 0) {
		return utils.NewValidationErrorf("%s must be a finite number", field)
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, utils.NewValidationErrorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return date, nil
}

func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
