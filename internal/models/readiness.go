package models

import (
	"time"

	"github.com/trainpulse/trainpulse-ai-go/internal/readiness"
)

// DailyHealthMetric is the day-keyed record of device-derived readings for a
// user. Nullable columns map to nil pointers.
type DailyHealthMetric struct {
	ID                 string    `json:"id" db:"id"`
	UserID             string    `json:"user_id" db:"user_id"`
	MetricDate         time.Time `json:"metric_date" db:"metric_date"`
	HRVMs              *float64  `json:"hrv_ms" db:"hrv_ms"`
	RestingHRBPM       *float64  `json:"resting_hr_bpm" db:"resting_hr_bpm"`
	SleepDurationHours *float64  `json:"sleep_duration_hours" db:"sleep_duration_hours"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// DailyCheckin is the day-keyed record of a user's subjective self-report.
type DailyCheckin struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	CheckinDate  time.Time `json:"checkin_date" db:"checkin_date"`
	Soreness     *int      `json:"soreness" db:"soreness"`
	Stress       *int      `json:"stress" db:"stress"`
	SleepQuality *int      `json:"sleep_quality" db:"sleep_quality"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ReadinessScore is the stored outcome of a readiness computation, persisted
// verbatim: the (possibly absent) score, all six factor entries and the
// presence counts.
type ReadinessScore struct {
	ID             string                  `json:"id" db:"id"`
	UserID         string                  `json:"user_id" db:"user_id"`
	ScoreDate      time.Time               `json:"score_date" db:"score_date"`
	Score          *int                    `json:"score" db:"score"`
	Factors        []readiness.FactorScore `json:"factors" db:"factors"`
	FactorsPresent int                     `json:"factors_present" db:"factors_present"`
	FactorsTotal   int                     `json:"factors_total" db:"factors_total"`
	CreatedAt      time.Time               `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at" db:"updated_at"`
}

// HealthMetricsRequest is the API payload for upserting one day's device
// readings. Every reading is optional.
type HealthMetricsRequest struct {
	Date               string   `json:"date" binding:"required,datetime=2006-01-02"`
	HRVMs              *float64 `json:"hrv_ms" binding:"omitempty,gte=0"`
	RestingHRBPM       *float64 `json:"resting_hr_bpm" binding:"omitempty,gt=0"`
	SleepDurationHours *float64 `json:"sleep_duration_hours" binding:"omitempty,gte=0,lte=24"`
}

// CheckinRequest is the API payload for upserting one day's check-in. Each
// field is optional but must be on the 1-5 scale when supplied; the scoring
// engine itself trusts this validation.
type CheckinRequest struct {
	Date         string `json:"date" binding:"required,datetime=2006-01-02"`
	Soreness     *int   `json:"soreness" binding:"omitempty,min=1,max=5"`
	Stress       *int   `json:"stress" binding:"omitempty,min=1,max=5"`
	SleepQuality *int   `json:"sleep_quality" binding:"omitempty,min=1,max=5"`
}

// ReadinessResponse is the API shape of a single day's readiness outcome.
type ReadinessResponse struct {
	UserID         string                  `json:"user_id"`
	Date           string                  `json:"date"`
	Score          *int                    `json:"score"`
	Factors        []readiness.FactorScore `json:"factors"`
	FactorsPresent int                     `json:"factors_present"`
	FactorsTotal   int                     `json:"factors_total"`
	ComputedAt     time.Time               `json:"computed_at"`
}

// ReadinessHistoryResponse lists stored scores for the trailing N days.
type ReadinessHistoryResponse struct {
	Scores []ReadinessScore `json:"scores"`
	Count  int              `json:"count"`
	Days   int              `json:"days"`
}
