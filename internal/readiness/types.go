package readiness

// Factor names in the fixed order they appear in every result.
const (
	FactorHRVTrend       = "hrv_trend"
	FactorRestingHRTrend = "resting_hr_trend"
	FactorSleepDuration  = "sleep_duration"
	FactorSleepQuality   = "sleep_quality"
	FactorSoreness       = "soreness"
	FactorStress         = "stress"
)

// FactorCount is the number of factors contributing to a readiness score.
const FactorCount = 6

// factorOrder fixes the ordering of FactorScore entries in every result.
var factorOrder = [FactorCount]string{
	FactorHRVTrend,
	FactorRestingHRTrend,
	FactorSleepDuration,
	FactorSleepQuality,
	FactorSoreness,
	FactorStress,
}

const (
	// BaselineWindowDays is how many trailing daily readings feed a baseline.
	BaselineWindowDays = 30
	// MinBaselineDays is the minimum number of valid readings a baseline needs
	// before a trend factor is allowed to contribute to the score.
	MinBaselineDays = 7
)

// HealthMetrics holds one day's device-derived readings. Every field is
// optional; a nil field means the device did not report it that day.
type HealthMetrics struct {
	HRVMs              *float64 `json:"hrv_ms"`
	RestingHRBPM       *float64 `json:"resting_hr_bpm"`
	SleepDurationHours *float64 `json:"sleep_duration_hours"`
}

// UserCheckin holds one day's subjective self-report. Each field is an
// optional integer on a 1 (low) to 5 (high) scale. Range validation is the
// caller's responsibility; out-of-range values are absorbed by clamping.
type UserCheckin struct {
	Soreness     *int `json:"soreness"`
	Stress       *int `json:"stress"`
	SleepQuality *int `json:"sleep_quality"`
}

// Baselines holds a user's personal-normal reference values together with the
// number of valid daily readings that produced each mean.
type Baselines struct {
	HRVMean           *float64 `json:"hrv_mean"`
	RestingHRMean     *float64 `json:"resting_hr_mean"`
	HRVDataDays       int      `json:"hrv_data_days"`
	RestingHRDataDays int      `json:"resting_hr_data_days"`
}

// Weights holds the default importance weight of each factor. The defaults
// sum to 1.0; callers may override them (config-driven) as long as they stay
// non-negative.
type Weights struct {
	HRVTrend       float64 `json:"hrv_trend"`
	RestingHRTrend float64 `json:"resting_hr_trend"`
	SleepDuration  float64 `json:"sleep_duration"`
	SleepQuality   float64 `json:"sleep_quality"`
	Soreness       float64 `json:"soreness"`
	Stress         float64 `json:"stress"`
}

// DefaultWeights returns the stock factor weights.
func DefaultWeights() Weights {
	return Weights{
		HRVTrend:       0.25,
		RestingHRTrend: 0.15,
		SleepDuration:  0.20,
		SleepQuality:   0.15,
		Soreness:       0.15,
		Stress:         0.10,
	}
}

// byName returns the configured weight for a factor name.
func (w Weights) byName(name string) float64 {
	switch name {
	case FactorHRVTrend:
		return w.HRVTrend
	case FactorRestingHRTrend:
		return w.RestingHRTrend
	case FactorSleepDuration:
		return w.SleepDuration
	case FactorSleepQuality:
		return w.SleepQuality
	case FactorSoreness:
		return w.Soreness
	case FactorStress:
		return w.Stress
	}
	return 0
}

// FactorScore explains one factor's contribution to a readiness score.
type FactorScore struct {
	Name            string  `json:"name"`
	Normalized      float64 `json:"normalized"`       // 0.0 to 1.0
	Weight          float64 `json:"weight"`           // configured default
	EffectiveWeight float64 `json:"effective_weight"` // after redistribution
	Present         bool    `json:"present"`
}

// Result is the computed readiness outcome for a single day. Score is nil
// when no factor had usable data.
type Result struct {
	Score          *int          `json:"score"`
	Factors        []FactorScore `json:"factors"`
	FactorsPresent int           `json:"factors_present"`
	FactorsTotal   int           `json:"factors_total"`
}
