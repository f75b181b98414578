package readiness

import "math"

// isFinite reports whether a raw reading is usable. NaN and ±Inf readings are
// treated as absent everywhere in this package, never as errors.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// isUsable is the pointer form of the validity guard: a nil field is a
// missing reading.
func isUsable(v *float64) bool {
	return v != nil && isFinite(*v)
}

// clamp01 restricts a normalized value to [0, 1]. A non-finite intermediate
// result maps to 0.
func clamp01(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// normalizeHRVTrend maps today's HRV against the personal baseline. A ratio
// of 0.7x baseline scores 0 and 1.3x baseline scores 1; higher HRV relative
// to baseline means better recovery.
func normalizeHRVTrend(currentHRV, baselineHRV float64) float64 {
	if !isFinite(currentHRV) || !isFinite(baselineHRV) || baselineHRV <= 0 {
		return 0.5
	}
	return clamp01((currentHRV/baselineHRV - 0.7) / 0.6)
}

// normalizeRestingHRTrend maps today's resting heart rate against the
// personal baseline. The ratio is inverted so that a lower resting HR still
// scores higher.
func normalizeRestingHRTrend(currentHR, baselineHR float64) float64 {
	if !isFinite(currentHR) || !isFinite(baselineHR) || currentHR <= 0 {
		return 0.5
	}
	return clamp01((baselineHR/currentHR - 0.85) / 0.3)
}

// normalizeSleepDuration maps sleep hours linearly: 4h or less scores 0,
// 8h or more scores 1.
func normalizeSleepDuration(hours float64) float64 {
	if !isFinite(hours) {
		return 0.5
	}
	return clamp01((hours - 4) / 4)
}

// normalizeCheckinScale maps a 1-5 check-in value where higher is better
// (sleep quality).
func normalizeCheckinScale(value int) float64 {
	return clamp01(float64(value-1) / 4)
}

// normalizeCheckinInverted maps a 1-5 check-in value where lower is better
// (soreness, stress).
func normalizeCheckinInverted(value int) float64 {
	return clamp01(float64(5-value) / 4)
}
