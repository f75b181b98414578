package readiness

import "math"

// ComputeReadiness combines one day's health metrics, an optional check-in
// and the user's baselines into a 0-100 readiness score with a per-factor
// breakdown. Absent or invalid inputs mark the matching factor not present
// and its weight is redistributed across the remaining factors; the function
// never fails. A nil Score means no factor had usable data.
func ComputeReadiness(health HealthMetrics, checkin *UserCheckin, baselines Baselines, weights Weights) Result {
	present := make(map[string]bool, FactorCount)
	normalized := make(map[string]float64, FactorCount)

	// Trend factors need a current reading, a baseline mean and enough
	// baseline history behind that mean.
	if isUsable(health.HRVMs) && baselines.HRVMean != nil && baselines.HRVDataDays >= MinBaselineDays {
		present[FactorHRVTrend] = true
		normalized[FactorHRVTrend] = normalizeHRVTrend(*health.HRVMs, *baselines.HRVMean)
	}
	if isUsable(health.RestingHRBPM) && baselines.RestingHRMean != nil && baselines.RestingHRDataDays >= MinBaselineDays {
		present[FactorRestingHRTrend] = true
		normalized[FactorRestingHRTrend] = normalizeRestingHRTrend(*health.RestingHRBPM, *baselines.RestingHRMean)
	}
	if isUsable(health.SleepDurationHours) {
		present[FactorSleepDuration] = true
		normalized[FactorSleepDuration] = normalizeSleepDuration(*health.SleepDurationHours)
	}
	if checkin != nil {
		if checkin.SleepQuality != nil {
			present[FactorSleepQuality] = true
			normalized[FactorSleepQuality] = normalizeCheckinScale(*checkin.SleepQuality)
		}
		if checkin.Soreness != nil {
			present[FactorSoreness] = true
			normalized[FactorSoreness] = normalizeCheckinInverted(*checkin.Soreness)
		}
		if checkin.Stress != nil {
			present[FactorStress] = true
			normalized[FactorStress] = normalizeCheckinInverted(*checkin.Stress)
		}
	}

	effective := redistributeWeights(weights, present)

	factors := make([]FactorScore, 0, FactorCount)
	presentCount := 0
	raw := 0.0
	for _, name := range factorOrder {
		fs := FactorScore{
			Name:            name,
			Normalized:      normalized[name],
			Weight:          weights.byName(name),
			EffectiveWeight: effective[name],
			Present:         present[name],
		}
		if fs.Present {
			presentCount++
		}
		raw += fs.Normalized * fs.EffectiveWeight
		factors = append(factors, fs)
	}

	result := Result{
		Factors:        factors,
		FactorsPresent: presentCount,
		FactorsTotal:   FactorCount,
	}
	if presentCount == 0 {
		return result
	}

	score := clampInt(int(math.Round(raw*100)), 0, 100)
	result.Score = &score
	return result
}

// redistributeWeights spreads the configured weights proportionally across
// the present factors so the present subset sums to 1.0. Absent factors get
// 0; when nothing is present (or the present factors carry zero configured
// weight) every effective weight is 0.
func redistributeWeights(weights Weights, present map[string]bool) map[string]float64 {
	effective := make(map[string]float64, FactorCount)

	totalPresent := 0.0
	for _, name := range factorOrder {
		if present[name] {
			totalPresent += weights.byName(name)
		}
	}
	if totalPresent <= 0 {
		for _, name := range factorOrder {
			effective[name] = 0
		}
		return effective
	}

	for _, name := range factorOrder {
		if present[name] {
			effective[name] = weights.byName(name) / totalPresent
		} else {
			effective[name] = 0
		}
	}
	return effective
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
