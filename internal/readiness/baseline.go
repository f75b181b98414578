package readiness

// ComputeBaselines derives a user's personal-normal HRV and resting heart
// rate from trailing daily series. Only the most recent BaselineWindowDays
// entries of each series are considered; callers should encode a day without
// a reading as NaN so the window stays positional. Values failing the
// validity guard are excluded from both the mean and the day count, as are
// negative HRV readings and non-positive heart rates.
func ComputeBaselines(hrvHistory, restingHRHistory []float64) Baselines {
	var b Baselines

	hrvMean, hrvDays := windowedMean(hrvHistory, func(v float64) bool {
		return isFinite(v) && v >= 0
	})
	if hrvDays > 0 {
		b.HRVMean = &hrvMean
	}
	b.HRVDataDays = hrvDays

	hrMean, hrDays := windowedMean(restingHRHistory, func(v float64) bool {
		// Zero or negative heart rate is physiologically invalid.
		return isFinite(v) && v > 0
	})
	if hrDays > 0 {
		b.RestingHRMean = &hrMean
	}
	b.RestingHRDataDays = hrDays

	return b
}

// windowedMean averages the values of the trailing window that satisfy the
// filter, returning the mean and the count of values used.
func windowedMean(series []float64, valid func(float64) bool) (float64, int) {
	start := 0
	if len(series) > BaselineWindowDays {
		start = len(series) - BaselineWindowDays
	}

	sum := 0.0
	count := 0
	for _, v := range series[start:] {
		if !valid(v) {
			continue
		}
		sum += v
		count++
	}

	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}
