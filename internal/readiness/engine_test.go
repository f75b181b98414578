package readiness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestDefaultWeightsSumToOne(t *testing.T) {
	w := DefaultWeights()
	sum := w.HRVTrend + w.RestingHRTrend + w.SleepDuration + w.SleepQuality + w.Soreness + w.Stress
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestRedistributeWeights_AllPresentKeepsDefaults(t *testing.T) {
	present := map[string]bool{}
	for _, name := range factorOrder {
		present[name] = true
	}

	effective := redistributeWeights(DefaultWeights(), present)

	assert.InDelta(t, 0.25, effective[FactorHRVTrend], 1e-9)
	assert.InDelta(t, 0.10, effective[FactorStress], 1e-9)
}

func TestRedistributeWeights_SubsetSumsToOne(t *testing.T) {
	tests := []struct {
		name    string
		present []string
	}{
		{"single factor", []string{FactorSleepDuration}},
		{"two factors", []string{FactorHRVTrend, FactorStress}},
		{"all but trends", []string{FactorSleepDuration, FactorSleepQuality, FactorSoreness, FactorStress}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			present := map[string]bool{}
			for _, name := range tt.present {
				present[name] = true
			}

			effective := redistributeWeights(DefaultWeights(), present)

			sum := 0.0
			for _, name := range factorOrder {
				if present[name] {
					sum += effective[name]
				} else {
					assert.Equal(t, 0.0, effective[name], "absent factor %s must carry zero weight", name)
				}
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		})
	}
}

func TestRedistributeWeights_NonePresent(t *testing.T) {
	effective := redistributeWeights(DefaultWeights(), map[string]bool{})
	for _, name := range factorOrder {
		assert.Equal(t, 0.0, effective[name])
	}
}

func TestRedistributeWeights_ZeroWeightSubset(t *testing.T) {
	weights := Weights{SleepDuration: 0} // everything zero
	effective := redistributeWeights(weights, map[string]bool{FactorSleepDuration: true})
	for _, name := range factorOrder {
		assert.Equal(t, 0.0, effective[name])
	}
}

func TestComputeReadiness_EndToEndExample(t *testing.T) {
	health := HealthMetrics{
		HRVMs:              floatPtr(65),
		RestingHRBPM:       floatPtr(55),
		SleepDurationHours: floatPtr(7.5),
	}
	checkin := &UserCheckin{
		Soreness:     intPtr(2),
		Stress:       intPtr(2),
		SleepQuality: intPtr(4),
	}
	baselines := Baselines{
		HRVMean:           floatPtr(60),
		RestingHRMean:     floatPtr(58),
		HRVDataDays:       14,
		RestingHRDataDays: 14,
	}

	result := ComputeReadiness(health, checkin, baselines, DefaultWeights())

	require.NotNil(t, result.Score)
	assert.Equal(t, 74, *result.Score)
	assert.Equal(t, 6, result.FactorsPresent)
	assert.Equal(t, 6, result.FactorsTotal)
	require.Len(t, result.Factors, 6)

	assert.InDelta(t, 0.6389, result.Factors[0].Normalized, 1e-3)
	assert.InDelta(t, 0.6818, result.Factors[1].Normalized, 1e-3)
	assert.InDelta(t, 0.875, result.Factors[2].Normalized, 1e-9)
	assert.InDelta(t, 0.75, result.Factors[3].Normalized, 1e-9)
	assert.InDelta(t, 0.75, result.Factors[4].Normalized, 1e-9)
	assert.InDelta(t, 0.75, result.Factors[5].Normalized, 1e-9)

	// All factors present, so effective weights equal the defaults.
	for _, fs := range result.Factors {
		assert.True(t, fs.Present)
		assert.InDelta(t, fs.Weight, fs.EffectiveWeight, 1e-9)
	}
}

func TestComputeReadiness_FixedFactorOrder(t *testing.T) {
	result := ComputeReadiness(HealthMetrics{}, nil, Baselines{}, DefaultWeights())

	require.Len(t, result.Factors, 6)
	assert.Equal(t, FactorHRVTrend, result.Factors[0].Name)
	assert.Equal(t, FactorRestingHRTrend, result.Factors[1].Name)
	assert.Equal(t, FactorSleepDuration, result.Factors[2].Name)
	assert.Equal(t, FactorSleepQuality, result.Factors[3].Name)
	assert.Equal(t, FactorSoreness, result.Factors[4].Name)
	assert.Equal(t, FactorStress, result.Factors[5].Name)
}

func TestComputeReadiness_AllAbsentYieldsNilScore(t *testing.T) {
	result := ComputeReadiness(HealthMetrics{}, nil, Baselines{}, DefaultWeights())

	assert.Nil(t, result.Score)
	assert.Equal(t, 0, result.FactorsPresent)
	assert.Equal(t, 6, result.FactorsTotal)
	for _, fs := range result.Factors {
		assert.False(t, fs.Present)
		assert.Equal(t, 0.0, fs.EffectiveWeight)
		assert.Equal(t, 0.0, fs.Normalized)
	}
}

func TestComputeReadiness_MinBaselineDaysGate(t *testing.T) {
	health := HealthMetrics{HRVMs: floatPtr(65)}
	baselines := Baselines{HRVMean: floatPtr(60), HRVDataDays: 3}

	result := ComputeReadiness(health, nil, baselines, DefaultWeights())

	assert.Nil(t, result.Score)
	assert.False(t, result.Factors[0].Present, "3 baseline days is below the 7-day minimum")
}

func TestComputeReadiness_SevenBaselineDaysIsEnough(t *testing.T) {
	health := HealthMetrics{HRVMs: floatPtr(65)}
	baselines := Baselines{HRVMean: floatPtr(60), HRVDataDays: 7}

	result := ComputeReadiness(health, nil, baselines, DefaultWeights())

	require.NotNil(t, result.Score)
	assert.Equal(t, 1, result.FactorsPresent)
	assert.True(t, result.Factors[0].Present)
	// Sole present factor takes all the weight.
	assert.InDelta(t, 1.0, result.Factors[0].EffectiveWeight, 1e-9)
	assert.Equal(t, 64, *result.Score)
}

func TestComputeReadiness_NonFiniteReadingsAreAbsent(t *testing.T) {
	health := HealthMetrics{
		HRVMs:              floatPtr(math.NaN()),
		RestingHRBPM:       floatPtr(math.Inf(1)),
		SleepDurationHours: floatPtr(7),
	}
	baselines := Baselines{
		HRVMean:           floatPtr(60),
		RestingHRMean:     floatPtr(58),
		HRVDataDays:       14,
		RestingHRDataDays: 14,
	}

	result := ComputeReadiness(health, nil, baselines, DefaultWeights())

	require.NotNil(t, result.Score)
	assert.Equal(t, 1, result.FactorsPresent)
	assert.False(t, result.Factors[0].Present)
	assert.False(t, result.Factors[1].Present)
	assert.True(t, result.Factors[2].Present)
}

func TestComputeReadiness_PartialCheckin(t *testing.T) {
	checkin := &UserCheckin{Stress: intPtr(1)}

	result := ComputeReadiness(HealthMetrics{}, checkin, Baselines{}, DefaultWeights())

	require.NotNil(t, result.Score)
	assert.Equal(t, 1, result.FactorsPresent)
	assert.Equal(t, 100, *result.Score)
}

func TestComputeReadiness_ScoreBounds(t *testing.T) {
	tests := []struct {
		name    string
		health  HealthMetrics
		checkin *UserCheckin
		want    int
	}{
		{
			name:    "worst case clamps to zero",
			health:  HealthMetrics{SleepDurationHours: floatPtr(1)},
			checkin: &UserCheckin{Soreness: intPtr(5), Stress: intPtr(5), SleepQuality: intPtr(1)},
			want:    0,
		},
		{
			name:    "best case hits one hundred",
			health:  HealthMetrics{SleepDurationHours: floatPtr(9)},
			checkin: &UserCheckin{Soreness: intPtr(1), Stress: intPtr(1), SleepQuality: intPtr(5)},
			want:    100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeReadiness(tt.health, tt.checkin, Baselines{}, DefaultWeights())
			require.NotNil(t, result.Score)
			assert.Equal(t, tt.want, *result.Score)
			assert.GreaterOrEqual(t, *result.Score, 0)
			assert.LessOrEqual(t, *result.Score, 100)
		})
	}
}

func TestComputeReadiness_CustomWeights(t *testing.T) {
	weights := Weights{
		HRVTrend:       0.5,
		RestingHRTrend: 0.1,
		SleepDuration:  0.1,
		SleepQuality:   0.1,
		Soreness:       0.1,
		Stress:         0.1,
	}
	checkin := &UserCheckin{Stress: intPtr(3), SleepQuality: intPtr(3)}

	result := ComputeReadiness(HealthMetrics{}, checkin, Baselines{}, weights)

	require.NotNil(t, result.Score)
	// Stress and sleep quality split the weight evenly here.
	assert.InDelta(t, 0.5, result.Factors[3].EffectiveWeight, 1e-9)
	assert.InDelta(t, 0.5, result.Factors[5].EffectiveWeight, 1e-9)
	assert.Equal(t, 50, *result.Score)
}
