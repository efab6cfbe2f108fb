package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMFLESFitsAndForecasts(t *testing.T) {
	y := seasonalSample()
	s := mkUnivariate(t, y)
	opt := NewDefaultMFLESOptions()
	opt.SeasonalPeriods = []int{4}
	m, err := NewMFLES(opt)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(4)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 4)
}

func TestMFLESRejectsBadOptions(t *testing.T) {
	opt := NewDefaultMFLESOptions()
	opt.MaxRounds = 0
	_, err := NewMFLES(opt)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMFLESRejectsNegativeTrendLambda(t *testing.T) {
	opt := NewDefaultMFLESOptions()
	opt.TrendLambda = -1
	_, err := NewMFLES(opt)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMFLESWithTrendLambdaDampsTrendBelowOLS(t *testing.T) {
	y := make([]float64, 40)
	for i := range y {
		y[i] = float64(i) * 2
	}
	s := mkUnivariate(t, y)

	plain, err := NewMFLES(NewDefaultMFLESOptions())
	require.NoError(t, err)
	require.NoError(t, plain.Fit(s))
	plainForecast, err := plain.Predict(1)
	require.NoError(t, err)

	damped := NewDefaultMFLESOptions()
	damped.TrendLambda = 50
	m, err := NewMFLES(damped)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))
	dampedForecast, err := m.Predict(1)
	require.NoError(t, err)

	// a heavily L1-penalized trend increment accumulates a smaller slope
	// each round, so the damped forecast undershoots the undamped one on a
	// rising series.
	assert.Less(t, dampedForecast.Point[0][0], plainForecast.Point[0][0])
}

func TestMFLESNonSeasonal(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	m, err := NewMFLES(nil)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))
	f, err := m.Predict(2)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 2)
}

func TestAutoMFLESSelectsConfiguration(t *testing.T) {
	y := seasonalSample()
	s := mkUnivariate(t, y)
	m := NewAutoMFLES([]int{4}, 4, MFLESMetricMAE)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(4)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 4)
}
