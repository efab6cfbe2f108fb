package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func thetaSample(n int) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = 5 + 0.7*float64(i)
	}
	return y
}

func TestThetaForecastsNearTrend(t *testing.T) {
	y := thetaSample(20)
	s := mkUnivariate(t, y)
	m := NewDefaultTheta()
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(3)
	require.NoError(t, err)
	assert.Greater(t, f.Point[0][2], f.Point[0][0])
}

func TestThetaRejectsBadParam(t *testing.T) {
	_, err := NewTheta(1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOptimizedThetaFitsWithoutError(t *testing.T) {
	y := thetaSample(20)
	s := mkUnivariate(t, y)
	m := NewOptimizedTheta()
	require.NoError(t, m.Fit(s))
	assert.GreaterOrEqual(t, m.Theta(), 1.1)
	assert.LessOrEqual(t, m.Theta(), 3.0)
}

func TestDynamicThetaUsesTrailingWindow(t *testing.T) {
	y := thetaSample(30)
	s := mkUnivariate(t, y)
	m, err := NewDynamicTheta(2.0, 10)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(2)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 2)
}

func TestDynamicOptimizedThetaFits(t *testing.T) {
	y := thetaSample(30)
	s := mkUnivariate(t, y)
	m, err := NewDynamicOptimizedTheta(10)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(2)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 2)
}

func TestAutoThetaSelectsCandidate(t *testing.T) {
	y := thetaSample(30)
	s := mkUnivariate(t, y)
	m := NewAutoTheta(10)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(2)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 2)
	assert.NotEmpty(t, m.SelectedModel())
}
