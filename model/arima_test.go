package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arimaSample(n int) []float64 {
	y := make([]float64, n)
	level := 10.0
	for i := range y {
		level += 0.5
		noise := 0.0
		if i%2 == 0 {
			noise = 0.3
		} else {
			noise = -0.3
		}
		y[i] = level + noise
	}
	return y
}

func TestARIMAFitPredictBasic(t *testing.T) {
	y := arimaSample(40)
	s := mkUnivariate(t, y)

	m, err := NewARIMA(1, 1, 1, 0, 0, 0, 0, true)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(5)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 5)
}

func TestARIMARejectsNegativeOrders(t *testing.T) {
	_, err := NewARIMA(-1, 0, 0, 0, 0, 0, 0, true)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestARIMARejectsSeasonalWithoutPeriod(t *testing.T) {
	_, err := NewARIMA(1, 0, 0, 1, 0, 0, 0, true)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestARIMAInsufficientData(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 2, 3, 4, 5})
	m, err := NewARIMA(2, 1, 2, 0, 0, 0, 0, true)
	require.NoError(t, err)
	err = m.Fit(s)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestARIMAReportsInformationCriteria(t *testing.T) {
	y := arimaSample(40)
	s := mkUnivariate(t, y)
	m, err := NewARIMA(1, 1, 0, 0, 0, 0, 0, true)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	_, ok := m.AIC()
	assert.True(t, ok)
	_, ok = m.BIC()
	assert.True(t, ok)
}

func TestAutoARIMASelectsAModel(t *testing.T) {
	y := arimaSample(40)
	s := mkUnivariate(t, y)
	m := NewAutoARIMA(2, 1, 2)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(3)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 3)
	assert.NotEmpty(t, m.SelectedModel())
}
