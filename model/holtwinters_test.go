package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seasonalSample() []float64 {
	base := []float64{10, 20, 15, 25}
	y := make([]float64, 0, 16)
	for cycle := 0; cycle < 4; cycle++ {
		for _, v := range base {
			y = append(y, v+float64(cycle)*2)
		}
	}
	return y
}

func TestHoltWintersAdditiveForecastPreservesSeasonPattern(t *testing.T) {
	y := seasonalSample()
	s := mkUnivariate(t, y)
	m, err := NewHoltWinters(0.3, 0.1, 0.3, 4, SeasonalAdditive)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(4)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 4)
	// third phase (index 2, value ~15 pattern) should forecast lower than second (~20 pattern)
	assert.Less(t, f.Point[0][2], f.Point[0][1])
}

func TestHoltWintersMultiplicativeFits(t *testing.T) {
	y := seasonalSample()
	s := mkUnivariate(t, y)
	m, err := NewHoltWinters(0.3, 0.1, 0.3, 4, SeasonalMultiplicative)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(4)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 4)
}

func TestHoltWintersRejectsShortPeriod(t *testing.T) {
	_, err := NewHoltWinters(0.3, 0.1, 0.3, 1, SeasonalAdditive)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestHoltWintersInsufficientData(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 2, 3, 4, 5})
	m, err := NewHoltWinters(0.3, 0.1, 0.3, 4, SeasonalAdditive)
	require.NoError(t, err)
	err = m.Fit(s)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestHoltWintersOptimizedFits(t *testing.T) {
	y := seasonalSample()
	s := mkUnivariate(t, y)
	m, err := NewHoltWintersOptimized(4, SeasonalAdditive)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(4)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 4)
}
