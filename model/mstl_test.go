package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMSTLDecomposesAndForecasts(t *testing.T) {
	y := seasonalSample()
	s := mkUnivariate(t, y)
	m, err := NewMSTL([]int{4})
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(4)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 4)
}

func TestMSTLFallsBackOnShortSeries(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 2, 3})
	m, err := NewMSTL([]int{12})
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(2)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 2)
}

func TestMSTLRejectsEmptyPeriods(t *testing.T) {
	_, err := NewMSTL(nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAutoMSTLPicksBestOrdering(t *testing.T) {
	y := seasonalSample()
	s := mkUnivariate(t, y)
	m := NewAutoMSTL([]int{4})
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(4)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 4)
}
