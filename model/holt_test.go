package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoltExtrapolatesTrend(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 2, 3, 4, 5, 6})
	m, err := NewHolt(0.8, 0.8)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(2)
	require.NoError(t, err)
	assert.Greater(t, f.Point[0][1], f.Point[0][0])
}

func TestDampedHoltDampensGrowth(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 2, 3, 4, 5, 6})
	undamped, err := NewHolt(0.8, 0.2)
	require.NoError(t, err)
	require.NoError(t, undamped.Fit(s))
	uf, err := undamped.Predict(5)
	require.NoError(t, err)

	damped, err := NewDampedHolt(0.8, 0.2, 0.8)
	require.NoError(t, err)
	require.NoError(t, damped.Fit(s))
	df, err := damped.Predict(5)
	require.NoError(t, err)

	assert.Less(t, df.Point[0][4], uf.Point[0][4])
}

func TestHoltRejectsBadParams(t *testing.T) {
	_, err := NewHolt(0, 0.5)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewDampedHolt(0.5, 0.5, 1.5)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestHoltOptimizedFitsWithoutError(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	m := NewHoltOptimized(false)
	require.NoError(t, m.Fit(s))
	f, err := m.Predict(3)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 3)
}

func TestDampedHoltOptimizedFitsWithoutError(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	m := NewHoltOptimized(true)
	require.NoError(t, m.Fit(s))
	f, err := m.Predict(3)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 3)
}
