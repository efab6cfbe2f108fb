package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestETSSimpleAdditiveFlat(t *testing.T) {
	s := mkUnivariate(t, []float64{10, 11, 10, 12, 11, 13, 12})
	m, err := NewETS(ETSErrorAdditive, ETSTrendNone, ETSSeasonNone, 0)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(3)
	require.NoError(t, err)
	assert.Equal(t, f.Point[0][0], f.Point[0][1])
}

func TestETSTrendedGrows(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	m, err := NewETS(ETSErrorAdditive, ETSTrendAdditive, ETSSeasonNone, 0)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(2)
	require.NoError(t, err)
	assert.Greater(t, f.Point[0][1], f.Point[0][0])
}

func TestETSSeasonalRequiresPeriod(t *testing.T) {
	_, err := NewETS(ETSErrorAdditive, ETSTrendNone, ETSSeasonAdditive, 1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestETSReportsInformationCriteria(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	m, err := NewETS(ETSErrorAdditive, ETSTrendAdditive, ETSSeasonNone, 0)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	aic, ok := m.AIC()
	require.True(t, ok)
	assert.False(t, math.IsNaN(aic))

	bic, ok := m.BIC()
	require.True(t, ok)
	assert.GreaterOrEqual(t, bic, aic-1e-6)

	k, ok := m.ParameterCount()
	require.True(t, ok)
	assert.Greater(t, k, 0)
}

func TestAutoETSSelectsAModel(t *testing.T) {
	y := seasonalSample()
	s := mkUnivariate(t, y)
	m := NewAutoETS(4)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(4)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 4)
	assert.NotEmpty(t, m.SelectedModel())
}

func TestAutoETSNonSeasonalFallback(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 2, 3, 4, 5, 6})
	m := NewAutoETS(0)
	require.NoError(t, m.Fit(s))
	f, err := m.Predict(1)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 1)
}
