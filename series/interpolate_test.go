package series

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolateInterior(t *testing.T) {
	tm := mkTimes(5, time.Hour)
	s, err := NewUnivariate(tm, []float64{0, math.NaN(), math.NaN(), 6, 8})
	require.NoError(t, err)

	out, err := s.Interpolate(EdgeNearest, 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 2, 4, 6, 8}, out.Univariate(), 1e-9)
}

func TestInterpolateEdgesNearest(t *testing.T) {
	tm := mkTimes(5, time.Hour)
	s, err := NewUnivariate(tm, []float64{math.NaN(), math.NaN(), 4, 6, math.NaN()})
	require.NoError(t, err)

	out, err := s.Interpolate(EdgeNearest, 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{4, 4, 4, 6, 6}, out.Univariate(), 1e-9)
}

func TestInterpolateEdgesValue(t *testing.T) {
	tm := mkTimes(4, time.Hour)
	s, err := NewUnivariate(tm, []float64{math.NaN(), 4, 6, math.NaN()})
	require.NoError(t, err)

	out, err := s.Interpolate(EdgeValue, -1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-1, 4, 6, -1}, out.Univariate(), 1e-9)
}

func TestInterpolateAllNonFinite(t *testing.T) {
	tm := mkTimes(3, time.Hour)
	s, err := NewUnivariate(tm, []float64{math.NaN(), math.NaN(), math.NaN()})
	require.NoError(t, err)

	out, err := s.Interpolate(EdgeValue, 7)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{7, 7, 7}, out.Univariate(), 1e-9)
}
