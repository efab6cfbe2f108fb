package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkTimes(n int, step time.Duration) []time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t := make([]time.Time, n)
	for i := range t {
		t[i] = base.Add(time.Duration(i) * step)
	}
	return t
}

func TestNewUnivariate(t *testing.T) {
	tm := mkTimes(5, time.Hour)
	s, err := NewUnivariate(tm, []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 1, s.NumDim())
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, s.Univariate())
}

func TestNewLengthMismatch(t *testing.T) {
	tm := mkTimes(5, time.Hour)
	_, err := NewUnivariate(tm, []float64{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestNewNonMonotonic(t *testing.T) {
	tm := mkTimes(3, time.Hour)
	tm[2] = tm[0]
	_, err := NewUnivariate(tm, []float64{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonMonotonic)
}

func TestSliceCopiesRange(t *testing.T) {
	tm := mkTimes(5, time.Hour)
	s, err := NewUnivariate(tm, []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	sub, err := s.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, sub.Univariate())
	assert.Equal(t, tm[1:3], sub.Times())

	// mutating the sub-view must not affect the parent
	sub.y[0][0] = 99
	assert.Equal(t, 2.0, s.Univariate()[1])
}

func TestNewFromRows(t *testing.T) {
	tm := mkTimes(3, time.Hour)
	s, err := NewFromRows(tm, [][]float64{{1, 10}, {2, 20}, {3, 30}})
	require.NoError(t, err)
	assert.Equal(t, 2, s.NumDim())
	d0, _ := s.Dim(0)
	d1, _ := s.Dim(1)
	assert.Equal(t, []float64{1, 2, 3}, d0)
	assert.Equal(t, []float64{10, 20, 30}, d1)
}

func TestWithRegressorLengthMismatch(t *testing.T) {
	tm := mkTimes(5, time.Hour)
	_, err := NewUnivariate(tm, []float64{1, 2, 3, 4, 5}, WithRegressor("x", []float64{1, 2}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegressorMismatch)
}
