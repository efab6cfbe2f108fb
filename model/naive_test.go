package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilsson-quant/tsforecast/series"
)

func mkTimes(n int, step time.Duration) []time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t := make([]time.Time, n)
	for i := range t {
		t[i] = base.Add(time.Duration(i) * step)
	}
	return t
}

func mkUnivariate(t *testing.T, y []float64) *series.Series {
	t.Helper()
	s, err := series.NewUnivariate(mkTimes(len(y), time.Hour), y)
	require.NoError(t, err)
	return s
}

func TestNaiveRepeatsLastValue(t *testing.T) {
	s := mkUnivariate(t, []float64{3, 1, 4, 1, 5, 9, 2, 6})
	m := NewNaive()
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(3)
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 6, 6}, f.Point[0])
}

func TestNaivePredictBeforeFit(t *testing.T) {
	m := NewNaive()
	_, err := m.Predict(1)
	require.ErrorIs(t, err, ErrNotFitted)
}

func TestNaiveFitsSingleObservation(t *testing.T) {
	s := mkUnivariate(t, []float64{1})
	m := NewNaive()
	require.NoError(t, m.Fit(s))
	_, err := m.Predict(2)
	require.NoError(t, err)
}

func TestNaiveConfidenceWidensWithHorizon(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 3, 2, 5, 4, 7, 6, 9})
	m := NewNaive()
	require.NoError(t, m.Fit(s))

	f, err := m.PredictWithConfidence(3, 0.9)
	require.NoError(t, err)
	w1 := f.Upper[0][0] - f.Lower[0][0]
	w2 := f.Upper[0][1] - f.Lower[0][1]
	w3 := f.Upper[0][2] - f.Lower[0][2]
	assert.Less(t, w1, w2)
	assert.Less(t, w2, w3)
}

func TestNaiveFittedAndResiduals(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 2, 4})
	m := NewNaive()
	require.NoError(t, m.Fit(s))
	assert.True(t, isNaN(m.FittedValues()[0]))
	assert.Equal(t, []float64{1, 2}, m.FittedValues()[1:])
	assert.Equal(t, []float64{1, 2}, m.Residuals()[1:])
}

func isNaN(f float64) bool { return f != f }
