package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, tr Transformer, data []float64) {
	t.Helper()
	original := append([]float64(nil), data...)
	working := append([]float64(nil), data...)

	require.NoError(t, tr.Fit(working))
	require.NoError(t, tr.Transform(working))
	require.NoError(t, tr.InverseTransform(working))

	assert.InDeltaSlice(t, original, working, 1e-7)
}

func TestLogRoundTrip(t *testing.T) {
	roundTrip(t, NewLog(), []float64{1, 2.5, 10, 100})
}

func TestLogitRoundTrip(t *testing.T) {
	roundTrip(t, NewLogit(), []float64{0.1, 0.5, 0.9})
}

func TestMinMaxScalerRoundTrip(t *testing.T) {
	roundTrip(t, NewMinMaxScaler(), []float64{1, 2, 3, 4, 5})
}

func TestMinMaxScalerConstantDegeneratesToLower(t *testing.T) {
	s := NewMinMaxScaler()
	data := []float64{5, 5, 5}
	require.NoError(t, s.Fit(data))
	require.NoError(t, s.Transform(data))
	assert.InDeltaSlice(t, []float64{0, 0, 0}, data, 1e-9)
}

func TestStandardScalerZeroMeanUnitStd(t *testing.T) {
	s := NewStandardScaler()
	data := []float64{1, 2, 3, 4, 5}
	require.NoError(t, s.Fit(data))
	require.NoError(t, s.Transform(data))
	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))
	assert.InDelta(t, 0, mean, 1e-9)
	var ss float64
	for _, v := range data {
		ss += (v - mean) * (v - mean)
	}
	assert.InDelta(t, 1, math.Sqrt(ss/float64(len(data)-1)), 1e-9)
}

func TestStandardScalerRoundTrip(t *testing.T) {
	roundTrip(t, NewStandardScaler(), []float64{1, 2, 3, 4, 5})
}

func TestStandardScalerConstantToZero(t *testing.T) {
	s := NewStandardScaler()
	data := []float64{7, 7, 7}
	require.NoError(t, s.Fit(data))
	require.NoError(t, s.Transform(data))
	assert.InDeltaSlice(t, []float64{0, 0, 0}, data, 1e-9)
}

func TestBoxCoxExplicitLambdaRoundTrip(t *testing.T) {
	roundTrip(t, NewBoxCox(0.5), []float64{1, 2, 3, 10, 50})
}

func TestBoxCoxLogBranch(t *testing.T) {
	roundTrip(t, NewBoxCox(0), []float64{1, 2, 3, 10})
}

func TestBoxCoxRejectsNonPositive(t *testing.T) {
	b := NewBoxCoxFitted()
	err := b.Fit([]float64{1, -2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDomainViolation)
}

func TestYeoJohnsonHandlesNegatives(t *testing.T) {
	roundTrip(t, NewYeoJohnson(0.5), []float64{-5, -1, 0, 1, 5, 20})
}

func TestLinearInterpolatorFillsGaps(t *testing.T) {
	li := NewLinearInterpolator(0)
	data := []float64{1, math.NaN(), 3}
	require.NoError(t, li.Fit(data))
	require.NoError(t, li.Transform(data))
	assert.InDeltaSlice(t, []float64{1, 2, 3}, data, 1e-9)
}

func TestNonFinitePassesThroughUntouched(t *testing.T) {
	l := NewLog()
	data := []float64{1, math.NaN(), 10}
	require.NoError(t, l.Fit(data))
	require.NoError(t, l.Transform(data))
	assert.True(t, math.IsNaN(data[1]))
}

func TestPipelineFitTransformAndInverse(t *testing.T) {
	p := NewPipeline(NewStandardScaler(), NewMinMaxScaler())
	data := []float64{1, 2, 3, 4, 5}
	original := append([]float64(nil), data...)

	require.NoError(t, p.FitTransform(data))
	require.NoError(t, p.InverseTransform(data))
	assert.InDeltaSlice(t, original, data, 1e-6)
}

func TestPipelineNotFittedFails(t *testing.T) {
	p := NewPipeline(NewLog())
	err := p.Transform([]float64{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestPipelineRejectsAddAfterFit(t *testing.T) {
	p := NewPipeline(NewLog())
	require.NoError(t, p.FitTransform([]float64{1, 2, 3}))
	err := p.Add(NewLog())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyFitted)
}
