package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilsson-quant/tsforecast/transform"
)

func TestPipelineForecasterInverseTransformsNaiveForecast(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 2, 3, 4, 5})
	pipeline := transform.NewPipeline(transform.NewStandardScaler())
	inner := NewNaive()
	m, err := NewPipelineForecaster(pipeline, inner)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(1)
	require.NoError(t, err)
	require.Len(t, f.Point[0], 1)
	assert.InDelta(t, 5.0, f.Point[0][0], 1e-6)
}

func TestPipelineForecasterRejectsNilArguments(t *testing.T) {
	pipeline := transform.NewPipeline(transform.NewStandardScaler())
	_, err := NewPipelineForecaster(pipeline, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewPipelineForecaster(nil, NewNaive())
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPipelineForecasterPredictBeforeFit(t *testing.T) {
	pipeline := transform.NewPipeline(transform.NewStandardScaler())
	m, err := NewPipelineForecaster(pipeline, NewNaive())
	require.NoError(t, err)

	_, err = m.Predict(1)
	require.ErrorIs(t, err, ErrNotFitted)
}

func TestPipelineForecasterConfidenceIntervalsBracketPoint(t *testing.T) {
	s := mkUnivariate(t, []float64{1, 2, 3, 4, 5, 4, 3, 2})
	pipeline := transform.NewPipeline(transform.NewStandardScaler())
	inner := NewNaive()
	m, err := NewPipelineForecaster(pipeline, inner)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.PredictWithConfidence(2, 0.8)
	require.NoError(t, err)
	for i := range f.Point[0] {
		assert.LessOrEqual(t, f.Lower[0][i], f.Point[0][i])
		assert.GreaterOrEqual(t, f.Upper[0][i], f.Point[0][i])
	}
}

func TestPipelineForecasterName(t *testing.T) {
	pipeline := transform.NewPipeline(transform.NewStandardScaler())
	m, err := NewPipelineForecaster(pipeline, NewNaive())
	require.NoError(t, err)
	assert.Equal(t, "Pipeline(Naive)", m.Name())
}
