package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilsson-quant/tsforecast/model"
	"github.com/nilsson-quant/tsforecast/series"
)

func mkBacktestSeries(t *testing.T, n int) *series.Series {
	t.Helper()
	times := make([]time.Time, n)
	y := make([]float64, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		times[i] = base.Add(time.Duration(i) * time.Hour)
		y[i] = float64(i) + 1
	}
	s, err := series.NewUnivariate(times, y)
	require.NoError(t, err)
	return s
}

func naiveFactory() (model.Forecaster, error) { return model.NewNaive(), nil }

func TestRollingBacktestExpandingFoldBoundariesMatchScenario(t *testing.T) {
	ts := mkBacktestSeries(t, 60)
	cfg := &CVConfig{Horizon: 6, MaxFolds: 3, MinTrain: 30, Window: Expanding}
	result, err := RollingBacktest(ts, cfg, naiveFactory, nil)
	require.NoError(t, err)
	require.Len(t, result.Folds, 3)

	expected := []Fold{
		{Index: 1, TrainStart: 0, TrainEnd: 29, TestStart: 30, TestEnd: 35},
		{Index: 2, TrainStart: 0, TrainEnd: 35, TestStart: 36, TestEnd: 41},
		{Index: 3, TrainStart: 0, TrainEnd: 41, TestStart: 42, TestEnd: 47},
	}
	for i, f := range result.Folds {
		assert.Equal(t, expected[i].TrainStart, f.TrainStart)
		assert.Equal(t, expected[i].TrainEnd, f.TrainEnd)
		assert.Equal(t, expected[i].TestStart, f.TestStart)
		assert.Equal(t, expected[i].TestEnd, f.TestEnd)
		assert.NoError(t, f.Err)
	}
}

func TestRollingBacktestSlidingShiftsTrainStart(t *testing.T) {
	ts := mkBacktestSeries(t, 60)
	cfg := &CVConfig{Horizon: 6, MaxFolds: 3, MinTrain: 30, Window: Sliding}
	result, err := RollingBacktest(ts, cfg, naiveFactory, nil)
	require.NoError(t, err)
	require.Len(t, result.Folds, 3)
	assert.Equal(t, 0, result.Folds[0].TrainStart)
	assert.Equal(t, 6, result.Folds[1].TrainStart)
	assert.Equal(t, 12, result.Folds[2].TrainStart)
}

func TestRollingBacktestClipsFinalHorizonWhenConfigured(t *testing.T) {
	ts := mkBacktestSeries(t, 40)
	cfg := &CVConfig{Horizon: 6, MaxFolds: 3, MinTrain: 30, Window: Expanding, ClipHorizon: true}
	result, err := RollingBacktest(ts, cfg, naiveFactory, nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.Folds)
	last := result.Folds[len(result.Folds)-1]
	assert.True(t, last.Clipped)
	assert.Equal(t, 39, last.TestEnd)
}

func TestRollingBacktestRejectsInsufficientData(t *testing.T) {
	ts := mkBacktestSeries(t, 10)
	cfg := &CVConfig{Horizon: 6, MaxFolds: 3, MinTrain: 30, Window: Expanding}
	_, err := RollingBacktest(ts, cfg, naiveFactory, nil)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestRollingBacktestRejectsBadConfig(t *testing.T) {
	ts := mkBacktestSeries(t, 60)
	cfg := &CVConfig{Horizon: 0, MaxFolds: 3, MinTrain: 30}
	_, err := RollingBacktest(ts, cfg, naiveFactory, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRollingBacktestWithBaselineRecordsRelativeMetrics(t *testing.T) {
	ts := mkBacktestSeries(t, 60)
	cfg := &CVConfig{Horizon: 6, MaxFolds: 2, MinTrain: 30, Window: Expanding}
	result, err := RollingBacktest(ts, cfg, naiveFactory, naiveFactory)
	require.NoError(t, err)
	for _, f := range result.Folds {
		require.NoError(t, f.Err)
		assert.NotNil(t, f.BaselineMetrics)
	}
}

func TestRollingBacktestAggregatesMeanStdDevMinMax(t *testing.T) {
	ts := mkBacktestSeries(t, 60)
	cfg := &CVConfig{Horizon: 6, MaxFolds: 3, MinTrain: 30, Window: Expanding}
	result, err := RollingBacktest(ts, cfg, naiveFactory, nil)
	require.NoError(t, err)
	mae, ok := result.Aggregate["mae"]
	require.True(t, ok)
	assert.Equal(t, 3, mae.N)
	assert.GreaterOrEqual(t, mae.Max, mae.Mean)
	assert.LessOrEqual(t, mae.Min, mae.Mean)
}

func TestRollingBacktestCapturesPerFoldFitFailure(t *testing.T) {
	ts := mkBacktestSeries(t, 60)
	cfg := &CVConfig{Horizon: 6, MaxFolds: 3, MinTrain: 30, Window: Expanding}
	failing := func() (model.Forecaster, error) {
		m, err := model.NewSMA(1000)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	result, err := RollingBacktest(ts, cfg, failing, nil)
	require.NoError(t, err)
	for _, f := range result.Folds {
		assert.Error(t, f.Err)
	}
}
