// Package validate implements rolling-origin backtesting and accuracy-driven
// auto-selection over the model.Forecaster family.
package validate

import (
	"fmt"
	"math"

	"github.com/nilsson-quant/tsforecast/metrics"
	"github.com/nilsson-quant/tsforecast/model"
	"github.com/nilsson-quant/tsforecast/series"
)

// WindowType selects how the training window grows (or doesn't) between
// folds.
type WindowType int

const (
	// Expanding holds train-start fixed at 0; every fold's training window
	// grows to include the previous fold's test window.
	Expanding WindowType = iota
	// Sliding shifts train-start forward by SkipLength (plus Embargo)
	// between folds, keeping the window size roughly constant.
	Sliding
)

// CVConfig configures a rolling backtest.
type CVConfig struct {
	Horizon     int
	MaxFolds    int
	MinTrain    int
	Gap         int
	Embargo     int
	Window      WindowType
	SkipLength  int // defaults to Horizon when 0
	ClipHorizon bool
}

func (c *CVConfig) validate() error {
	if c.Horizon < 1 {
		return fmt.Errorf("horizon %d must be >= 1: %w", c.Horizon, ErrInvalidArgument)
	}
	if c.MaxFolds < 1 {
		return fmt.Errorf("max_folds %d must be >= 1: %w", c.MaxFolds, ErrInvalidArgument)
	}
	if c.MinTrain < 1 {
		return fmt.Errorf("min_train %d must be >= 1: %w", c.MinTrain, ErrInvalidArgument)
	}
	if c.Gap < 0 {
		return fmt.Errorf("gap %d must be >= 0: %w", c.Gap, ErrInvalidArgument)
	}
	if c.Embargo < 0 {
		return fmt.Errorf("embargo %d must be >= 0: %w", c.Embargo, ErrInvalidArgument)
	}
	if c.SkipLength < 0 {
		return fmt.Errorf("skip_length %d must be >= 0: %w", c.SkipLength, ErrInvalidArgument)
	}
	return nil
}

// Fold is one rolling-origin train/test split and its outcome.
type Fold struct {
	Index      int
	TrainStart int
	TrainEnd   int // inclusive
	TestStart  int
	TestEnd    int // inclusive
	Clipped    bool

	Metrics         map[string]float64
	BaselineMetrics map[string]float64
	Err             error
}

// AggregateStat summarizes one metric across successful folds.
type AggregateStat struct {
	Mean, StdDev, Min, Max float64
	N                      int
}

// BacktestResult is the full rolling backtest outcome.
type BacktestResult struct {
	Folds     []Fold
	Aggregate map[string]AggregateStat
}

// ForecasterFactory builds a fresh, unfitted forecaster for a single fold.
type ForecasterFactory func() (model.Forecaster, error)

// computeMetrics evaluates the scalar and optional accuracy metrics for one
// predicted/actual pair.
func computeMetrics(predicted, actual []float64) (map[string]float64, error) {
	out := make(map[string]float64, 8)
	mae, err := metrics.MAE(predicted, actual)
	if err != nil {
		return nil, err
	}
	out["mae"] = mae
	mse, err := metrics.MSE(predicted, actual)
	if err != nil {
		return nil, err
	}
	out["mse"] = mse
	rmse, err := metrics.RMSE(predicted, actual)
	if err != nil {
		return nil, err
	}
	out["rmse"] = rmse
	bias, err := metrics.Bias(predicted, actual)
	if err != nil {
		return nil, err
	}
	out["bias"] = bias
	if v, ok, err := metrics.MAPE(predicted, actual); err == nil && ok {
		out["mape"] = v
	}
	if v, ok, err := metrics.SMAPE(predicted, actual); err == nil && ok {
		out["smape"] = v
	}
	if v, ok, err := metrics.R2(predicted, actual); err == nil && ok {
		out["r2"] = v
	}
	return out, nil
}

// RollingBacktest runs rolling-origin cross-validation of factory's
// forecaster against ts. When baseline is non-nil, each fold also fits a
// baseline forecaster and records baseline-relative metrics (MASE, RMAE).
func RollingBacktest(ts *series.Series, cfg *CVConfig, factory ForecasterFactory, baseline ForecasterFactory) (*BacktestResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cv config must not be nil: %w", ErrInvalidArgument)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, fmt.Errorf("forecaster factory must not be nil: %w", ErrInvalidArgument)
	}

	y := ts.Univariate()
	n := len(y)
	if n < cfg.MinTrain+cfg.Gap+1 {
		return nil, fmt.Errorf("series has %d points, needs at least %d for one fold: %w", n, cfg.MinTrain+cfg.Gap+1, ErrInsufficientData)
	}

	skip := cfg.SkipLength
	if skip == 0 {
		skip = cfg.Horizon
	}

	var folds []Fold
	for i := 1; i <= cfg.MaxFolds; i++ {
		trainStart := 0
		trainEnd := cfg.MinTrain + (i-1)*skip - 1
		if cfg.Window == Sliding {
			trainStart = (i - 1) * (skip + cfg.Embargo)
			trainEnd = trainStart + cfg.MinTrain - 1
		}
		if trainEnd >= n || trainStart >= trainEnd {
			break
		}
		testStart := trainEnd + cfg.Gap + 1
		if testStart >= n {
			break
		}
		testEnd := testStart + cfg.Horizon - 1
		clipped := false
		if testEnd > n-1 {
			if !cfg.ClipHorizon {
				break
			}
			testEnd = n - 1
			clipped = true
		}

		fold := Fold{Index: i, TrainStart: trainStart, TrainEnd: trainEnd, TestStart: testStart, TestEnd: testEnd, Clipped: clipped}
		folds = append(folds, runFold(fold, ts, y, factory, baseline))
	}

	if len(folds) == 0 {
		return nil, fmt.Errorf("no fold fit within series of length %d under the supplied config: %w", n, ErrInsufficientData)
	}

	return &BacktestResult{Folds: folds, Aggregate: aggregateFolds(folds)}, nil
}

func runFold(fold Fold, ts *series.Series, y []float64, factory, baseline ForecasterFactory) Fold {
	trainSeries, err := ts.Slice(fold.TrainStart, fold.TrainEnd+1)
	if err != nil {
		fold.Err = err
		return fold
	}
	forecaster, err := factory()
	if err != nil {
		fold.Err = err
		return fold
	}
	if err := forecaster.Fit(trainSeries); err != nil {
		fold.Err = err
		return fold
	}
	h := fold.TestEnd - fold.TestStart + 1
	forecast, err := forecaster.Predict(h)
	if err != nil {
		fold.Err = err
		return fold
	}
	actual := y[fold.TestStart : fold.TestEnd+1]
	metricsMap, err := computeMetrics(forecast.Point[0], actual)
	if err != nil {
		fold.Err = err
		return fold
	}
	fold.Metrics = metricsMap

	if baseline == nil {
		return fold
	}
	baselineForecaster, err := baseline()
	if err != nil {
		return fold
	}
	if err := baselineForecaster.Fit(trainSeries); err != nil {
		return fold
	}
	baselineForecast, err := baselineForecaster.Predict(h)
	if err != nil {
		return fold
	}
	baselineMetrics, err := computeMetrics(baselineForecast.Point[0], actual)
	if err != nil {
		return fold
	}
	fold.BaselineMetrics = baselineMetrics
	if mase, ok, err := metrics.MASE(forecast.Point[0], actual, baselineForecast.Point[0]); err == nil && ok {
		fold.Metrics["mase"] = mase
	}
	if rmae, err := metrics.RMAE(forecast.Point[0], actual, baselineForecast.Point[0]); err == nil {
		fold.Metrics["rmae"] = rmae
	}
	return fold
}

func aggregateFolds(folds []Fold) map[string]AggregateStat {
	values := make(map[string][]float64)
	for _, f := range folds {
		if f.Err != nil {
			continue
		}
		for k, v := range f.Metrics {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			values[k] = append(values[k], v)
		}
	}
	out := make(map[string]AggregateStat, len(values))
	for k, vs := range values {
		out[k] = statsOf(vs)
	}
	return out
}

func statsOf(vs []float64) AggregateStat {
	n := len(vs)
	if n == 0 {
		return AggregateStat{}
	}
	var sum float64
	min, max := vs[0], vs[0]
	for _, v := range vs {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / float64(n)
	var sumSq float64
	for _, v := range vs {
		d := v - mean
		sumSq += d * d
	}
	variance := sumSq / float64(n)
	return AggregateStat{Mean: mean, StdDev: math.Sqrt(variance), Min: min, Max: max, N: n}
}
