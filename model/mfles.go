package model

import (
	"fmt"
	"math"

	gmat "gonum.org/v1/gonum/mat"

	"github.com/nilsson-quant/tsforecast/metrics"
	"github.com/nilsson-quant/tsforecast/models"
	"github.com/nilsson-quant/tsforecast/series"
)

// MFLESOptions configures the boosted level/trend/seasonal decomposition.
type MFLESOptions struct {
	SeasonalPeriods []int
	MaxRounds       int
	LRTrend         float64
	LRSeason        float64
	LRLevel         float64

	// TrendLambda is the L1 penalty applied to each round's trend increment.
	// 0 (the default) fits the trend increment by plain OLS; a positive value
	// damps the trend coefficient via Lasso coordinate descent, which is
	// useful when MaxRounds is large and an undamped trend would overfit
	// short, noisy series.
	TrendLambda float64
}

func NewDefaultMFLESOptions() *MFLESOptions {
	return &MFLESOptions{
		MaxRounds: 10,
		LRTrend:   0.3,
		LRSeason:  0.3,
		LRLevel:   0.3,
	}
}

func (o *MFLESOptions) validate() error {
	if o.MaxRounds < 1 {
		return fmt.Errorf("max rounds %d must be >= 1: %w", o.MaxRounds, ErrInvalidArgument)
	}
	for _, r := range []float64{o.LRTrend, o.LRSeason, o.LRLevel} {
		if r < 0 || r > 1 {
			return fmt.Errorf("learning rate %f must be in [0,1]: %w", r, ErrInvalidArgument)
		}
	}
	if o.TrendLambda < 0 {
		return fmt.Errorf("trend lambda %f must be >= 0: %w", o.TrendLambda, ErrInvalidArgument)
	}
	for _, p := range o.SeasonalPeriods {
		if p < 2 {
			return fmt.Errorf("seasonal period %d must be >= 2: %w", p, ErrInvalidArgument)
		}
	}
	return nil
}

// MFLES is an iterative gradient-boosted decomposition: each round fits a
// linear trend increment, a seasonal increment per configured period, and a
// level correction against the current residual, each damped by its own
// learning rate, and subtracts the scaled increment before the next round.
type MFLES struct {
	Options *MFLESOptions

	accLevel float64
	accSlope float64
	accSeason map[int][]float64
	n         int
	fitted    []float64
	residuals []float64
	sigma     float64
	isFit     bool
}

func NewMFLES(opt *MFLESOptions) (*MFLES, error) {
	if opt == nil {
		opt = NewDefaultMFLESOptions()
	}
	if err := opt.validate(); err != nil {
		return nil, err
	}
	return &MFLES{Options: opt}, nil
}

func (m *MFLES) Name() string { return "MFLES" }

func (m *MFLES) minObservations() int {
	min := 4
	for _, p := range m.Options.SeasonalPeriods {
		if 2*p > min {
			min = 2 * p
		}
	}
	return min
}

func (m *MFLES) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < m.minObservations() {
		return fmt.Errorf("mfles requires at least %d observations, got %d: %w", m.minObservations(), len(y), ErrInsufficientData)
	}

	accLevel, accSlope, accSeason, fitted, residuals := mflesFit(y, m.Options)
	m.accLevel, m.accSlope, m.accSeason = accLevel, accSlope, accSeason
	m.fitted, m.residuals = fitted, residuals
	m.sigma = residualStdDev(residuals)
	m.n = len(y)
	m.isFit = true
	return nil
}

func mflesFit(y []float64, opt *MFLESOptions) (accLevel, accSlope float64, accSeason map[int][]float64, fitted, residuals []float64) {
	n := len(y)
	working := append([]float64(nil), y...)
	accSeason = make(map[int][]float64, len(opt.SeasonalPeriods))
	for _, p := range opt.SeasonalPeriods {
		accSeason[p] = make([]float64, p)
	}

	for round := 0; round < opt.MaxRounds; round++ {
		a, b := linearTrendCoef(working, opt.TrendLambda)
		for i := range working {
			working[i] -= opt.LRTrend * (a + b*float64(i))
		}
		accLevel += opt.LRTrend * a
		accSlope += opt.LRTrend * b

		for _, p := range opt.SeasonalPeriods {
			indices := seasonalIndicesAdditive(working, p)
			for i := range working {
				phase := i % p
				working[i] -= opt.LRSeason * indices[phase]
				accSeason[p][phase] += opt.LRSeason * indices[phase]
			}
		}

		levelCorrection := opt.LRLevel * mean(working)
		for i := range working {
			working[i] -= levelCorrection
		}
		accLevel += levelCorrection
	}

	fitted = make([]float64, n)
	residuals = make([]float64, n)
	for i := 0; i < n; i++ {
		pred := accLevel + accSlope*float64(i)
		for _, p := range opt.SeasonalPeriods {
			pred += accSeason[p][i%p]
		}
		fitted[i] = pred
		residuals[i] = y[i] - pred
	}
	return accLevel, accSlope, accSeason, fitted, residuals
}

// linearTrendCoef fits the per-round trend increment against the running
// index. With lambda == 0 it uses plain OLS; a positive lambda routes
// through Lasso coordinate descent instead, damping the trend coefficient
// toward zero. Both regressors are driven through the shared models.Model
// interface so the round loop doesn't care which one ran.
func linearTrendCoef(y []float64, lambda float64) (intercept, slope float64) {
	n := len(y)
	rows := make([][]float64, n)
	for i := range y {
		rows[i] = []float64{float64(i)}
	}
	design, err := gmatFromRows(rows)
	if err != nil {
		return mean(y), 0
	}
	target := gmat.NewDense(n, 1, y)

	var reg models.Model
	if lambda > 0 {
		reg, err = models.NewLassoRegression(&models.LassoOptions{
			Lambda:       lambda,
			Iterations:   models.DefaultIterations,
			Tolerance:    models.DefaultTolerance,
			FitIntercept: true,
		})
	} else {
		reg, err = models.NewOLSRegression(&models.OLSOptions{FitIntercept: true})
	}
	if err != nil {
		return mean(y), 0
	}
	if err := reg.Fit(design, target); err != nil {
		return mean(y), 0
	}
	coef := reg.Coef()
	slope = 0
	if len(coef) > 0 {
		slope = coef[0]
	}
	return reg.Intercept(), slope
}

func seasonalIndicesAdditive(y []float64, period int) []float64 {
	sums := make([]float64, period)
	counts := make([]int, period)
	for i, v := range y {
		phase := i % period
		sums[phase] += v
		counts[phase]++
	}
	indices := make([]float64, period)
	for p := range indices {
		if counts[p] > 0 {
			indices[p] = sums[p] / float64(counts[p])
		}
	}
	return indices
}

func (m *MFLES) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	point := make([]float64, h)
	for k := 0; k < h; k++ {
		t := m.n + k
		pred := m.accLevel + m.accSlope*float64(t)
		for p, season := range m.accSeason {
			pred += season[t%p]
		}
		point[k] = pred
	}
	return series.NewForecast(point), nil
}

func (m *MFLES) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if coverage <= 0 || coverage >= 1 {
		return nil, fmt.Errorf("coverage %f must be in (0,1): %w", coverage, ErrInvalidArgument)
	}
	f, err := m.Predict(h)
	if err != nil {
		return nil, err
	}
	z := zscoreForCoverage(coverage)
	widths := make([]float64, h)
	for i := 0; i < h; i++ {
		widths[i] = z * m.sigma * math.Sqrt(float64(i+1))
	}
	lower, upper := intervalBounds(f.Point[0], widths)
	return f.WithIntervals([][]float64{lower}, [][]float64{upper})
}

func (m *MFLES) FittedValues() []float64 { return m.fitted }
func (m *MFLES) Residuals() []float64    { return m.residuals }

// MFLESMetric selects the accuracy metric AutoMFLES minimizes during its
// internal rolling validation.
type MFLESMetric int

const (
	MFLESMetricMAE MFLESMetric = iota
	MFLESMetricRMSE
	MFLESMetricMAPE
	MFLESMetricSMAPE
)

// AutoMFLES performs a small internal holdout search over max rounds and
// learning rates, selecting the configuration minimizing the chosen metric
// on a trailing validation split of the training series.
type AutoMFLES struct {
	SeasonalPeriods []int
	Horizon         int
	Metric          MFLESMetric

	best *MFLES
}

func NewAutoMFLES(seasonalPeriods []int, horizon int, metric MFLESMetric) *AutoMFLES {
	return &AutoMFLES{SeasonalPeriods: seasonalPeriods, Horizon: horizon, Metric: metric}
}

func (m *AutoMFLES) Name() string { return "AutoMFLES" }

func (m *AutoMFLES) score(forecast, actual []float64) float64 {
	switch m.Metric {
	case MFLESMetricRMSE:
		v, _ := metrics.RMSE(forecast, actual)
		return v
	case MFLESMetricMAPE:
		v, _, _ := metrics.MAPE(forecast, actual)
		return v
	case MFLESMetricSMAPE:
		v, _, _ := metrics.SMAPE(forecast, actual)
		return v
	default:
		v, _ := metrics.MAE(forecast, actual)
		return v
	}
}

func (m *AutoMFLES) Fit(ts *series.Series) error {
	y := ts.Univariate()
	h := m.Horizon
	if h < 1 {
		h = 1
	}
	if len(y) < h+4 {
		return fmt.Errorf("auto-mfles requires at least %d observations, got %d: %w", h+4, len(y), ErrInsufficientData)
	}

	trainY := y[:len(y)-h]
	validY := y[len(y)-h:]
	trainTimes := ts.Times()[:len(y)-h]
	trainSeries, err := series.NewUnivariate(trainTimes, trainY)
	if err != nil {
		return fmt.Errorf("auto-mfles training split failed: %w", ErrNumericalFailure)
	}

	grid := []struct {
		rounds            int
		lrTrend, lrSeason, lrLevel float64
	}{
		{5, 0.1, 0.1, 0.1},
		{10, 0.3, 0.3, 0.3},
		{20, 0.5, 0.5, 0.5},
		{10, 0.1, 0.5, 0.2},
	}

	bestScore := math.Inf(1)
	var best *MFLES
	var lastErr error
	for _, g := range grid {
		opt := &MFLESOptions{
			SeasonalPeriods: m.SeasonalPeriods,
			MaxRounds:       g.rounds,
			LRTrend:         g.lrTrend,
			LRSeason:        g.lrSeason,
			LRLevel:         g.lrLevel,
		}
		cand, err := NewMFLES(opt)
		if err != nil {
			continue
		}
		if err := cand.Fit(trainSeries); err != nil {
			lastErr = err
			continue
		}
		f, err := cand.Predict(h)
		if err != nil {
			lastErr = err
			continue
		}
		score := m.score(f.Point[0], validY)
		if math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		if score < bestScore {
			bestScore = score
			best = cand
		}
	}
	if best == nil {
		if lastErr != nil {
			return lastErr
		}
		return fmt.Errorf("no mfles configuration could be fit: %w", ErrNumericalFailure)
	}

	final, err := NewMFLES(best.Options)
	if err != nil {
		return err
	}
	if err := final.Fit(ts); err != nil {
		return err
	}
	m.best = final
	return nil
}

func (m *AutoMFLES) Predict(h int) (*series.Forecast, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.Predict(h)
}

func (m *AutoMFLES) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.PredictWithConfidence(h, coverage)
}

func (m *AutoMFLES) FittedValues() []float64 { return m.best.FittedValues() }
func (m *AutoMFLES) Residuals() []float64    { return m.best.Residuals() }
