package model

import (
	"fmt"
	"math"

	"github.com/nilsson-quant/tsforecast/numeric"
	"github.com/nilsson-quant/tsforecast/series"
)

// Holt is linear (level + trend) exponential smoothing, optionally damped by
// phi in (0,1]. phi == 1 is plain Holt; phi < 1 damps the trend toward zero
// as the horizon grows.
type Holt struct {
	Alpha float64
	Beta  float64
	Phi   float64 // 1 means undamped

	level, trend float64
	fitted       []float64
	residuals    []float64
	sigma        float64
	isFit        bool
}

func NewHolt(alpha, beta float64) (*Holt, error) {
	return newHolt(alpha, beta, 1)
}

func NewDampedHolt(alpha, beta, phi float64) (*Holt, error) {
	return newHolt(alpha, beta, phi)
}

func newHolt(alpha, beta, phi float64) (*Holt, error) {
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("alpha %f must be in (0,1]: %w", alpha, ErrInvalidArgument)
	}
	if beta <= 0 || beta > 1 {
		return nil, fmt.Errorf("beta %f must be in (0,1]: %w", beta, ErrInvalidArgument)
	}
	if phi <= 0 || phi > 1 {
		return nil, fmt.Errorf("phi %f must be in (0,1]: %w", phi, ErrInvalidArgument)
	}
	return &Holt{Alpha: alpha, Beta: beta, Phi: phi}, nil
}

func (m *Holt) Name() string {
	if m.Phi < 1 {
		return "DampedHolt"
	}
	return "Holt"
}

func (m *Holt) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 2 {
		return fmt.Errorf("holt requires at least 2 observations: %w", ErrInsufficientData)
	}
	level, trend, fitted, residuals := holtFit(y, m.Alpha, m.Beta, m.Phi)
	m.level, m.trend = level, trend
	m.fitted, m.residuals = fitted, residuals
	m.sigma = residualStdDev(residuals)
	m.isFit = true
	return nil
}

func (m *Holt) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	point := make([]float64, h)
	phiSum := 0.0
	phiPow := m.Phi
	for k := 0; k < h; k++ {
		phiSum += phiPow
		point[k] = m.level + phiSum*m.trend
		phiPow *= m.Phi
	}
	return series.NewForecast(point), nil
}

func (m *Holt) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
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

func (m *Holt) FittedValues() []float64 { return m.fitted }
func (m *Holt) Residuals() []float64    { return m.residuals }

// holtFit runs the level/trend recursion. Initial level is y[0]; initial
// trend is y[1]-y[0].
func holtFit(y []float64, alpha, beta, phi float64) (level, trend float64, fitted, residuals []float64) {
	n := len(y)
	fitted = make([]float64, n)
	residuals = make([]float64, n)
	fitted[0] = math.NaN()
	residuals[0] = math.NaN()

	level = y[0]
	trend = y[1] - y[0]
	fitted[1] = level + phi*trend
	residuals[1] = y[1] - fitted[1]

	for i := 1; i < n; i++ {
		prevLevel := level
		level = alpha*y[i] + (1-alpha)*(prevLevel+phi*trend)
		trend = beta*(level-prevLevel) + (1-beta)*phi*trend
		if i+1 < n {
			fitted[i+1] = level + phi*trend
			residuals[i+1] = y[i+1] - fitted[i+1]
		}
	}
	return level, trend, fitted, residuals
}

func holtSSE(y []float64, alpha, beta, phi float64) float64 {
	_, _, _, residuals := holtFit(y, alpha, beta, phi)
	var sse float64
	for _, r := range residuals {
		if math.IsNaN(r) {
			continue
		}
		sse += r * r
	}
	return sse
}

// HoltOptimized fits alpha, beta (and optionally phi) by minimizing in-sample
// squared error with the bounded Nelder-Mead minimizer.
type HoltOptimized struct {
	Damped bool

	inner              *Holt
	alpha, beta, phi   float64
}

func NewHoltOptimized(damped bool) *HoltOptimized { return &HoltOptimized{Damped: damped} }

func (m *HoltOptimized) Name() string {
	if m.Damped {
		return "DampedHoltOptimized"
	}
	return "HoltOptimized"
}

func (m *HoltOptimized) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 3 {
		return fmt.Errorf("holt-optimized requires at least 3 observations: %w", ErrInsufficientData)
	}

	opt := numeric.NewDefaultNelderMeadOptions()
	x0 := []float64{0.3, 0.1}
	if m.Damped {
		opt.Lower = []float64{0.01, 0.01, 0.8}
		opt.Upper = []float64{0.99, 0.99, 0.99}
		x0 = append(x0, 0.95)
	} else {
		opt.Lower = []float64{0.01, 0.01}
		opt.Upper = []float64{0.99, 0.99}
	}

	result, err := numeric.NelderMead(func(x []float64) float64 {
		phi := 1.0
		if m.Damped {
			phi = x[2]
		}
		return holtSSE(y, x[0], x[1], phi)
	}, x0, opt)
	if err != nil {
		return fmt.Errorf("holt-optimized parameter search failed: %w", ErrNumericalFailure)
	}

	phi := 1.0
	if m.Damped {
		phi = result.X[2]
	}
	inner, err := newHolt(result.X[0], result.X[1], phi)
	if err != nil {
		return err
	}
	if err := inner.Fit(ts); err != nil {
		return err
	}
	m.inner = inner
	m.alpha, m.beta, m.phi = result.X[0], result.X[1], phi
	return nil
}

func (m *HoltOptimized) Predict(h int) (*series.Forecast, error) {
	if m.inner == nil {
		return nil, ErrNotFitted
	}
	return m.inner.Predict(h)
}

func (m *HoltOptimized) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if m.inner == nil {
		return nil, ErrNotFitted
	}
	return m.inner.PredictWithConfidence(h, coverage)
}

func (m *HoltOptimized) FittedValues() []float64 { return m.inner.FittedValues() }
func (m *HoltOptimized) Residuals() []float64    { return m.inner.Residuals() }
