package model

import (
	"fmt"
	"math"

	"github.com/nilsson-quant/tsforecast/numeric"
	"github.com/nilsson-quant/tsforecast/series"
)

// SES is single-level exponential smoothing: level_t = alpha*y_t +
// (1-alpha)*level_{t-1}. Forecasts are flat at the final level.
type SES struct {
	Alpha float64

	level     float64
	fitted    []float64
	residuals []float64
	sigma     float64
	isFit     bool
}

func NewSES(alpha float64) (*SES, error) {
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("alpha %f must be in (0,1]: %w", alpha, ErrInvalidArgument)
	}
	return &SES{Alpha: alpha}, nil
}

func (m *SES) Name() string { return "SES" }

func (m *SES) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 1 {
		return fmt.Errorf("ses requires at least 1 observation: %w", ErrInsufficientData)
	}
	level, fitted, residuals := sesFit(y, m.Alpha)
	m.level = level
	m.fitted = fitted
	m.residuals = residuals
	m.sigma = residualStdDev(residuals)
	m.isFit = true
	return nil
}

func (m *SES) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	point := make([]float64, h)
	for i := range point {
		point[i] = m.level
	}
	return series.NewForecast(point), nil
}

func (m *SES) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
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

func (m *SES) FittedValues() []float64 { return m.fitted }
func (m *SES) Residuals() []float64    { return m.residuals }

// sesFit runs the smoothing recursion and returns the final level along with
// in-sample fitted values and residuals. The level is seeded with y[0].
func sesFit(y []float64, alpha float64) (level float64, fitted, residuals []float64) {
	n := len(y)
	fitted = make([]float64, n)
	residuals = make([]float64, n)
	fitted[0] = math.NaN()
	residuals[0] = math.NaN()
	level = y[0]
	for i := 1; i < n; i++ {
		fitted[i] = level
		residuals[i] = y[i] - level
		level = alpha*y[i] + (1-alpha)*level
	}
	return level, fitted, residuals
}

func sesSSE(y []float64, alpha float64) float64 {
	_, _, residuals := sesFit(y, alpha)
	var sse float64
	for _, r := range residuals {
		if math.IsNaN(r) {
			continue
		}
		sse += r * r
	}
	return sse
}

// SESOptimized fits SES with alpha chosen to minimize in-sample one-step
// squared error over [0.01, 0.99] via the bounded Nelder-Mead minimizer.
type SESOptimized struct {
	inner *SES
	alpha float64
}

func NewSESOptimized() *SESOptimized { return &SESOptimized{} }

func (m *SESOptimized) Name() string { return "SESOptimized" }

func (m *SESOptimized) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 2 {
		return fmt.Errorf("ses-optimized requires at least 2 observations: %w", ErrInsufficientData)
	}

	opt := numeric.NewDefaultNelderMeadOptions()
	opt.Lower = []float64{0.01}
	opt.Upper = []float64{0.99}
	result, err := numeric.NelderMead(func(x []float64) float64 {
		return sesSSE(y, x[0])
	}, []float64{0.3}, opt)
	if err != nil {
		return fmt.Errorf("ses-optimized alpha search failed: %w", ErrNumericalFailure)
	}

	inner, err := NewSES(result.X[0])
	if err != nil {
		return err
	}
	if err := inner.Fit(ts); err != nil {
		return err
	}
	m.inner = inner
	m.alpha = result.X[0]
	return nil
}

func (m *SESOptimized) Predict(h int) (*series.Forecast, error) {
	if m.inner == nil {
		return nil, ErrNotFitted
	}
	return m.inner.Predict(h)
}

func (m *SESOptimized) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if m.inner == nil {
		return nil, ErrNotFitted
	}
	return m.inner.PredictWithConfidence(h, coverage)
}

func (m *SESOptimized) FittedValues() []float64 { return m.inner.FittedValues() }
func (m *SESOptimized) Residuals() []float64    { return m.inner.Residuals() }
func (m *SESOptimized) Alpha() float64          { return m.alpha }
