package model

import (
	"fmt"
	"math"

	"github.com/nilsson-quant/tsforecast/series"
)

// RandomWalkDrift extrapolates the last observation plus a constant drift
// equal to the mean first difference: predict(h)[k] = y[n-1] + (k+1)*drift,
// drift = (y[n-1] - y[0]) / (n-1). Interval widths grow with sqrt(h).
type RandomWalkDrift struct {
	last      float64
	drift     float64
	residuals []float64
	fitted    []float64
	sigma     float64
	isFit     bool
}

func NewRandomWalkDrift() *RandomWalkDrift { return &RandomWalkDrift{} }

func (m *RandomWalkDrift) Name() string { return "RandomWalkDrift" }

func (m *RandomWalkDrift) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 2 {
		return fmt.Errorf("random walk with drift requires at least 2 observations, got %d: %w", len(y), ErrInsufficientData)
	}
	n := len(y)
	m.drift = (y[n-1] - y[0]) / float64(n-1)

	m.fitted = make([]float64, n)
	m.residuals = make([]float64, n)
	m.fitted[0] = math.NaN()
	m.residuals[0] = math.NaN()
	for i := 1; i < n; i++ {
		m.fitted[i] = y[i-1] + m.drift
		m.residuals[i] = y[i] - m.fitted[i]
	}
	m.sigma = residualStdDev(m.residuals)
	m.last = y[n-1]
	m.isFit = true
	return nil
}

func (m *RandomWalkDrift) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	point := make([]float64, h)
	for k := 0; k < h; k++ {
		point[k] = m.last + float64(k+1)*m.drift
	}
	return series.NewForecast(point), nil
}

func (m *RandomWalkDrift) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if coverage <= 0 || coverage >= 1 {
		return nil, fmt.Errorf("coverage %f must be in (0,1): %w", coverage, ErrInvalidArgument)
	}
	f, err := m.Predict(h)
	if err != nil {
		return nil, err
	}
	z := zscoreForCoverage(coverage)
	widths := make([]float64, h)
	for k := 0; k < h; k++ {
		widths[k] = z * m.sigma * math.Sqrt(float64(k+1))
	}
	lower, upper := intervalBounds(f.Point[0], widths)
	return f.WithIntervals([][]float64{lower}, [][]float64{upper})
}

func (m *RandomWalkDrift) FittedValues() []float64 { return m.fitted }
func (m *RandomWalkDrift) Residuals() []float64    { return m.residuals }
