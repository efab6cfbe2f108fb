package model

import (
	"fmt"
	"math"

	"github.com/nilsson-quant/tsforecast/series"
)

// Naive repeats the last observation for every future step. Prediction
// intervals come from a Gaussian assumption on one-step residuals with
// variance growing linearly in the step (sigma^2 * h).
type Naive struct {
	last      float64
	residuals []float64
	fitted    []float64
	sigma     float64
	isFit     bool
}

func NewNaive() *Naive { return &Naive{} }

func (m *Naive) Name() string { return "Naive" }

func (m *Naive) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 1 {
		return fmt.Errorf("naive requires at least 1 observation: %w", ErrInsufficientData)
	}
	m.fitted = make([]float64, len(y))
	m.residuals = make([]float64, len(y))
	m.fitted[0] = math.NaN()
	m.residuals[0] = math.NaN()
	for i := 1; i < len(y); i++ {
		m.fitted[i] = y[i-1]
		m.residuals[i] = y[i] - y[i-1]
	}
	m.sigma = residualStdDev(m.residuals)
	m.last = y[len(y)-1]
	m.isFit = true
	return nil
}

func (m *Naive) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	point := make([]float64, h)
	for i := range point {
		point[i] = m.last
	}
	return series.NewForecast(point), nil
}

func (m *Naive) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
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

func (m *Naive) FittedValues() []float64 { return m.fitted }
func (m *Naive) Residuals() []float64    { return m.residuals }

// residualStdDev computes the population-style standard deviation of the
// finite residuals, ignoring the leading NaN every one-step model produces.
func residualStdDev(residuals []float64) float64 {
	var sum, sumSq float64
	var n int
	for _, r := range residuals {
		if math.IsNaN(r) {
			continue
		}
		sum += r
		sumSq += r * r
		n++
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}
