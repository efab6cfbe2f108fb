package model

import (
	"fmt"
	"math"

	"github.com/nilsson-quant/tsforecast/series"
)

// SMA forecasts a constant equal to the mean of the last Window finite
// observations.
type SMA struct {
	Window int

	mean      float64
	fitted    []float64
	residuals []float64
	sigma     float64
	isFit     bool
}

func NewSMA(window int) (*SMA, error) {
	if window < 1 {
		return nil, fmt.Errorf("window %d must be >= 1: %w", window, ErrInvalidArgument)
	}
	return &SMA{Window: window}, nil
}

func (m *SMA) Name() string { return "SMA" }

func (m *SMA) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < m.Window {
		return fmt.Errorf("sma requires at least %d observations, got %d: %w", m.Window, len(y), ErrInsufficientData)
	}

	m.fitted = make([]float64, len(y))
	m.residuals = make([]float64, len(y))
	for i := range y {
		if i < m.Window {
			m.fitted[i] = math.NaN()
			m.residuals[i] = math.NaN()
			continue
		}
		window := y[i-m.Window : i]
		m.fitted[i] = mean(window)
		m.residuals[i] = y[i] - m.fitted[i]
	}
	m.sigma = residualStdDev(m.residuals)
	m.mean = mean(y[len(y)-m.Window:])
	m.isFit = true
	return nil
}

func (m *SMA) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	point := make([]float64, h)
	for i := range point {
		point[i] = m.mean
	}
	return series.NewForecast(point), nil
}

func (m *SMA) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
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

func (m *SMA) FittedValues() []float64 { return m.fitted }
func (m *SMA) Residuals() []float64    { return m.residuals }

func mean(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}
