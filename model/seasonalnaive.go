package model

import (
	"fmt"
	"math"

	"github.com/nilsson-quant/tsforecast/series"
)

// SeasonalNaive forecasts step h as the observation at lag s-((h-1) mod s)
// counted from the series end, where s is the season length. A season length
// of 1 degrades to Naive.
type SeasonalNaive struct {
	Period int

	y         []float64
	fitted    []float64
	residuals []float64
	sigma     []float64 // per-phase residual stddev
	isFit     bool
}

func NewSeasonalNaive(period int) (*SeasonalNaive, error) {
	if period < 1 {
		return nil, fmt.Errorf("period %d must be >= 1: %w", period, ErrInvalidArgument)
	}
	return &SeasonalNaive{Period: period}, nil
}

func (m *SeasonalNaive) Name() string { return "SeasonalNaive" }

func (m *SeasonalNaive) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 2*m.Period {
		return fmt.Errorf("seasonal naive requires at least %d observations for period %d, got %d: %w", 2*m.Period, m.Period, len(y), ErrInsufficientData)
	}

	m.fitted = make([]float64, len(y))
	m.residuals = make([]float64, len(y))
	for i := range y {
		if i < m.Period {
			m.fitted[i] = math.NaN()
			m.residuals[i] = math.NaN()
			continue
		}
		m.fitted[i] = y[i-m.Period]
		m.residuals[i] = y[i] - m.fitted[i]
	}

	m.sigma = make([]float64, m.Period)
	byPhase := make([][]float64, m.Period)
	for i, r := range m.residuals {
		if math.IsNaN(r) {
			continue
		}
		phase := i % m.Period
		byPhase[phase] = append(byPhase[phase], r)
	}
	for p := range byPhase {
		m.sigma[p] = residualStdDev(byPhase[p])
	}

	m.y = append([]float64(nil), y...)
	m.isFit = true
	return nil
}

func (m *SeasonalNaive) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	n := len(m.y)
	point := make([]float64, h)
	for k := 0; k < h; k++ {
		lag := m.Period - ((k) % m.Period)
		point[k] = m.y[n-lag]
	}
	return series.NewForecast(point), nil
}

func (m *SeasonalNaive) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
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
		phase := (len(m.y) + k) % m.Period
		cycles := float64(k/m.Period + 1)
		widths[k] = z * m.sigma[phase] * math.Sqrt(cycles)
	}
	lower, upper := intervalBounds(f.Point[0], widths)
	return f.WithIntervals([][]float64{lower}, [][]float64{upper})
}

func (m *SeasonalNaive) FittedValues() []float64 { return m.fitted }
func (m *SeasonalNaive) Residuals() []float64    { return m.residuals }
