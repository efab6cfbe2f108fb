package model

import (
	"fmt"
	"math"

	"github.com/nilsson-quant/tsforecast/series"
)

// SeasonalWindowAverage is a seasonal analogue of SMA: the step-h forecast at
// phase p = (n+h-1) mod period is the mean of the last Window observations
// seen at that phase, rather than the single most recent one SeasonalNaive
// would use.
type SeasonalWindowAverage struct {
	Period int
	Window int

	y         []float64
	phaseMean []float64
	fitted    []float64
	residuals []float64
	sigma     []float64
	isFit     bool
}

func NewSeasonalWindowAverage(period, window int) (*SeasonalWindowAverage, error) {
	if period < 1 {
		return nil, fmt.Errorf("period %d must be >= 1: %w", period, ErrInvalidArgument)
	}
	if window < 1 {
		return nil, fmt.Errorf("window %d must be >= 1: %w", window, ErrInvalidArgument)
	}
	return &SeasonalWindowAverage{Period: period, Window: window}, nil
}

func (m *SeasonalWindowAverage) Name() string { return "SeasonalWindowAverage" }

func (m *SeasonalWindowAverage) Fit(ts *series.Series) error {
	y := ts.Univariate()
	minLen := m.Period * (m.Window + 1)
	if len(y) < minLen {
		return fmt.Errorf("seasonal window average requires at least %d observations for period %d window %d, got %d: %w", minLen, m.Period, m.Window, len(y), ErrInsufficientData)
	}

	byPhase := make([][]float64, m.Period)
	for i, v := range y {
		phase := i % m.Period
		byPhase[phase] = append(byPhase[phase], v)
	}

	m.phaseMean = make([]float64, m.Period)
	m.sigma = make([]float64, m.Period)
	m.fitted = make([]float64, len(y))
	m.residuals = make([]float64, len(y))
	for i := range y {
		m.fitted[i] = math.NaN()
		m.residuals[i] = math.NaN()
	}

	for p := 0; p < m.Period; p++ {
		obs := byPhase[p]
		if len(obs) < m.Window {
			continue
		}
		m.phaseMean[p] = mean(obs[len(obs)-m.Window:])

		phaseResiduals := make([]float64, 0, len(obs))
		for idx := m.Window; idx <= len(obs); idx++ {
			window := obs[idx-m.Window : idx]
			avg := mean(window)
			if idx < len(obs) {
				phaseResiduals = append(phaseResiduals, obs[idx]-avg)
			}
		}
		m.sigma[p] = residualStdDev(phaseResiduals)

		for seq, v := range obs {
			i := seq*m.Period + p
			if seq >= m.Window {
				window := obs[seq-m.Window : seq]
				m.fitted[i] = mean(window)
				m.residuals[i] = v - m.fitted[i]
			}
		}
	}

	m.y = append([]float64(nil), y...)
	m.isFit = true
	return nil
}

func (m *SeasonalWindowAverage) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	n := len(m.y)
	point := make([]float64, h)
	for k := 0; k < h; k++ {
		phase := (n + k) % m.Period
		point[k] = m.phaseMean[phase]
	}
	return series.NewForecast(point), nil
}

func (m *SeasonalWindowAverage) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if coverage <= 0 || coverage >= 1 {
		return nil, fmt.Errorf("coverage %f must be in (0,1): %w", coverage, ErrInvalidArgument)
	}
	f, err := m.Predict(h)
	if err != nil {
		return nil, err
	}
	n := len(m.y)
	z := zscoreForCoverage(coverage)
	widths := make([]float64, h)
	for k := 0; k < h; k++ {
		phase := (n + k) % m.Period
		cycles := float64(k/m.Period + 1)
		widths[k] = z * m.sigma[phase] * math.Sqrt(cycles)
	}
	lower, upper := intervalBounds(f.Point[0], widths)
	return f.WithIntervals([][]float64{lower}, [][]float64{upper})
}

func (m *SeasonalWindowAverage) FittedValues() []float64 { return m.fitted }
func (m *SeasonalWindowAverage) Residuals() []float64    { return m.residuals }
