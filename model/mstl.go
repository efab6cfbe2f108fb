package model

import (
	"fmt"
	"math"

	"github.com/nilsson-quant/tsforecast/series"
)

// MSTL iteratively extracts a seasonal component for each period in
// Periods (in the given order), subtracting it from the working series
// before extracting the next. What remains after all periods are removed
// is modeled as a linear trend plus remainder. When the series is shorter
// than twice the smallest period, Fit falls back to SES rather than
// attempting a decomposition that has no hope of separating signal from
// noise at that period.
type MSTL struct {
	Periods []int

	fallback  *SES
	intercept float64
	slope     float64
	seasonals map[int][]float64
	fitted    []float64
	residuals []float64
	sigma     float64
	n         int
	isFit     bool
}

func NewMSTL(periods []int) (*MSTL, error) {
	if len(periods) == 0 {
		return nil, fmt.Errorf("mstl requires at least one seasonal period: %w", ErrInvalidArgument)
	}
	for _, p := range periods {
		if p < 2 {
			return nil, fmt.Errorf("seasonal period %d must be >= 2: %w", p, ErrInvalidArgument)
		}
	}
	return &MSTL{Periods: periods}, nil
}

func (m *MSTL) Name() string { return "MSTL" }

func minPeriod(periods []int) int {
	min := periods[0]
	for _, p := range periods[1:] {
		if p < min {
			min = p
		}
	}
	return min
}

func (m *MSTL) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 2*minPeriod(m.Periods) {
		fallback, err := NewSES(0.3)
		if err != nil {
			return err
		}
		if err := fallback.Fit(ts); err != nil {
			return err
		}
		m.fallback = fallback
		m.isFit = true
		return nil
	}

	intercept, slope, seasonals, fitted, residuals := mstlDecompose(y, m.Periods)
	m.intercept, m.slope, m.seasonals = intercept, slope, seasonals
	m.fitted, m.residuals = fitted, residuals
	m.sigma = residualStdDev(residuals)
	m.n = len(y)
	m.isFit = true
	return nil
}

func mstlDecompose(y []float64, periods []int) (intercept, slope float64, seasonals map[int][]float64, fitted, residuals []float64) {
	n := len(y)
	working := append([]float64(nil), y...)
	seasonals = make(map[int][]float64, len(periods))

	for _, p := range periods {
		indices := seasonalIndicesAdditive(working, p)
		idxMean := mean(indices)
		for i := range indices {
			indices[i] -= idxMean
		}
		seasonals[p] = indices
		for i := range working {
			working[i] -= indices[i%p]
		}
	}

	intercept, slope = linearTrendCoef(working, 0)

	fitted = make([]float64, n)
	residuals = make([]float64, n)
	for i := 0; i < n; i++ {
		pred := intercept + slope*float64(i)
		for _, p := range periods {
			pred += seasonals[p][i%p]
		}
		fitted[i] = pred
		residuals[i] = y[i] - pred
	}
	return intercept, slope, seasonals, fitted, residuals
}

func (m *MSTL) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if m.fallback != nil {
		return m.fallback.Predict(h)
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	point := make([]float64, h)
	for k := 0; k < h; k++ {
		t := m.n + k
		pred := m.intercept + m.slope*float64(t)
		for _, p := range m.Periods {
			pred += m.seasonals[p][t%p]
		}
		point[k] = pred
	}
	return series.NewForecast(point), nil
}

func (m *MSTL) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if coverage <= 0 || coverage >= 1 {
		return nil, fmt.Errorf("coverage %f must be in (0,1): %w", coverage, ErrInvalidArgument)
	}
	if m.fallback != nil {
		return m.fallback.PredictWithConfidence(h, coverage)
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

func (m *MSTL) FittedValues() []float64 {
	if m.fallback != nil {
		return m.fallback.FittedValues()
	}
	return m.fitted
}

func (m *MSTL) Residuals() []float64 {
	if m.fallback != nil {
		return m.fallback.Residuals()
	}
	return m.residuals
}

// AutoMSTL fits MSTL with the periods in both broadest-to-finest and
// finest-to-broadest order and keeps whichever has the lower in-sample SSE.
type AutoMSTL struct {
	Periods []int

	best *MSTL
}

func NewAutoMSTL(periods []int) *AutoMSTL { return &AutoMSTL{Periods: periods} }

func (m *AutoMSTL) Name() string { return "AutoMSTL" }

func reversedInts(xs []int) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[len(xs)-1-i] = x
	}
	return out
}

func sseOf(residuals []float64) float64 {
	var sse float64
	for _, r := range residuals {
		if math.IsNaN(r) {
			continue
		}
		sse += r * r
	}
	return sse
}

func (m *AutoMSTL) Fit(ts *series.Series) error {
	orderings := [][]int{m.Periods, reversedInts(m.Periods)}
	var best *MSTL
	bestSSE := math.Inf(1)
	var lastErr error
	for _, order := range orderings {
		cand, err := NewMSTL(order)
		if err != nil {
			lastErr = err
			continue
		}
		if err := cand.Fit(ts); err != nil {
			lastErr = err
			continue
		}
		sse := sseOf(cand.Residuals())
		if sse < bestSSE {
			bestSSE = sse
			best = cand
		}
	}
	if best == nil {
		if lastErr != nil {
			return lastErr
		}
		return fmt.Errorf("no mstl ordering could be fit: %w", ErrNumericalFailure)
	}
	m.best = best
	return nil
}

func (m *AutoMSTL) Predict(h int) (*series.Forecast, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.Predict(h)
}

func (m *AutoMSTL) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.PredictWithConfidence(h, coverage)
}

func (m *AutoMSTL) FittedValues() []float64 { return m.best.FittedValues() }
func (m *AutoMSTL) Residuals() []float64    { return m.best.Residuals() }
