package model

import (
	"fmt"
	"math"

	"github.com/nilsson-quant/tsforecast/numeric"
	"github.com/nilsson-quant/tsforecast/series"
)

// CrostonClassic splits a demand series into non-zero demand magnitudes and
// the intervals between them, smooths each independently with SES, and
// forecasts the constant rate magnitude/interval.
type CrostonClassic struct {
	Alpha float64

	rate      float64
	fitted    []float64
	residuals []float64
	isFit     bool
}

func NewCrostonClassic(alpha float64) (*CrostonClassic, error) {
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("alpha %f must be in (0,1]: %w", alpha, ErrInvalidArgument)
	}
	return &CrostonClassic{Alpha: alpha}, nil
}

func (m *CrostonClassic) Name() string { return "CrostonClassic" }

// crostonComponents extracts the non-zero demand magnitudes and the
// intervals (in steps) between consecutive non-zero demands. The first
// interval counts from one step before the series start (index+1).
func crostonComponents(y []float64) (magnitudes, intervals []float64) {
	lastNonZero := -1
	for i, v := range y {
		if v != 0 {
			magnitudes = append(magnitudes, v)
			if lastNonZero >= 0 {
				intervals = append(intervals, float64(i-lastNonZero))
			} else {
				intervals = append(intervals, float64(i+1))
			}
			lastNonZero = i
		}
	}
	return magnitudes, intervals
}

func crostonRate(y []float64, alpha float64, biasCorrect bool) (rate float64, fitted, residuals []float64) {
	n := len(y)
	fitted = make([]float64, n)
	residuals = make([]float64, n)
	for i := range fitted {
		fitted[i] = math.NaN()
		residuals[i] = math.NaN()
	}

	magnitudes, intervals := crostonComponents(y)
	if len(magnitudes) == 0 {
		return 0, fitted, residuals
	}

	zLevel, _, _ := sesFit(magnitudes, alpha)
	pLevel, _, _ := sesFit(intervals, alpha)
	if pLevel == 0 {
		return 0, fitted, residuals
	}
	rate = zLevel / pLevel
	if biasCorrect {
		rate *= 1 - alpha/2
	}

	for i, v := range y {
		fitted[i] = rate
		residuals[i] = v - rate
	}
	return rate, fitted, residuals
}

func (m *CrostonClassic) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 2 {
		return fmt.Errorf("croston requires at least 2 observations: %w", ErrInsufficientData)
	}
	rate, fitted, residuals := crostonRate(y, m.Alpha, false)
	m.rate = rate
	m.fitted, m.residuals = fitted, residuals
	m.isFit = true
	return nil
}

func (m *CrostonClassic) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	point := make([]float64, h)
	for i := range point {
		point[i] = m.rate
	}
	return series.NewForecast(point), nil
}

func (m *CrostonClassic) FittedValues() []float64 { return m.fitted }
func (m *CrostonClassic) Residuals() []float64    { return m.residuals }

func crostonSSE(y []float64, alpha float64, biasCorrect bool) float64 {
	_, _, residuals := crostonRate(y, alpha, biasCorrect)
	var sse float64
	for _, r := range residuals {
		if math.IsNaN(r) {
			continue
		}
		sse += r * r
	}
	return sse
}

// CrostonOptimized chooses alpha by minimizing total in-sample squared error.
type CrostonOptimized struct {
	inner *CrostonClassic
	alpha float64
}

func NewCrostonOptimized() *CrostonOptimized { return &CrostonOptimized{} }

func (m *CrostonOptimized) Name() string { return "CrostonOptimized" }

func (m *CrostonOptimized) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 2 {
		return fmt.Errorf("croston-optimized requires at least 2 observations: %w", ErrInsufficientData)
	}
	opt := numeric.NewDefaultNelderMeadOptions()
	opt.Lower = []float64{0.01}
	opt.Upper = []float64{0.99}
	result, err := numeric.NelderMead(func(x []float64) float64 {
		return crostonSSE(y, x[0], false)
	}, []float64{0.1}, opt)
	if err != nil {
		return fmt.Errorf("croston-optimized alpha search failed: %w", ErrNumericalFailure)
	}
	inner, err := NewCrostonClassic(result.X[0])
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

func (m *CrostonOptimized) Predict(h int) (*series.Forecast, error) {
	if m.inner == nil {
		return nil, ErrNotFitted
	}
	return m.inner.Predict(h)
}

func (m *CrostonOptimized) FittedValues() []float64 { return m.inner.FittedValues() }
func (m *CrostonOptimized) Residuals() []float64    { return m.inner.Residuals() }
func (m *CrostonOptimized) Alpha() float64          { return m.alpha }

// CrostonSBA applies the Syntetos-Boylan Approximation bias correction
// (1 - alpha/2) to an optimized Croston rate.
type CrostonSBA struct {
	inner *CrostonClassic
	alpha float64
}

func NewCrostonSBA() *CrostonSBA { return &CrostonSBA{} }

func (m *CrostonSBA) Name() string { return "CrostonSBA" }

func (m *CrostonSBA) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 2 {
		return fmt.Errorf("croston-sba requires at least 2 observations: %w", ErrInsufficientData)
	}
	opt := numeric.NewDefaultNelderMeadOptions()
	opt.Lower = []float64{0.01}
	opt.Upper = []float64{0.99}
	result, err := numeric.NelderMead(func(x []float64) float64 {
		return crostonSSE(y, x[0], true)
	}, []float64{0.1}, opt)
	if err != nil {
		return fmt.Errorf("croston-sba alpha search failed: %w", ErrNumericalFailure)
	}
	rate, fitted, residuals := crostonRate(y, result.X[0], true)
	inner := &CrostonClassic{Alpha: result.X[0], rate: rate, fitted: fitted, residuals: residuals, isFit: true}
	m.inner = inner
	m.alpha = result.X[0]
	return nil
}

func (m *CrostonSBA) Predict(h int) (*series.Forecast, error) {
	if m.inner == nil {
		return nil, ErrNotFitted
	}
	return m.inner.Predict(h)
}

func (m *CrostonSBA) FittedValues() []float64 { return m.inner.FittedValues() }
func (m *CrostonSBA) Residuals() []float64    { return m.inner.Residuals() }
func (m *CrostonSBA) Alpha() float64          { return m.alpha }

// ADIDA aggregates demand into buckets sized to the average inter-demand
// interval, forecasts the aggregated series with SES, then disaggregates by
// dividing evenly across the bucket.
type ADIDA struct {
	bucketSize int
	perStep    float64
	fitted     []float64
	residuals  []float64
	isFit      bool
}

func NewADIDA() *ADIDA { return &ADIDA{} }

func (m *ADIDA) Name() string { return "ADIDA" }

func (m *ADIDA) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 2 {
		return fmt.Errorf("adida requires at least 2 observations: %w", ErrInsufficientData)
	}
	_, intervals := crostonComponents(y)
	bucket := 1
	if len(intervals) > 0 {
		bucket = int(math.Round(mean(intervals)))
		if bucket < 1 {
			bucket = 1
		}
	}
	m.bucketSize = bucket

	aggregated := aggregateSum(y, bucket)
	if len(aggregated) < 1 {
		return fmt.Errorf("adida aggregation produced no buckets: %w", ErrInsufficientData)
	}
	level, fitted, residuals := sesFit(aggregated, 0.3)
	m.perStep = level / float64(bucket)

	m.fitted = make([]float64, len(y))
	m.residuals = make([]float64, len(y))
	for i := range y {
		bi := i / bucket
		if bi < len(fitted) {
			m.fitted[i] = fitted[bi] / float64(bucket)
			m.residuals[i] = y[i] - m.fitted[i]
		} else {
			m.fitted[i] = math.NaN()
			m.residuals[i] = math.NaN()
		}
	}
	_ = residuals
	m.isFit = true
	return nil
}

func aggregateSum(y []float64, bucket int) []float64 {
	var out []float64
	for i := 0; i < len(y); i += bucket {
		end := i + bucket
		if end > len(y) {
			end = len(y)
		}
		var sum float64
		for _, v := range y[i:end] {
			sum += v
		}
		out = append(out, sum)
	}
	return out
}

func (m *ADIDA) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	point := make([]float64, h)
	for i := range point {
		point[i] = m.perStep
	}
	return series.NewForecast(point), nil
}

func (m *ADIDA) FittedValues() []float64 { return m.fitted }
func (m *ADIDA) Residuals() []float64    { return m.residuals }

// IMAPA averages per-step rate forecasts across a grid of aggregation levels
// from 1 up to the average inter-demand interval. Each level's rate is the
// final SES level (alpha 0.3) of the bucket sums divided by the bucket size,
// as in ADIDA; the levels do not use a Croston magnitude/interval split.
type IMAPA struct {
	perStep   float64
	fitted    []float64
	residuals []float64
	isFit     bool
}

func NewIMAPA() *IMAPA { return &IMAPA{} }

func (m *IMAPA) Name() string { return "IMAPA" }

func (m *IMAPA) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 2 {
		return fmt.Errorf("imapa requires at least 2 observations: %w", ErrInsufficientData)
	}
	_, intervals := crostonComponents(y)
	maxLevel := 1
	if len(intervals) > 0 {
		maxLevel = int(math.Round(mean(intervals)))
		if maxLevel < 1 {
			maxLevel = 1
		}
	}

	var rates []float64
	for level := 1; level <= maxLevel; level++ {
		aggregated := aggregateSum(y, level)
		if len(aggregated) < 1 {
			continue
		}
		levelVal, _, _ := sesFit(aggregated, 0.3)
		rates = append(rates, levelVal/float64(level))
	}
	if len(rates) == 0 {
		return fmt.Errorf("imapa produced no aggregation levels: %w", ErrNumericalFailure)
	}
	m.perStep = mean(rates)

	m.fitted = make([]float64, len(y))
	m.residuals = make([]float64, len(y))
	for i, v := range y {
		m.fitted[i] = m.perStep
		m.residuals[i] = v - m.perStep
	}
	m.isFit = true
	return nil
}

func (m *IMAPA) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	point := make([]float64, h)
	for i := range point {
		point[i] = m.perStep
	}
	return series.NewForecast(point), nil
}

func (m *IMAPA) FittedValues() []float64 { return m.fitted }
func (m *IMAPA) Residuals() []float64    { return m.residuals }

// TSB replaces Croston's inter-arrival interval with a demand-probability
// series: at each step, the probability is smoothed toward 1 on a non-zero
// observation and toward 0 otherwise, while the magnitude series is smoothed
// only on non-zero observations. The forecast is probability * magnitude.
type TSB struct {
	AlphaProb, AlphaMagnitude float64

	rate      float64
	fitted    []float64
	residuals []float64
	isFit     bool
}

func NewTSB(alphaProb, alphaMagnitude float64) (*TSB, error) {
	if alphaProb <= 0 || alphaProb > 1 {
		return nil, fmt.Errorf("alpha_prob %f must be in (0,1]: %w", alphaProb, ErrInvalidArgument)
	}
	if alphaMagnitude <= 0 || alphaMagnitude > 1 {
		return nil, fmt.Errorf("alpha_magnitude %f must be in (0,1]: %w", alphaMagnitude, ErrInvalidArgument)
	}
	return &TSB{AlphaProb: alphaProb, AlphaMagnitude: alphaMagnitude}, nil
}

func (m *TSB) Name() string { return "TSB" }

func (m *TSB) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 2 {
		return fmt.Errorf("tsb requires at least 2 observations: %w", ErrInsufficientData)
	}

	n := len(y)
	prob := 0.0
	magnitude := 0.0
	firstNonZero := true
	fitted := make([]float64, n)
	residuals := make([]float64, n)

	for i, v := range y {
		if i == 0 {
			if v != 0 {
				prob, magnitude = 1, v
				firstNonZero = false
			}
			fitted[i] = math.NaN()
			residuals[i] = math.NaN()
			continue
		}
		fitted[i] = prob * magnitude
		residuals[i] = v - fitted[i]

		indicator := 0.0
		if v != 0 {
			indicator = 1
		}
		prob = m.AlphaProb*indicator + (1-m.AlphaProb)*prob
		if v != 0 {
			if firstNonZero {
				magnitude = v
				firstNonZero = false
			} else {
				magnitude = m.AlphaMagnitude*v + (1-m.AlphaMagnitude)*magnitude
			}
		}
	}

	m.rate = prob * magnitude
	m.fitted, m.residuals = fitted, residuals
	m.isFit = true
	return nil
}

func (m *TSB) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	point := make([]float64, h)
	for i := range point {
		point[i] = m.rate
	}
	return series.NewForecast(point), nil
}

func (m *TSB) FittedValues() []float64 { return m.fitted }
func (m *TSB) Residuals() []float64    { return m.residuals }
