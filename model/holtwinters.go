package model

import (
	"fmt"
	"math"

	"github.com/nilsson-quant/tsforecast/numeric"
	"github.com/nilsson-quant/tsforecast/series"
)

// SeasonalMethod selects additive or multiplicative combination of level,
// trend, and seasonal components.
type SeasonalMethod int

const (
	SeasonalAdditive SeasonalMethod = iota
	SeasonalMultiplicative
)

// HoltWinters is triple exponential smoothing: level, trend, and a seasonal
// component of length Period, combined additively or multiplicatively.
// Period < 2 degenerates to plain Holt and is rejected; use Holt directly.
type HoltWinters struct {
	Alpha, Beta, Gamma float64
	Period             int
	Method             SeasonalMethod

	level, trend float64
	season       []float64
	fitted       []float64
	residuals    []float64
	sigma        float64
	isFit        bool
}

func NewHoltWinters(alpha, beta, gamma float64, period int, method SeasonalMethod) (*HoltWinters, error) {
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("alpha %f must be in (0,1]: %w", alpha, ErrInvalidArgument)
	}
	if beta <= 0 || beta > 1 {
		return nil, fmt.Errorf("beta %f must be in (0,1]: %w", beta, ErrInvalidArgument)
	}
	if gamma <= 0 || gamma > 1 {
		return nil, fmt.Errorf("gamma %f must be in (0,1]: %w", gamma, ErrInvalidArgument)
	}
	if period < 2 {
		return nil, fmt.Errorf("season length %d must be >= 2: %w", period, ErrInvalidArgument)
	}
	return &HoltWinters{Alpha: alpha, Beta: beta, Gamma: gamma, Period: period, Method: method}, nil
}

func (m *HoltWinters) Name() string {
	if m.Method == SeasonalMultiplicative {
		return "HoltWintersMultiplicative"
	}
	return "HoltWintersAdditive"
}

func (m *HoltWinters) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 2*m.Period {
		return fmt.Errorf("holt-winters requires at least %d observations for period %d, got %d: %w", 2*m.Period, m.Period, len(y), ErrInsufficientData)
	}
	level, trend, season, fitted, residuals := holtWintersFit(y, m.Alpha, m.Beta, m.Gamma, m.Period, m.Method)
	m.level, m.trend, m.season = level, trend, season
	m.fitted, m.residuals = fitted, residuals
	m.sigma = residualStdDev(residuals)
	m.isFit = true
	return nil
}

func (m *HoltWinters) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	point := make([]float64, h)
	for k := 0; k < h; k++ {
		seasonIdx := k % m.Period
		trendComponent := m.level + float64(k+1)*m.trend
		if m.Method == SeasonalMultiplicative {
			point[k] = trendComponent * m.season[seasonIdx]
		} else {
			point[k] = trendComponent + m.season[seasonIdx]
		}
	}
	return series.NewForecast(point), nil
}

func (m *HoltWinters) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
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

func (m *HoltWinters) FittedValues() []float64 { return m.fitted }
func (m *HoltWinters) Residuals() []float64    { return m.residuals }

// holtWintersFit seeds level with the mean of the first period, trend with
// the average first-period-to-second-period slope, and the seasonal indices
// from the first period's deviation from that mean.
func holtWintersFit(y []float64, alpha, beta, gamma float64, period int, method SeasonalMethod) (level, trend float64, season []float64, fitted, residuals []float64) {
	n := len(y)
	firstMean := mean(y[:period])
	secondMean := mean(y[period : 2*period])
	level = firstMean
	trend = (secondMean - firstMean) / float64(period)

	season = make([]float64, period)
	for i := 0; i < period; i++ {
		if method == SeasonalMultiplicative {
			if firstMean == 0 {
				season[i] = 1
			} else {
				season[i] = y[i] / firstMean
			}
		} else {
			season[i] = y[i] - firstMean
		}
	}

	fitted = make([]float64, n)
	residuals = make([]float64, n)
	for i := 0; i < period; i++ {
		fitted[i] = math.NaN()
		residuals[i] = math.NaN()
	}

	for i := period; i < n; i++ {
		seasonIdx := i % period
		var forecast float64
		if method == SeasonalMultiplicative {
			forecast = (level + trend) * season[seasonIdx]
		} else {
			forecast = level + trend + season[seasonIdx]
		}
		fitted[i] = forecast
		residuals[i] = y[i] - forecast

		prevLevel := level
		if method == SeasonalMultiplicative {
			var levelInput float64
			if season[seasonIdx] != 0 {
				levelInput = y[i] / season[seasonIdx]
			}
			level = alpha*levelInput + (1-alpha)*(prevLevel+trend)
			trend = beta*(level-prevLevel) + (1-beta)*trend
			if prevLevel+trend != 0 {
				season[seasonIdx] = gamma*(y[i]/(prevLevel+trend)) + (1-gamma)*season[seasonIdx]
			}
		} else {
			level = alpha*(y[i]-season[seasonIdx]) + (1-alpha)*(prevLevel+trend)
			trend = beta*(level-prevLevel) + (1-beta)*trend
			season[seasonIdx] = gamma*(y[i]-level) + (1-gamma)*season[seasonIdx]
		}
	}
	return level, trend, season, fitted, residuals
}

func holtWintersSSE(y []float64, alpha, beta, gamma float64, period int, method SeasonalMethod) float64 {
	_, _, _, _, residuals := holtWintersFit(y, alpha, beta, gamma, period, method)
	var sse float64
	for _, r := range residuals {
		if math.IsNaN(r) {
			continue
		}
		sse += r * r
	}
	return sse
}

// HoltWintersOptimized optimizes alpha, beta, gamma jointly by minimizing
// in-sample squared error.
type HoltWintersOptimized struct {
	Period int
	Method SeasonalMethod

	inner *HoltWinters
}

func NewHoltWintersOptimized(period int, method SeasonalMethod) (*HoltWintersOptimized, error) {
	if period < 2 {
		return nil, fmt.Errorf("season length %d must be >= 2: %w", period, ErrInvalidArgument)
	}
	return &HoltWintersOptimized{Period: period, Method: method}, nil
}

func (m *HoltWintersOptimized) Name() string {
	if m.Method == SeasonalMultiplicative {
		return "SeasonalESOptimizedMultiplicative"
	}
	return "SeasonalESOptimized"
}

func (m *HoltWintersOptimized) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 2*m.Period {
		return fmt.Errorf("seasonal-es-optimized requires at least %d observations for period %d, got %d: %w", 2*m.Period, m.Period, len(y), ErrInsufficientData)
	}

	opt := numeric.NewDefaultNelderMeadOptions()
	opt.Lower = []float64{0.01, 0.01, 0.01}
	opt.Upper = []float64{0.99, 0.99, 0.99}
	result, err := numeric.NelderMead(func(x []float64) float64 {
		return holtWintersSSE(y, x[0], x[1], x[2], m.Period, m.Method)
	}, []float64{0.3, 0.1, 0.1}, opt)
	if err != nil {
		return fmt.Errorf("seasonal-es-optimized parameter search failed: %w", ErrNumericalFailure)
	}

	inner, err := NewHoltWinters(result.X[0], result.X[1], result.X[2], m.Period, m.Method)
	if err != nil {
		return err
	}
	if err := inner.Fit(ts); err != nil {
		return err
	}
	m.inner = inner
	return nil
}

func (m *HoltWintersOptimized) Predict(h int) (*series.Forecast, error) {
	if m.inner == nil {
		return nil, ErrNotFitted
	}
	return m.inner.Predict(h)
}

func (m *HoltWintersOptimized) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if m.inner == nil {
		return nil, ErrNotFitted
	}
	return m.inner.PredictWithConfidence(h, coverage)
}

func (m *HoltWintersOptimized) FittedValues() []float64 { return m.inner.FittedValues() }
func (m *HoltWintersOptimized) Residuals() []float64    { return m.inner.Residuals() }
