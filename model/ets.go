package model

import (
	"fmt"
	"math"

	"github.com/nilsson-quant/tsforecast/numeric"
	"github.com/nilsson-quant/tsforecast/series"
)

// ETSErrorType, ETSTrendType, and ETSSeasonType name the component kinds of
// an exponential smoothing state-space model, following the conventional
// (Error, Trend, Season) triple notation: N = none, A = additive,
// Ad = additive damped, M = multiplicative.
type ETSErrorType int
type ETSTrendType int
type ETSSeasonType int

const (
	ETSErrorAdditive ETSErrorType = iota
	ETSErrorMultiplicative
)

const (
	ETSTrendNone ETSTrendType = iota
	ETSTrendAdditive
	ETSTrendAdditiveDamped
)

const (
	ETSSeasonNone ETSSeasonType = iota
	ETSSeasonAdditive
	ETSSeasonMultiplicative
)

// ETS is the state-space exponential smoothing model parameterized by the
// (Error, Trend, Season) triple. Fit optimizes the smoothing parameters
// (and initial states implicitly, via the Holt-Winters-style seeding) by
// minimizing one-step squared residuals, then reports a Gaussian-likelihood
// AIC/BIC using the optimized parameter count.
type ETS struct {
	Error  ETSErrorType
	Trend  ETSTrendType
	Season ETSSeasonType
	Period int

	alpha, beta, gamma, phi float64
	level, trend            float64
	season                  []float64
	fitted                  []float64
	residuals               []float64
	sigma                   float64
	logLik                  float64
	paramCount              int
	n                       int
	isFit                   bool
}

func NewETS(errorType ETSErrorType, trend ETSTrendType, season ETSSeasonType, period int) (*ETS, error) {
	if season != ETSSeasonNone && period < 2 {
		return nil, fmt.Errorf("season length %d must be >= 2 for a seasonal model: %w", period, ErrInvalidArgument)
	}
	return &ETS{Error: errorType, Trend: trend, Season: season, Period: period}, nil
}

func (m *ETS) Name() string {
	e, t, s := "A", "N", "N"
	if m.Error == ETSErrorMultiplicative {
		e = "M"
	}
	switch m.Trend {
	case ETSTrendAdditive:
		t = "A"
	case ETSTrendAdditiveDamped:
		t = "Ad"
	}
	switch m.Season {
	case ETSSeasonAdditive:
		s = "A"
	case ETSSeasonMultiplicative:
		s = "M"
	}
	return fmt.Sprintf("ETS(%s,%s,%s)", e, t, s)
}

func (m *ETS) minObservations() int {
	if m.Season != ETSSeasonNone {
		return 2 * m.Period
	}
	if m.Trend != ETSTrendNone {
		return 2
	}
	return 1
}

func (m *ETS) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < m.minObservations() {
		return fmt.Errorf("ets requires at least %d observations, got %d: %w", m.minObservations(), len(y), ErrInsufficientData)
	}

	freeDims, x0, lower, upper := m.parameterSpace()
	opt := numeric.NewDefaultNelderMeadOptions()
	opt.Lower = lower
	opt.Upper = upper

	var result *numeric.NelderMeadResult
	var err error
	if freeDims > 0 {
		result, err = numeric.NelderMead(func(x []float64) float64 {
			return m.sse(y, x)
		}, x0, opt)
		if err != nil {
			return fmt.Errorf("ets parameter search failed: %w", ErrNumericalFailure)
		}
	} else {
		result = &numeric.NelderMeadResult{X: x0}
	}

	alpha, beta, gamma, phi := m.unpack(result.X)
	level, trend, season, fitted, residuals := m.runFilter(y, alpha, beta, gamma, phi)

	m.alpha, m.beta, m.gamma, m.phi = alpha, beta, gamma, phi
	m.level, m.trend, m.season = level, trend, season
	m.fitted, m.residuals = fitted, residuals
	m.sigma = residualStdDev(residuals)
	m.n = len(y)
	m.paramCount = m.computeParameterCount()
	m.logLik = gaussianLogLikelihood(residuals, m.sigma)
	m.isFit = true
	return nil
}

// parameterSpace returns the free optimization dimensions in order
// (alpha, beta?, gamma?, phi?) along with an initial guess and bounds.
func (m *ETS) parameterSpace() (dims int, x0, lower, upper []float64) {
	x0 = []float64{0.3}
	lower = []float64{0.01}
	upper = []float64{0.99}
	if m.Trend != ETSTrendNone {
		x0 = append(x0, 0.1)
		lower = append(lower, 0.01)
		upper = append(upper, 0.99)
	}
	if m.Season != ETSSeasonNone {
		x0 = append(x0, 0.1)
		lower = append(lower, 0.01)
		upper = append(upper, 0.99)
	}
	if m.Trend == ETSTrendAdditiveDamped {
		x0 = append(x0, 0.95)
		lower = append(lower, 0.8)
		upper = append(upper, 0.99)
	}
	return len(x0), x0, lower, upper
}

func (m *ETS) unpack(x []float64) (alpha, beta, gamma, phi float64) {
	phi = 1
	idx := 0
	alpha = x[idx]
	idx++
	if m.Trend != ETSTrendNone {
		beta = x[idx]
		idx++
	}
	if m.Season != ETSSeasonNone {
		gamma = x[idx]
		idx++
	}
	if m.Trend == ETSTrendAdditiveDamped {
		phi = x[idx]
	}
	return
}

func (m *ETS) computeParameterCount() int {
	k := 1 // level
	k++    // alpha
	if m.Trend != ETSTrendNone {
		k += 2 // trend state + beta
	}
	if m.Trend == ETSTrendAdditiveDamped {
		k++ // phi
	}
	if m.Season != ETSSeasonNone {
		k += m.Period + 1 // season_length states + gamma
	}
	return k
}

func (m *ETS) sse(y []float64, x []float64) float64 {
	alpha, beta, gamma, phi := m.unpack(x)
	_, _, _, _, residuals := m.runFilter(y, alpha, beta, gamma, phi)
	var sse float64
	for _, r := range residuals {
		if math.IsNaN(r) {
			continue
		}
		sse += r * r
	}
	return sse
}

// runFilter seeds the level/trend/season states using the same scheme as
// Holt-Winters, then iterates the single-source-of-error recursion with
// additive or multiplicative combination per the configured component types.
func (m *ETS) runFilter(y []float64, alpha, beta, gamma, phi float64) (level, trend float64, season, fitted, residuals []float64) {
	n := len(y)
	hasTrend := m.Trend != ETSTrendNone
	hasSeason := m.Season != ETSSeasonNone

	start := 1
	if hasSeason {
		start = m.Period
		firstMean := mean(y[:m.Period])
		secondMean := firstMean
		if n >= 2*m.Period {
			secondMean = mean(y[m.Period : 2*m.Period])
		}
		level = firstMean
		if hasTrend {
			trend = (secondMean - firstMean) / float64(m.Period)
		}
		season = make([]float64, m.Period)
		for i := 0; i < m.Period; i++ {
			if m.Season == ETSSeasonMultiplicative {
				if firstMean == 0 {
					season[i] = 1
				} else {
					season[i] = y[i] / firstMean
				}
			} else {
				season[i] = y[i] - firstMean
			}
		}
	} else {
		level = y[0]
		if hasTrend && n > 1 {
			trend = y[1] - y[0]
			start = 1
		}
	}

	fitted = make([]float64, n)
	residuals = make([]float64, n)
	for i := 0; i < start; i++ {
		fitted[i] = math.NaN()
		residuals[i] = math.NaN()
	}

	for i := start; i < n; i++ {
		seasonIdx := 0
		if hasSeason {
			seasonIdx = i % m.Period
		}

		trendTerm := level
		if hasTrend {
			trendTerm = level + phi*trend
		}

		var forecast float64
		switch {
		case hasSeason && m.Season == ETSSeasonMultiplicative:
			forecast = trendTerm * season[seasonIdx]
		case hasSeason:
			forecast = trendTerm + season[seasonIdx]
		default:
			forecast = trendTerm
		}

		var errTerm float64
		if m.Error == ETSErrorMultiplicative && forecast != 0 {
			errTerm = (y[i] - forecast) / forecast
		} else {
			errTerm = y[i] - forecast
		}

		fitted[i] = forecast
		residuals[i] = y[i] - forecast

		prevTrendVal := trend
		switch {
		case m.Error == ETSErrorMultiplicative:
			level = trendTerm * (1 + alpha*errTerm)
			if hasTrend {
				trend = phi*prevTrendVal + beta*trendTerm*errTerm
			}
			if hasSeason {
				season[seasonIdx] = season[seasonIdx] * (1 + gamma*errTerm)
			}
		default:
			level = trendTerm + alpha*errTerm
			if hasTrend {
				trend = phi*prevTrendVal + beta*(level-trendTerm)
			}
			if hasSeason {
				season[seasonIdx] = season[seasonIdx] + gamma*errTerm
			}
		}
	}
	return level, trend, season, fitted, residuals
}

func (m *ETS) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	point := make([]float64, h)
	phiSum := 0.0
	phiPow := m.phi
	for k := 0; k < h; k++ {
		var trendTerm float64
		if m.Trend != ETSTrendNone {
			if m.Trend == ETSTrendAdditiveDamped {
				phiSum += phiPow
				phiPow *= m.phi
				trendTerm = m.level + phiSum*m.trend
			} else {
				trendTerm = m.level + float64(k+1)*m.trend
			}
		} else {
			trendTerm = m.level
		}
		if m.Season != ETSSeasonNone {
			seasonIdx := k % m.Period
			if m.Season == ETSSeasonMultiplicative {
				point[k] = trendTerm * m.season[seasonIdx]
			} else {
				point[k] = trendTerm + m.season[seasonIdx]
			}
		} else {
			point[k] = trendTerm
		}
	}
	return series.NewForecast(point), nil
}

func (m *ETS) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
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

func (m *ETS) FittedValues() []float64 { return m.fitted }
func (m *ETS) Residuals() []float64    { return m.residuals }

func (m *ETS) AIC() (float64, bool) {
	if !m.isFit {
		return 0, false
	}
	return -2*m.logLik + 2*float64(m.paramCount), true
}

func (m *ETS) BIC() (float64, bool) {
	if !m.isFit {
		return 0, false
	}
	return -2*m.logLik + float64(m.paramCount)*math.Log(float64(m.n)), true
}

func (m *ETS) LogLikelihood() (float64, bool) {
	if !m.isFit {
		return 0, false
	}
	return m.logLik, true
}

func (m *ETS) ParameterCount() (int, bool) {
	if !m.isFit {
		return 0, false
	}
	return m.paramCount, true
}

// gaussianLogLikelihood computes the concentrated Gaussian log-likelihood of
// the finite one-step residuals given their own sample variance.
func gaussianLogLikelihood(residuals []float64, sigma float64) float64 {
	var n int
	for _, r := range residuals {
		if !math.IsNaN(r) {
			n++
		}
	}
	if n == 0 || sigma == 0 {
		return 0
	}
	variance := sigma * sigma
	return -0.5 * float64(n) * (math.Log(2*math.Pi*variance) + 1)
}

// AutoETS fits every (error, trend, season) combination compatible with the
// requested period and picks the one with the lowest AIC.
type AutoETS struct {
	Period int

	best *ETS
}

func NewAutoETS(period int) *AutoETS { return &AutoETS{Period: period} }

func (m *AutoETS) Name() string { return "AutoETS" }

func (m *AutoETS) candidates() []*ETS {
	errors := []ETSErrorType{ETSErrorAdditive, ETSErrorMultiplicative}
	trends := []ETSTrendType{ETSTrendNone, ETSTrendAdditive, ETSTrendAdditiveDamped}
	seasons := []ETSSeasonType{ETSSeasonNone}
	if m.Period >= 2 {
		seasons = append(seasons, ETSSeasonAdditive, ETSSeasonMultiplicative)
	}

	var out []*ETS
	for _, e := range errors {
		for _, t := range trends {
			for _, s := range seasons {
				cand, err := NewETS(e, t, s, m.Period)
				if err != nil {
					continue
				}
				out = append(out, cand)
			}
		}
	}
	return out
}

func (m *AutoETS) Fit(ts *series.Series) error {
	var best *ETS
	var bestAIC = math.Inf(1)
	var lastErr error
	for _, cand := range m.candidates() {
		if err := cand.Fit(ts); err != nil {
			lastErr = err
			continue
		}
		aic, ok := cand.AIC()
		if !ok || math.IsNaN(aic) || math.IsInf(aic, 0) {
			continue
		}
		if aic < bestAIC {
			bestAIC = aic
			best = cand
		}
	}
	if best == nil {
		if lastErr != nil {
			return lastErr
		}
		return fmt.Errorf("no ETS candidate could be fit: %w", ErrNumericalFailure)
	}
	m.best = best
	return nil
}

func (m *AutoETS) Predict(h int) (*series.Forecast, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.Predict(h)
}

func (m *AutoETS) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.PredictWithConfidence(h, coverage)
}

func (m *AutoETS) FittedValues() []float64 { return m.best.FittedValues() }
func (m *AutoETS) Residuals() []float64    { return m.best.Residuals() }
func (m *AutoETS) AIC() (float64, bool)    { return m.best.AIC() }
func (m *AutoETS) BIC() (float64, bool)    { return m.best.BIC() }
func (m *AutoETS) LogLikelihood() (float64, bool)  { return m.best.LogLikelihood() }
func (m *AutoETS) ParameterCount() (int, bool)     { return m.best.ParameterCount() }
func (m *AutoETS) SelectedModel() string           { return m.best.Name() }
