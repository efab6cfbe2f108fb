package model

import (
	"fmt"
	"math"

	gmat "gonum.org/v1/gonum/mat"

	localmat "github.com/nilsson-quant/tsforecast/mat"
	"github.com/nilsson-quant/tsforecast/models"
	"github.com/nilsson-quant/tsforecast/series"
)

// ARIMA is a seasonal ARIMA(p,d,q)(P,D,Q,s) model fit by the Hannan-Rissanen
// two-step procedure: a long autoregression estimates an innovations proxy,
// then ordinary least squares regresses the differenced series on its own
// lags and the lagged innovations to recover the AR and MA coefficients.
// ARIMAX accepts an additional exogenous design matrix via FitExog/PredictExog.
type ARIMA struct {
	P, D, Q                      int
	SeasonalP, SeasonalD, SeasonalQ int
	SeasonPeriod                 int
	Intercept                    bool

	arLags, maLags []int
	coef           []float64
	intercept      float64
	exogCoef       []float64

	diffHistory []float64 // differenced (stationary) series
	lastLevels  []float64 // tail of the original series, length D*s+d, for un-differencing
	innovations []float64 // long-AR residual proxy aligned with diffHistory
	residuals   []float64
	fitted      []float64
	sigma       float64
	logLik      float64
	n           int
	isFit       bool
}

func NewARIMA(p, d, q, seasonalP, seasonalD, seasonalQ, period int, intercept bool) (*ARIMA, error) {
	if p < 0 || d < 0 || q < 0 || seasonalP < 0 || seasonalD < 0 || seasonalQ < 0 {
		return nil, fmt.Errorf("arima orders must be non-negative: %w", ErrInvalidArgument)
	}
	if (seasonalP > 0 || seasonalD > 0 || seasonalQ > 0) && period < 2 {
		return nil, fmt.Errorf("season period %d must be >= 2 when seasonal orders are set: %w", period, ErrInvalidArgument)
	}
	return &ARIMA{P: p, D: d, Q: q, SeasonalP: seasonalP, SeasonalD: seasonalD, SeasonalQ: seasonalQ, SeasonPeriod: period, Intercept: intercept}, nil
}

func (m *ARIMA) Name() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)(%d,%d,%d)[%d]", m.P, m.D, m.Q, m.SeasonalP, m.SeasonalD, m.SeasonalQ, m.SeasonPeriod)
}

func difference(y []float64, d int) []float64 {
	out := append([]float64(nil), y...)
	for i := 0; i < d; i++ {
		next := make([]float64, len(out)-1)
		for j := 1; j < len(out); j++ {
			next[j-1] = out[j] - out[j-1]
		}
		out = next
	}
	return out
}

func seasonalDifference(y []float64, D, period int) []float64 {
	out := append([]float64(nil), y...)
	for i := 0; i < D; i++ {
		if len(out) <= period {
			break
		}
		next := make([]float64, len(out)-period)
		for j := period; j < len(out); j++ {
			next[j-period] = out[j] - out[j-period]
		}
		out = next
	}
	return out
}

func (m *ARIMA) Fit(ts *series.Series) error {
	return m.fit(ts, nil)
}

// FitExog fits an ARIMAX variant with a historical exogenous design matrix
// of row count equal to the training series length.
func (m *ARIMA) FitExog(ts *series.Series, xHist gmat.Matrix) error {
	return m.fit(ts, xHist)
}

func (m *ARIMA) fit(ts *series.Series, xHist gmat.Matrix) error {
	y := ts.Univariate()
	minLen := m.D*m.SeasonalP + m.P + m.Q + m.SeasonalP*m.SeasonPeriod + m.SeasonalQ*m.SeasonPeriod + m.D + m.SeasonalD*m.SeasonPeriod + 10
	if len(y) < minLen {
		return fmt.Errorf("arima requires at least %d observations for this order, got %d: %w", minLen, len(y), ErrInsufficientData)
	}

	w := seasonalDifference(difference(y, m.D), m.SeasonalD, m.SeasonPeriod)
	if len(w) < m.P+m.Q+5 {
		return fmt.Errorf("arima differencing left too few observations: %w", ErrInsufficientData)
	}

	m.arLags = buildLagSet(m.P, m.SeasonalP, m.SeasonPeriod)
	m.maLags = buildLagSet(m.Q, m.SeasonalQ, m.SeasonPeriod)

	longOrder := maxInt(m.P+m.SeasonalP*m.SeasonPeriod, m.Q+m.SeasonalQ*m.SeasonPeriod) + 5
	if longOrder >= len(w) {
		longOrder = len(w) - 2
	}
	if longOrder < 1 {
		longOrder = 1
	}
	innovations := longARResiduals(w, longOrder)

	maxLag := maxInt(maxOf(m.arLags), maxOf(m.maLags))
	start := maxLag
	if start < longOrder {
		start = longOrder
	}
	if start >= len(w) {
		return fmt.Errorf("arima order leaves no usable observations after lagging: %w", ErrInsufficientData)
	}

	nObs := len(w) - start
	nExog := 0
	if xHist != nil {
		_, nExog = xHist.Dims()
	}
	nFeat := len(m.arLags) + len(m.maLags) + nExog
	rows := make([][]float64, nObs)
	target := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		t := start + i
		row := make([]float64, 0, nFeat)
		for _, lag := range m.arLags {
			row = append(row, w[t-lag])
		}
		for _, lag := range m.maLags {
			row = append(row, innovations[t-lag])
		}
		for j := 0; j < nExog; j++ {
			row = append(row, xHist.At(t, j))
		}
		rows[i] = row
		target[i] = w[t]
	}

	designRaw, err := gmatFromRows(rows)
	if err != nil {
		return fmt.Errorf("arima failed to build design matrix: %w", ErrNumericalFailure)
	}
	targetMx := gmat.NewDense(nObs, 1, target)

	ols, err := models.NewOLSRegression(&models.OLSOptions{FitIntercept: m.Intercept})
	if err != nil {
		return fmt.Errorf("arima regression setup failed: %w", ErrNumericalFailure)
	}
	if err := ols.Fit(designRaw, targetMx); err != nil {
		return fmt.Errorf("arima regression failed: %w", ErrNumericalFailure)
	}

	fittedVals, err := ols.Predict(designRaw)
	if err != nil {
		return fmt.Errorf("arima prediction over training data failed: %w", ErrNumericalFailure)
	}

	fullCoef := ols.Coef()
	m.coef = fullCoef[:len(m.arLags)+len(m.maLags)]
	if nExog > 0 {
		m.exogCoef = fullCoef[len(m.arLags)+len(m.maLags):]
	}
	m.intercept = ols.Intercept()

	m.residuals = make([]float64, nObs)
	for i := range fittedVals {
		m.residuals[i] = target[i] - fittedVals[i]
	}
	m.fitted = fittedVals
	m.sigma = residualStdDev(m.residuals)
	m.n = nObs
	m.logLik = gaussianLogLikelihood(m.residuals, m.sigma)

	m.diffHistory = w
	m.innovations = innovations

	tailLen := m.D + m.SeasonalD*m.SeasonPeriod
	if tailLen > len(y) {
		tailLen = len(y)
	}
	m.lastLevels = append([]float64(nil), y[len(y)-tailLen:]...)

	m.isFit = true
	return nil
}

func buildLagSet(order, seasonalOrder, period int) []int {
	set := map[int]struct{}{}
	for i := 1; i <= order; i++ {
		set[i] = struct{}{}
	}
	for i := 1; i <= seasonalOrder; i++ {
		set[i*period] = struct{}{}
	}
	lags := make([]int, 0, len(set))
	for l := range set {
		lags = append(lags, l)
	}
	// simple insertion sort, lag sets are tiny
	for i := 1; i < len(lags); i++ {
		for j := i; j > 0 && lags[j-1] > lags[j]; j-- {
			lags[j-1], lags[j] = lags[j], lags[j-1]
		}
	}
	return lags
}

func maxOf(xs []int) int {
	m := 0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// longARResiduals fits a high-order AR(order) model by OLS and returns
// residuals aligned with w, with leading zeros for the unobservable warm-up.
func longARResiduals(w []float64, order int) []float64 {
	n := len(w)
	residuals := make([]float64, n)
	if order >= n {
		return residuals
	}
	rows := make([][]float64, n-order)
	target := make([]float64, n-order)
	for i := order; i < n; i++ {
		row := make([]float64, order)
		for lag := 1; lag <= order; lag++ {
			row[lag-1] = w[i-lag]
		}
		rows[i-order] = row
		target[i-order] = w[i]
	}
	design, err := gmatFromRows(rows)
	if err != nil {
		return residuals
	}
	targetMx := gmat.NewDense(len(target), 1, target)
	ols, err := models.NewOLSRegression(&models.OLSOptions{FitIntercept: true})
	if err != nil {
		return residuals
	}
	if err := ols.Fit(design, targetMx); err != nil {
		return residuals
	}
	fittedVals, err := ols.Predict(design)
	if err != nil {
		return residuals
	}
	for i := range fittedVals {
		residuals[order+i] = target[i] - fittedVals[i]
	}
	return residuals
}

func gmatFromRows(rows [][]float64) (*gmat.Dense, error) {
	m, err := localmat.NewDenseFromArray(rows)
	if err != nil {
		return nil, fmt.Errorf("building design matrix: %w", err)
	}
	return m, nil
}

func (m *ARIMA) Predict(h int) (*series.Forecast, error) {
	return m.predict(h, nil)
}

// PredictExog forecasts an ARIMAX model h steps ahead given a future
// exogenous design matrix with h rows.
func (m *ARIMA) PredictExog(h int, xFuture gmat.Matrix) (*series.Forecast, error) {
	return m.predict(h, xFuture)
}

func (m *ARIMA) predict(h int, xFuture gmat.Matrix) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}

	w := append([]float64(nil), m.diffHistory...)
	innov := append([]float64(nil), m.innovations...)

	point := make([]float64, h)
	for k := 0; k < h; k++ {
		val := m.intercept
		for i, lag := range m.arLags {
			val += m.coef[i] * w[len(w)-lag]
		}
		for i, lag := range m.maLags {
			val += m.coef[len(m.arLags)+i] * innov[len(innov)-lag]
		}
		if xFuture != nil {
			for j := range m.exogCoef {
				val += m.exogCoef[j] * xFuture.At(k, j)
			}
		}
		w = append(w, val)
		innov = append(innov, 0) // future innovations assumed zero
		point[k] = val
	}

	undiffed := unDifference(point, m.lastLevels, m.D, m.SeasonalD, m.SeasonPeriod)
	return series.NewForecast(undiffed), nil
}

// unDifference reverses plain and seasonal differencing using the tail of
// the original series retained at fit time.
func unDifference(forecastDiff []float64, tail []float64, d, D, period int) []float64 {
	out := append([]float64(nil), forecastDiff...)

	if D > 0 && period >= 2 {
		history := append([]float64(nil), tail...)
		if len(history) > period*D {
			history = history[len(history)-period*D:]
		}
		for i := 0; i < D; i++ {
			undone := make([]float64, len(out))
			base := append([]float64(nil), history...)
			for k := range out {
				var prior float64
				if k-period >= 0 {
					prior = undone[k-period]
				} else if len(base)+k-period >= 0 && len(base)+k-period < len(base) {
					prior = base[len(base)+k-period]
				}
				undone[k] = out[k] + prior
			}
			out = undone
		}
	}

	if d > 0 {
		for i := 0; i < d; i++ {
			var last float64
			if len(tail) > 0 {
				last = tail[len(tail)-1]
			}
			undone := make([]float64, len(out))
			cum := last
			for k := range out {
				cum += out[k]
				undone[k] = cum
			}
			out = undone
		}
	}

	return out
}

func (m *ARIMA) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
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

func (m *ARIMA) FittedValues() []float64 { return m.fitted }
func (m *ARIMA) Residuals() []float64    { return m.residuals }

func (m *ARIMA) paramCount() int {
	k := len(m.arLags) + len(m.maLags) + len(m.exogCoef)
	if m.Intercept {
		k++
	}
	return k
}

func (m *ARIMA) AIC() (float64, bool) {
	if !m.isFit {
		return 0, false
	}
	return -2*m.logLik + 2*float64(m.paramCount()), true
}

func (m *ARIMA) BIC() (float64, bool) {
	if !m.isFit {
		return 0, false
	}
	return -2*m.logLik + float64(m.paramCount())*math.Log(float64(m.n)), true
}

func (m *ARIMA) LogLikelihood() (float64, bool) {
	if !m.isFit {
		return 0, false
	}
	return m.logLik, true
}

func (m *ARIMA) ParameterCount() (int, bool) {
	if !m.isFit {
		return 0, false
	}
	return m.paramCount(), true
}

// AutoARIMA searches a small grid of (p,d,q) orders (no seasonal component)
// and selects the lowest-AIC fit.
type AutoARIMA struct {
	MaxP, MaxD, MaxQ int

	best *ARIMA
}

func NewAutoARIMA(maxP, maxD, maxQ int) *AutoARIMA {
	return &AutoARIMA{MaxP: maxP, MaxD: maxD, MaxQ: maxQ}
}

func (m *AutoARIMA) Name() string { return "AutoARIMA" }

func (m *AutoARIMA) Fit(ts *series.Series) error {
	var best *ARIMA
	bestAIC := math.Inf(1)
	var lastErr error
	for d := 0; d <= m.MaxD; d++ {
		for p := 0; p <= m.MaxP; p++ {
			for q := 0; q <= m.MaxQ; q++ {
				if p == 0 && q == 0 {
					continue
				}
				cand, err := NewARIMA(p, d, q, 0, 0, 0, 0, true)
				if err != nil {
					continue
				}
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
		}
	}
	if best == nil {
		if lastErr != nil {
			return lastErr
		}
		return fmt.Errorf("no ARIMA candidate could be fit: %w", ErrNumericalFailure)
	}
	m.best = best
	return nil
}

func (m *AutoARIMA) Predict(h int) (*series.Forecast, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.Predict(h)
}

func (m *AutoARIMA) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.PredictWithConfidence(h, coverage)
}

func (m *AutoARIMA) FittedValues() []float64       { return m.best.FittedValues() }
func (m *AutoARIMA) Residuals() []float64          { return m.best.Residuals() }
func (m *AutoARIMA) AIC() (float64, bool)          { return m.best.AIC() }
func (m *AutoARIMA) BIC() (float64, bool)          { return m.best.BIC() }
func (m *AutoARIMA) LogLikelihood() (float64, bool) { return m.best.LogLikelihood() }
func (m *AutoARIMA) ParameterCount() (int, bool)    { return m.best.ParameterCount() }
func (m *AutoARIMA) SelectedModel() string          { return m.best.Name() }
