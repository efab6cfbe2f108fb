package model

import (
	"fmt"
	"math"

	gmat "gonum.org/v1/gonum/mat"

	"github.com/nilsson-quant/tsforecast/models"
	"github.com/nilsson-quant/tsforecast/numeric"
	"github.com/nilsson-quant/tsforecast/series"
)

const defaultTheta = 2.0

// Theta decomposes a series into two theta-lines: theta1 is the ordinary
// least squares linear trend, theta2 is the detrended residual smoothed by
// SES. The forecast combines the two lines with weights (1/theta, (theta-1)/theta).
type Theta struct {
	ThetaParam float64

	intercept, slope float64
	sesLevel         float64
	fitted           []float64
	residuals        []float64
	sigma            float64
	n                int
	isFit            bool
}

func NewTheta(theta float64) (*Theta, error) {
	if theta <= 1 {
		return nil, fmt.Errorf("theta %f must be > 1: %w", theta, ErrInvalidArgument)
	}
	return &Theta{ThetaParam: theta}, nil
}

func NewDefaultTheta() *Theta {
	t, _ := NewTheta(defaultTheta)
	return t
}

func (m *Theta) Name() string { return "Theta" }

func (m *Theta) weights() (w1, w2 float64) {
	return 1 / m.ThetaParam, (m.ThetaParam - 1) / m.ThetaParam
}

// thetaDecompose fits the linear trend by OLS and SES-smooths the detrended
// series, returning everything needed to forecast and score the fit.
func thetaDecompose(y []float64) (intercept, slope float64, detrendedLevel float64, fitted, residuals []float64, err error) {
	n := len(y)
	rows := make([][]float64, n)
	for i := range y {
		rows[i] = []float64{float64(i)}
	}
	design, derr := gmatFromRows(rows)
	if derr != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("theta trend design matrix failed: %w", ErrNumericalFailure)
	}
	target := gmat.NewDense(n, 1, y)

	ols, oerr := models.NewOLSRegression(&models.OLSOptions{FitIntercept: true})
	if oerr != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("theta regression setup failed: %w", ErrNumericalFailure)
	}
	if ferr := ols.Fit(design, target); ferr != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("theta trend fit failed: %w", ErrNumericalFailure)
	}

	intercept = ols.Intercept()
	coef := ols.Coef()
	slope = 0
	if len(coef) > 0 {
		slope = coef[0]
	}

	detrended := make([]float64, n)
	for i := range y {
		detrended[i] = y[i] - (intercept + slope*float64(i))
	}
	level, sesFitted, _ := sesFit(detrended, 0.3)

	fitted = make([]float64, n)
	residuals = make([]float64, n)
	fitted[0] = math.NaN()
	residuals[0] = math.NaN()
	for i := 1; i < n; i++ {
		trendAt := intercept + slope*float64(i)
		fitted[i] = trendAt + sesFitted[i]
		residuals[i] = y[i] - fitted[i]
	}
	return intercept, slope, level, fitted, residuals, nil
}

func (m *Theta) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 3 {
		return fmt.Errorf("theta requires at least 3 observations: %w", ErrInsufficientData)
	}
	intercept, slope, level, fitted, residuals, err := thetaDecompose(y)
	if err != nil {
		return err
	}
	m.intercept, m.slope, m.sesLevel = intercept, slope, level
	m.fitted, m.residuals = fitted, residuals
	m.sigma = residualStdDev(residuals)
	m.n = len(y)
	m.isFit = true
	return nil
}

func (m *Theta) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	w1, w2 := m.weights()
	point := make([]float64, h)
	for k := 0; k < h; k++ {
		trendLine := m.intercept + m.slope*float64(m.n+k)
		point[k] = w1*trendLine + w2*(trendLine+m.sesLevel)
	}
	return series.NewForecast(point), nil
}

func (m *Theta) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
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

func (m *Theta) FittedValues() []float64 { return m.fitted }
func (m *Theta) Residuals() []float64    { return m.residuals }

func thetaSSE(y []float64, theta float64) float64 {
	intercept, slope, _, fitted, _, err := thetaDecompose(y)
	if err != nil {
		return math.Inf(1)
	}
	// score the same combination Predict uses: trend + (theta-1)/theta * SES part
	w2 := (theta - 1) / theta
	var sse float64
	for i := 1; i < len(y); i++ {
		trendAt := intercept + slope*float64(i)
		r := y[i] - (trendAt + w2*(fitted[i]-trendAt))
		sse += r * r
	}
	return sse
}

// OptimizedTheta minimizes in-sample error over theta in [1.1, 3].
type OptimizedTheta struct {
	inner *Theta
	theta float64
}

func NewOptimizedTheta() *OptimizedTheta { return &OptimizedTheta{} }

func (m *OptimizedTheta) Name() string { return "OptimizedTheta" }

func (m *OptimizedTheta) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < 3 {
		return fmt.Errorf("optimized theta requires at least 3 observations: %w", ErrInsufficientData)
	}
	opt := numeric.NewDefaultNelderMeadOptions()
	opt.Lower = []float64{1.1}
	opt.Upper = []float64{3}
	result, err := numeric.NelderMead(func(x []float64) float64 {
		return thetaSSE(y, x[0])
	}, []float64{2.0}, opt)
	if err != nil {
		return fmt.Errorf("optimized theta search failed: %w", ErrNumericalFailure)
	}
	inner, err := NewTheta(result.X[0])
	if err != nil {
		return err
	}
	if err := inner.Fit(ts); err != nil {
		return err
	}
	m.inner = inner
	m.theta = result.X[0]
	return nil
}

func (m *OptimizedTheta) Predict(h int) (*series.Forecast, error) {
	if m.inner == nil {
		return nil, ErrNotFitted
	}
	return m.inner.Predict(h)
}

func (m *OptimizedTheta) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if m.inner == nil {
		return nil, ErrNotFitted
	}
	return m.inner.PredictWithConfidence(h, coverage)
}

func (m *OptimizedTheta) FittedValues() []float64 { return m.inner.FittedValues() }
func (m *OptimizedTheta) Residuals() []float64    { return m.inner.Residuals() }
func (m *OptimizedTheta) Theta() float64          { return m.theta }

// DynamicTheta re-fits the decomposition on a trailing window of Window
// observations rather than the full history, so the trend line tracks
// recent behavior.
type DynamicTheta struct {
	ThetaParam float64
	Window     int

	inner *Theta
}

func NewDynamicTheta(theta float64, window int) (*DynamicTheta, error) {
	if theta <= 1 {
		return nil, fmt.Errorf("theta %f must be > 1: %w", theta, ErrInvalidArgument)
	}
	if window < 3 {
		return nil, fmt.Errorf("window %d must be >= 3: %w", window, ErrInvalidArgument)
	}
	return &DynamicTheta{ThetaParam: theta, Window: window}, nil
}

func (m *DynamicTheta) Name() string { return "DynamicTheta" }

func (m *DynamicTheta) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < m.Window {
		return fmt.Errorf("dynamic theta requires at least %d observations, got %d: %w", m.Window, len(y), ErrInsufficientData)
	}
	trailing := y[len(y)-m.Window:]
	windowSeries, err := series.NewUnivariate(ts.Times()[len(y)-m.Window:], trailing)
	if err != nil {
		return fmt.Errorf("dynamic theta window construction failed: %w", ErrNumericalFailure)
	}
	inner, err := NewTheta(m.ThetaParam)
	if err != nil {
		return err
	}
	if err := inner.Fit(windowSeries); err != nil {
		return err
	}
	m.inner = inner
	return nil
}

func (m *DynamicTheta) Predict(h int) (*series.Forecast, error) {
	if m.inner == nil {
		return nil, ErrNotFitted
	}
	return m.inner.Predict(h)
}

func (m *DynamicTheta) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if m.inner == nil {
		return nil, ErrNotFitted
	}
	return m.inner.PredictWithConfidence(h, coverage)
}

func (m *DynamicTheta) FittedValues() []float64 { return m.inner.FittedValues() }
func (m *DynamicTheta) Residuals() []float64    { return m.inner.Residuals() }

// DynamicOptimizedTheta combines trailing-window re-fitting with an
// optimized theta parameter searched on that same window.
type DynamicOptimizedTheta struct {
	Window int

	inner *OptimizedTheta
}

func NewDynamicOptimizedTheta(window int) (*DynamicOptimizedTheta, error) {
	if window < 3 {
		return nil, fmt.Errorf("window %d must be >= 3: %w", window, ErrInvalidArgument)
	}
	return &DynamicOptimizedTheta{Window: window}, nil
}

func (m *DynamicOptimizedTheta) Name() string { return "DynamicOptimizedTheta" }

func (m *DynamicOptimizedTheta) Fit(ts *series.Series) error {
	y := ts.Univariate()
	if len(y) < m.Window {
		return fmt.Errorf("dynamic optimized theta requires at least %d observations, got %d: %w", m.Window, len(y), ErrInsufficientData)
	}
	trailing := y[len(y)-m.Window:]
	windowSeries, err := series.NewUnivariate(ts.Times()[len(y)-m.Window:], trailing)
	if err != nil {
		return fmt.Errorf("dynamic optimized theta window construction failed: %w", ErrNumericalFailure)
	}
	inner := NewOptimizedTheta()
	if err := inner.Fit(windowSeries); err != nil {
		return err
	}
	m.inner = inner
	return nil
}

func (m *DynamicOptimizedTheta) Predict(h int) (*series.Forecast, error) {
	if m.inner == nil {
		return nil, ErrNotFitted
	}
	return m.inner.Predict(h)
}

func (m *DynamicOptimizedTheta) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if m.inner == nil {
		return nil, ErrNotFitted
	}
	return m.inner.PredictWithConfidence(h, coverage)
}

func (m *DynamicOptimizedTheta) FittedValues() []float64 { return m.inner.FittedValues() }
func (m *DynamicOptimizedTheta) Residuals() []float64    { return m.inner.Residuals() }

// AutoTheta fits Theta, OptimizedTheta, DynamicTheta, and
// DynamicOptimizedTheta and selects whichever has the lowest in-sample SSE.
// Ties favor the earlier candidate in that order.
type AutoTheta struct {
	Window int

	best     Forecaster
	bestName string
}

func NewAutoTheta(window int) *AutoTheta { return &AutoTheta{Window: window} }

func (m *AutoTheta) Name() string { return "AutoTheta" }

func (m *AutoTheta) Fit(ts *series.Series) error {
	type candidate struct {
		f    Forecaster
		name string
	}
	var candidates []candidate

	if t := NewDefaultTheta(); t.Fit(ts) == nil {
		candidates = append(candidates, candidate{t, "Theta"})
	}
	if ot := NewOptimizedTheta(); ot.Fit(ts) == nil {
		candidates = append(candidates, candidate{ot, "OptimizedTheta"})
	}
	if m.Window >= 3 {
		if dt, err := NewDynamicTheta(defaultTheta, m.Window); err == nil && dt.Fit(ts) == nil {
			candidates = append(candidates, candidate{dt, "DynamicTheta"})
		}
		if dot, err := NewDynamicOptimizedTheta(m.Window); err == nil && dot.Fit(ts) == nil {
			candidates = append(candidates, candidate{dot, "DynamicOptimizedTheta"})
		}
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no theta candidate could be fit: %w", ErrNumericalFailure)
	}

	bestSSE := math.Inf(1)
	var best candidate
	for _, c := range candidates {
		res, ok := c.f.(Residualer)
		if !ok {
			continue
		}
		var sse float64
		for _, r := range res.Residuals() {
			if math.IsNaN(r) {
				continue
			}
			sse += r * r
		}
		if sse < bestSSE {
			bestSSE = sse
			best = c
		}
	}
	if best.f == nil {
		best = candidates[0]
	}
	m.best = best.f
	m.bestName = best.name
	return nil
}

func (m *AutoTheta) Predict(h int) (*series.Forecast, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.Predict(h)
}

func (m *AutoTheta) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	if cp, ok := m.best.(ConfidencePredictor); ok {
		return cp.PredictWithConfidence(h, coverage)
	}
	return m.best.Predict(h)
}

func (m *AutoTheta) SelectedModel() string { return m.bestName }

// ThetaX extends Theta with exogenous regressors added as extra columns in
// the trend regression. Exogenous values for the forecast horizon must be
// supplied explicitly since they are not part of the fitted series.
type ThetaX struct {
	ThetaParam float64

	intercept, slope float64
	exogCoef         []float64
	sesLevel         float64
	n                int
	fitted           []float64
	residuals        []float64
	sigma            float64
	isFit            bool
}

func NewThetaX(theta float64) (*ThetaX, error) {
	if theta <= 1 {
		return nil, fmt.Errorf("theta %f must be > 1: %w", theta, ErrInvalidArgument)
	}
	return &ThetaX{ThetaParam: theta}, nil
}

func (m *ThetaX) Name() string { return "ThetaX" }

func (m *ThetaX) Fit(ts *series.Series, xHist gmat.Matrix) error {
	y := ts.Univariate()
	if len(y) < 3 {
		return fmt.Errorf("thetax requires at least 3 observations: %w", ErrInsufficientData)
	}
	n := len(y)
	_, nExog := 0, 0
	if xHist != nil {
		_, nExog = xHist.Dims()
	}

	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := []float64{float64(i)}
		for j := 0; j < nExog; j++ {
			row = append(row, xHist.At(i, j))
		}
		rows[i] = row
	}
	design, err := gmatFromRows(rows)
	if err != nil {
		return fmt.Errorf("thetax design matrix failed: %w", ErrNumericalFailure)
	}
	target := gmat.NewDense(n, 1, y)

	ols, err := models.NewOLSRegression(&models.OLSOptions{FitIntercept: true})
	if err != nil {
		return fmt.Errorf("thetax regression setup failed: %w", ErrNumericalFailure)
	}
	if err := ols.Fit(design, target); err != nil {
		return fmt.Errorf("thetax trend fit failed: %w", ErrNumericalFailure)
	}

	coef := ols.Coef()
	m.intercept = ols.Intercept()
	m.slope = coef[0]
	m.exogCoef = append([]float64(nil), coef[1:]...)

	detrended := make([]float64, n)
	for i := 0; i < n; i++ {
		trendAt := m.intercept + m.slope*float64(i)
		for j, c := range m.exogCoef {
			trendAt += c * xHist.At(i, j)
		}
		detrended[i] = y[i] - trendAt
	}
	level, sesFitted, _ := sesFit(detrended, 0.3)
	m.sesLevel = level
	m.n = n

	m.fitted = make([]float64, n)
	m.residuals = make([]float64, n)
	m.fitted[0] = math.NaN()
	m.residuals[0] = math.NaN()
	for i := 1; i < n; i++ {
		trendAt := m.intercept + m.slope*float64(i)
		for j, c := range m.exogCoef {
			trendAt += c * xHist.At(i, j)
		}
		m.fitted[i] = trendAt + sesFitted[i]
		m.residuals[i] = y[i] - m.fitted[i]
	}
	m.sigma = residualStdDev(m.residuals)
	m.isFit = true
	return nil
}

func (m *ThetaX) Predict(h int, xFuture gmat.Matrix) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	w1, w2 := 1/m.ThetaParam, (m.ThetaParam-1)/m.ThetaParam
	point := make([]float64, h)
	for k := 0; k < h; k++ {
		trendLine := m.intercept + m.slope*float64(m.n+k)
		if xFuture != nil {
			for j, c := range m.exogCoef {
				trendLine += c * xFuture.At(k, j)
			}
		}
		point[k] = w1*trendLine + w2*(trendLine+m.sesLevel)
	}
	return series.NewForecast(point), nil
}

func (m *ThetaX) FittedValues() []float64 { return m.fitted }
func (m *ThetaX) Residuals() []float64    { return m.residuals }
