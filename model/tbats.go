package model

import (
	"fmt"
	"math"

	gmat "gonum.org/v1/gonum/mat"

	"github.com/nilsson-quant/tsforecast/models"
	"github.com/nilsson-quant/tsforecast/series"
	"github.com/nilsson-quant/tsforecast/transform"
)

// TBATSOptions configures the Box-Cox-transformed trigonometric seasonal
// state-space model: FourierTerms maps a seasonal period to the number of
// sine/cosine harmonic pairs used to represent it.
type TBATSOptions struct {
	SeasonalPeriods []int
	FourierTerms    map[int]int
	UseBoxCox       bool
}

func NewDefaultTBATSOptions(periods []int) *TBATSOptions {
	terms := make(map[int]int, len(periods))
	for _, p := range periods {
		k := p / 2
		if k < 1 {
			k = 1
		}
		if k > 5 {
			k = 5
		}
		terms[p] = k
	}
	return &TBATSOptions{SeasonalPeriods: periods, FourierTerms: terms, UseBoxCox: true}
}

func (o *TBATSOptions) validate() error {
	for _, p := range o.SeasonalPeriods {
		if p < 2 {
			return fmt.Errorf("seasonal period %d must be >= 2: %w", p, ErrInvalidArgument)
		}
	}
	return nil
}

// TBATS fits a linear trend plus trigonometric (Fourier) seasonal terms for
// each configured period by OLS on an optionally Box-Cox-transformed series,
// then fits a single AR(1) coefficient on the regression residual to absorb
// short-range autocorrelation the harmonics miss.
type TBATS struct {
	Options *TBATSOptions

	boxcox    *transform.BoxCox
	intercept float64
	slope     float64
	fourier   map[int][]float64 // period -> [sin1,cos1,sin2,cos2,...]
	arCoef    float64
	fitted    []float64
	residuals []float64
	sigma     float64
	logLik    float64
	n         int
	isFit     bool
}

func NewTBATS(opt *TBATSOptions) (*TBATS, error) {
	if opt == nil || len(opt.SeasonalPeriods) == 0 {
		return nil, fmt.Errorf("tbats requires at least one seasonal period: %w", ErrInvalidArgument)
	}
	if err := opt.validate(); err != nil {
		return nil, err
	}
	return &TBATS{Options: opt}, nil
}

func (m *TBATS) Name() string { return "TBATS" }

func (m *TBATS) Fit(ts *series.Series) error {
	y := ts.Univariate()
	minLen := 2 * minPeriod(m.Options.SeasonalPeriods)
	if len(y) < minLen {
		return fmt.Errorf("tbats requires at least %d observations, got %d: %w", minLen, len(y), ErrInsufficientData)
	}

	working := append([]float64(nil), y...)
	if m.Options.UseBoxCox {
		bc := transform.NewBoxCoxFitted()
		if err := bc.Fit(working); err != nil {
			return fmt.Errorf("tbats box-cox fit failed: %w", ErrNumericalFailure)
		}
		if err := bc.Transform(working); err != nil {
			return fmt.Errorf("tbats box-cox transform failed: %w", ErrNumericalFailure)
		}
		m.boxcox = bc
	}

	n := len(working)
	rows := make([][]float64, n)
	nFeat := 1
	for _, p := range m.Options.SeasonalPeriods {
		nFeat += 2 * m.Options.FourierTerms[p]
	}
	for i := 0; i < n; i++ {
		row := make([]float64, 0, nFeat)
		row = append(row, float64(i))
		for _, p := range m.Options.SeasonalPeriods {
			k := m.Options.FourierTerms[p]
			for j := 1; j <= k; j++ {
				angle := 2 * math.Pi * float64(j) * float64(i) / float64(p)
				row = append(row, math.Sin(angle), math.Cos(angle))
			}
		}
		rows[i] = row
	}
	design, err := gmatFromRows(rows)
	if err != nil {
		return fmt.Errorf("tbats design matrix failed: %w", ErrNumericalFailure)
	}
	target := gmat.NewDense(n, 1, working)

	ols, err := models.NewOLSRegression(&models.OLSOptions{FitIntercept: true})
	if err != nil {
		return fmt.Errorf("tbats regression setup failed: %w", ErrNumericalFailure)
	}
	if err := ols.Fit(design, target); err != nil {
		return fmt.Errorf("tbats regression failed: %w", ErrNumericalFailure)
	}
	regressionFitted, err := ols.Predict(design)
	if err != nil {
		return fmt.Errorf("tbats prediction over training data failed: %w", ErrNumericalFailure)
	}

	coef := ols.Coef()
	m.intercept = ols.Intercept()
	m.slope = coef[0]
	m.fourier = make(map[int][]float64, len(m.Options.SeasonalPeriods))
	idx := 1
	for _, p := range m.Options.SeasonalPeriods {
		k := m.Options.FourierTerms[p]
		m.fourier[p] = append([]float64(nil), coef[idx:idx+2*k]...)
		idx += 2 * k
	}

	regressionResiduals := make([]float64, n)
	for i := range working {
		regressionResiduals[i] = working[i] - regressionFitted[i]
	}
	m.arCoef = fitAR1(regressionResiduals)

	m.fitted = make([]float64, n)
	m.residuals = make([]float64, n)
	m.fitted[0] = math.NaN()
	m.residuals[0] = math.NaN()
	for i := 1; i < n; i++ {
		pred := regressionFitted[i] + m.arCoef*regressionResiduals[i-1]
		m.fitted[i] = pred
		m.residuals[i] = working[i] - pred
	}
	m.sigma = residualStdDev(m.residuals)
	m.n = n
	m.logLik = gaussianLogLikelihood(m.residuals, m.sigma)
	m.isFit = true
	return nil
}

// fitAR1 estimates the lag-1 autoregressive coefficient by the Yule-Walker
// ratio sum(r_t r_{t-1}) / sum(r_{t-1}^2).
func fitAR1(r []float64) float64 {
	var num, den float64
	for i := 1; i < len(r); i++ {
		num += r[i] * r[i-1]
		den += r[i-1] * r[i-1]
	}
	if den == 0 {
		return 0
	}
	coef := num / den
	if coef > 0.98 {
		coef = 0.98
	}
	if coef < -0.98 {
		coef = -0.98
	}
	return coef
}

func (m *TBATS) Predict(h int) (*series.Forecast, error) {
	if !m.isFit {
		return nil, ErrNotFitted
	}
	if h < 0 {
		return nil, fmt.Errorf("horizon %d must be >= 0: %w", h, ErrInvalidArgument)
	}
	lastResidual := m.residuals[len(m.residuals)-1]
	if math.IsNaN(lastResidual) {
		lastResidual = 0
	}

	point := make([]float64, h)
	arDecay := m.arCoef
	for k := 0; k < h; k++ {
		t := m.n + k
		pred := m.intercept + m.slope*float64(t)
		for _, p := range m.Options.SeasonalPeriods {
			coefs := m.fourier[p]
			kTerms := len(coefs) / 2
			for j := 1; j <= kTerms; j++ {
				angle := 2 * math.Pi * float64(j) * float64(t) / float64(p)
				pred += coefs[2*(j-1)]*math.Sin(angle) + coefs[2*(j-1)+1]*math.Cos(angle)
			}
		}
		pred += lastResidual * math.Pow(arDecay, float64(k+1))
		point[k] = pred
	}

	if m.boxcox != nil {
		out := append([]float64(nil), point...)
		if err := m.boxcox.InverseTransform(out); err != nil {
			return nil, fmt.Errorf("tbats box-cox inverse failed: %w", ErrNumericalFailure)
		}
		point = out
	}
	return series.NewForecast(point), nil
}

func (m *TBATS) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
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

func (m *TBATS) FittedValues() []float64 { return m.fitted }
func (m *TBATS) Residuals() []float64    { return m.residuals }

func (m *TBATS) paramCount() int {
	k := 2 // level + trend
	for _, p := range m.Options.SeasonalPeriods {
		k += 2 * m.Options.FourierTerms[p]
	}
	k++ // ar coefficient
	if m.boxcox != nil {
		k++ // lambda
	}
	return k
}

func (m *TBATS) AIC() (float64, bool) {
	if !m.isFit {
		return 0, false
	}
	return -2*m.logLik + 2*float64(m.paramCount()), true
}

// AutoTBATS tries each seasonal period alone plus the full combination and
// keeps whichever configuration has the lowest AIC.
type AutoTBATS struct {
	SeasonalPeriods []int

	best *TBATS
}

func NewAutoTBATS(periods []int) *AutoTBATS { return &AutoTBATS{SeasonalPeriods: periods} }

func (m *AutoTBATS) Name() string { return "AutoTBATS" }

func (m *AutoTBATS) Fit(ts *series.Series) error {
	var candidates [][]int
	candidates = append(candidates, m.SeasonalPeriods)
	for _, p := range m.SeasonalPeriods {
		candidates = append(candidates, []int{p})
	}

	var best *TBATS
	bestAIC := math.Inf(1)
	var lastErr error
	for _, periods := range candidates {
		opt := NewDefaultTBATSOptions(periods)
		cand, err := NewTBATS(opt)
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
	if best == nil {
		if lastErr != nil {
			return lastErr
		}
		return fmt.Errorf("no tbats configuration could be fit: %w", ErrNumericalFailure)
	}
	m.best = best
	return nil
}

func (m *AutoTBATS) Predict(h int) (*series.Forecast, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.Predict(h)
}

func (m *AutoTBATS) PredictWithConfidence(h int, coverage float64) (*series.Forecast, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.PredictWithConfidence(h, coverage)
}

func (m *AutoTBATS) FittedValues() []float64 { return m.best.FittedValues() }
func (m *AutoTBATS) Residuals() []float64    { return m.best.Residuals() }
func (m *AutoTBATS) AIC() (float64, bool)    { return m.best.AIC() }
