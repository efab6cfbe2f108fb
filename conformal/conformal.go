// Package conformal implements distribution-free prediction intervals:
// residual-based calibration, interval construction around a point forecast,
// and coverage/width/Winkler evaluation of the result.
package conformal

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/nilsson-quant/tsforecast/metrics"
)

// Method selects how calibration turns residuals into a score.
type Method int

const (
	// Symmetric takes the (1-alpha) quantile of |residual| as both the lower
	// and upper score.
	Symmetric Method = iota
	// Asymmetric takes the alpha/2 and (1-alpha/2) quantiles of the signed
	// residual separately.
	Asymmetric
)

// Strategy selects how the calibration set is formed and maintained.
type Strategy int

const (
	// Split calibrates once from a fixed holdout residual set.
	Split Strategy = iota
	// CrossValidation calibrates from residuals pooled across CV folds; the
	// caller is responsible for supplying the pooled residual vector.
	CrossValidation
	// Adaptive calibrates from a residual window that UpdateAdaptive grows
	// and re-quantiles as new actuals arrive, nudging the effective alpha per
	// Gibbs & Candès-style adaptive conformal inference.
	Adaptive
)

// defaultAdaptiveGamma is the step size for the online alpha adjustment used
// by UpdateAdaptive: effectiveAlpha += gamma*(alpha - miscoverageIndicator).
const defaultAdaptiveGamma = 0.01

// ConformityProfile carries the per-alpha calibration result. Lower/upper
// score vectors are equal by absolute value under Symmetric calibration.
type ConformityProfile struct {
	Method   Method
	Strategy Strategy
	Gamma    float64

	lowerScore     map[float64]float64
	upperScore     map[float64]float64
	effectiveAlpha map[float64]float64
	residuals      []float64
}

// Alphas returns the calibrated miscoverage rates in ascending order.
func (p *ConformityProfile) Alphas() []float64 {
	out := make([]float64, 0, len(p.lowerScore))
	for a := range p.lowerScore {
		out = append(out, a)
	}
	sort.Float64s(out)
	return out
}

// Scores returns the (lower, upper) score for alpha and whether it was
// calibrated.
func (p *ConformityProfile) Scores(alpha float64) (lower, upper float64, ok bool) {
	lower, ok1 := p.lowerScore[alpha]
	upper, ok2 := p.upperScore[alpha]
	return lower, upper, ok1 && ok2
}

func quantile(p float64, sorted []float64) float64 {
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// Calibrate computes a conformity profile for each alpha in alphas from a
// vector of historical residuals (actual - forecast).
func Calibrate(residuals []float64, alphas []float64, method Method, strategy Strategy) (*ConformityProfile, error) {
	if len(residuals) == 0 {
		return nil, fmt.Errorf("calibration requires at least 1 residual: %w", ErrInsufficientData)
	}
	if len(alphas) == 0 {
		return nil, fmt.Errorf("at least one alpha must be supplied: %w", ErrInvalidArgument)
	}
	for _, r := range residuals {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("residual %v is not finite: %w", r, ErrInvalidArgument)
		}
	}
	for _, a := range alphas {
		if a <= 0 || a >= 1 {
			return nil, fmt.Errorf("alpha %f must be in (0,1): %w", a, ErrInvalidArgument)
		}
	}

	profile := &ConformityProfile{
		Method:         method,
		Strategy:       strategy,
		Gamma:          defaultAdaptiveGamma,
		lowerScore:     make(map[float64]float64, len(alphas)),
		upperScore:     make(map[float64]float64, len(alphas)),
		effectiveAlpha: make(map[float64]float64, len(alphas)),
		residuals:      append([]float64(nil), residuals...),
	}
	for _, a := range alphas {
		lo, hi := scoresAt(residuals, a, method)
		profile.lowerScore[a] = lo
		profile.upperScore[a] = hi
		profile.effectiveAlpha[a] = a
	}
	return profile, nil
}

// scoresAt computes the (lower, upper) score at alpha from residuals using
// method, without mutating residuals.
func scoresAt(residuals []float64, alpha float64, method Method) (lower, upper float64) {
	switch method {
	case Asymmetric:
		sorted := append([]float64(nil), residuals...)
		sort.Float64s(sorted)
		qLow := quantile(alpha/2, sorted)
		qHigh := quantile(1-alpha/2, sorted)
		return -qLow, qHigh
	default: // Symmetric
		abs := make([]float64, len(residuals))
		for i, r := range residuals {
			abs[i] = math.Abs(r)
		}
		sort.Float64s(abs)
		score := quantile(1-alpha, abs)
		return score, score
	}
}

// Apply produces (lower, upper) interval vectors for a forecast at alpha:
// lower[i] = forecast[i] - lowerScore, upper[i] = forecast[i] + upperScore.
func Apply(forecast []float64, profile *ConformityProfile, alpha float64) (lower, upper []float64, err error) {
	if profile == nil {
		return nil, nil, fmt.Errorf("profile must not be nil: %w", ErrInvalidArgument)
	}
	lo, hi, ok := profile.Scores(alpha)
	if !ok {
		return nil, nil, fmt.Errorf("alpha %f was not calibrated in this profile: %w", alpha, ErrInvalidArgument)
	}
	lower = make([]float64, len(forecast))
	upper = make([]float64, len(forecast))
	for i, f := range forecast {
		lower[i] = f - lo
		upper[i] = f + hi
	}
	return lower, upper, nil
}

// UpdateAdaptive folds a newly observed residual into an Adaptive profile,
// nudging alpha's effective level by gamma*(alpha - miscoverageIndicator) and
// re-quantiling from the (growing) residual history. It is a no-op error for
// profiles not calibrated with the Adaptive strategy.
func UpdateAdaptive(profile *ConformityProfile, alpha float64, observedResidual float64) error {
	if profile == nil {
		return fmt.Errorf("profile must not be nil: %w", ErrInvalidArgument)
	}
	if profile.Strategy != Adaptive {
		return fmt.Errorf("profile was not calibrated with the adaptive strategy: %w", ErrInvalidArgument)
	}
	lo, hi, ok := profile.Scores(alpha)
	if !ok {
		return fmt.Errorf("alpha %f was not calibrated in this profile: %w", alpha, ErrInvalidArgument)
	}

	miscovered := 0.0
	if observedResidual < -lo || observedResidual > hi {
		miscovered = 1.0
	}
	eff := profile.effectiveAlpha[alpha] + profile.Gamma*(alpha-miscovered)
	if eff < 1e-3 {
		eff = 1e-3
	}
	if eff > 1-1e-3 {
		eff = 1 - 1e-3
	}
	profile.effectiveAlpha[alpha] = eff

	profile.residuals = append(profile.residuals, observedResidual)
	newLo, newHi := scoresAt(profile.residuals, eff, profile.Method)
	profile.lowerScore[alpha] = newLo
	profile.upperScore[alpha] = newHi
	return nil
}

// EvaluationResult summarizes conformal interval accuracy at a fixed alpha.
type EvaluationResult struct {
	Coverage     float64
	ViolationRate float64
	MeanWidth    float64
	Winkler      float64
}

// Evaluate scores realized intervals against actuals at miscoverage alpha.
// Fails if lower/upper are mismatched in length, non-finite, or lower exceeds
// upper anywhere.
func Evaluate(actual, lower, upper []float64, alpha float64) (*EvaluationResult, error) {
	if len(actual) != len(lower) || len(actual) != len(upper) {
		return nil, fmt.Errorf("actual has %d points, lower has %d, upper has %d: %w", len(actual), len(lower), len(upper), ErrInvalidArgument)
	}
	if len(actual) == 0 {
		return nil, fmt.Errorf("no observations provided: %w", ErrInsufficientData)
	}
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("alpha %f must be in (0,1): %w", alpha, ErrInvalidArgument)
	}
	for i := range actual {
		for _, v := range []float64{actual[i], lower[i], upper[i]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("index %d has a non-finite value: %w", i, ErrNumericalFailure)
			}
		}
		if lower[i] > upper[i] {
			return nil, fmt.Errorf("index %d: lower %f exceeds upper %f: %w", i, lower[i], upper[i], ErrInvalidArgument)
		}
	}

	coverage, err := metrics.Coverage(actual, lower, upper)
	if err != nil {
		return nil, fmt.Errorf("coverage computation failed: %w", ErrNumericalFailure)
	}
	var widthSum float64
	for i := range lower {
		widthSum += upper[i] - lower[i]
	}
	winkler, err := metrics.Winkler(actual, lower, upper, alpha)
	if err != nil {
		return nil, fmt.Errorf("winkler computation failed: %w", ErrNumericalFailure)
	}
	return &EvaluationResult{
		Coverage:      coverage,
		ViolationRate: 1 - coverage,
		MeanWidth:     widthSum / float64(len(lower)),
		Winkler:       winkler,
	}, nil
}
