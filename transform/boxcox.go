package transform

import (
	"math"

	"github.com/nilsson-quant/tsforecast/numeric"
)

const boxCoxLogBranchEpsilon = 1e-6

// BoxCox applies the Box-Cox power transform on positive reals. Lambda may be
// supplied directly or estimated at Fit time by a profile log-likelihood search
// over the bounded Nelder-Mead minimizer. |lambda| < epsilon uses the log
// branch.
type BoxCox struct {
	Lambda float64
	fitted bool
}

// NewBoxCox with an explicit lambda, already fitted.
func NewBoxCox(lambda float64) *BoxCox {
	return &BoxCox{Lambda: lambda, fitted: true}
}

// NewBoxCoxFitted estimates lambda from data at Fit time.
func NewBoxCoxFitted() *BoxCox {
	return &BoxCox{}
}

func (b *BoxCox) Name() string { return "box_cox" }

func (b *BoxCox) Fit(y []float64) error {
	if b.fitted {
		return nil
	}
	values := finiteOnly(y)
	if len(values) == 0 {
		return ErrEmptyInput
	}
	for _, v := range values {
		if v <= 0 {
			return ErrDomainViolation
		}
	}

	objective := func(p []float64) float64 { return -boxCoxLogLikelihood(values, p[0]) }
	opt := numeric.NewDefaultNelderMeadOptions()
	opt.Lower = []float64{-5}
	opt.Upper = []float64{5}
	res, err := numeric.NelderMead(objective, []float64{0.5}, opt)
	if err != nil {
		return err
	}
	b.Lambda = res.X[0]
	b.fitted = true
	return nil
}

func boxCoxLogLikelihood(y []float64, lambda float64) float64 {
	n := float64(len(y))
	transformed := make([]float64, len(y))
	var sumLog float64
	for i, v := range y {
		transformed[i] = boxCoxForward(v, lambda)
		sumLog += math.Log(v)
	}
	var mean float64
	for _, v := range transformed {
		mean += v
	}
	mean /= n
	var ss float64
	for _, v := range transformed {
		ss += (v - mean) * (v - mean)
	}
	variance := ss / n
	if variance <= 0 {
		return math.Inf(-1)
	}
	return -0.5*n*math.Log(variance) + (lambda-1)*sumLog
}

func boxCoxForward(v, lambda float64) float64 {
	if math.Abs(lambda) < boxCoxLogBranchEpsilon {
		return math.Log(v)
	}
	return (math.Pow(v, lambda) - 1) / lambda
}

func boxCoxInverse(v, lambda float64) float64 {
	if math.Abs(lambda) < boxCoxLogBranchEpsilon {
		return math.Exp(v)
	}
	base := v*lambda + 1
	if base <= 0 {
		return math.NaN()
	}
	return math.Pow(base, 1/lambda)
}

func (b *BoxCox) Transform(y []float64) error {
	if !b.fitted {
		return ErrNotFitted
	}
	for i, v := range y {
		if !isFinite(v) {
			continue
		}
		y[i] = boxCoxForward(v, b.Lambda)
	}
	return nil
}

func (b *BoxCox) InverseTransform(y []float64) error {
	if !b.fitted {
		return ErrNotFitted
	}
	for i, v := range y {
		if !isFinite(v) {
			continue
		}
		y[i] = boxCoxInverse(v, b.Lambda)
	}
	return nil
}

func finiteOnly(y []float64) []float64 {
	out := make([]float64, 0, len(y))
	for _, v := range y {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}
