package transform

import (
	"math"

	"github.com/nilsson-quant/tsforecast/numeric"
)

// YeoJohnson is the Box-Cox generalization that accepts negative values via the
// 2-lambda branch for negative inputs.
type YeoJohnson struct {
	Lambda float64
	fitted bool
}

func NewYeoJohnson(lambda float64) *YeoJohnson {
	return &YeoJohnson{Lambda: lambda, fitted: true}
}

func NewYeoJohnsonFitted() *YeoJohnson {
	return &YeoJohnson{}
}

func (yj *YeoJohnson) Name() string { return "yeo_johnson" }

func yeoJohnsonForward(v, lambda float64) float64 {
	const eps = 1e-6
	if v >= 0 {
		if math.Abs(lambda) < eps {
			return math.Log1p(v)
		}
		return (math.Pow(v+1, lambda) - 1) / lambda
	}
	if math.Abs(lambda-2) < eps {
		return -math.Log1p(-v)
	}
	return -(math.Pow(-v+1, 2-lambda) - 1) / (2 - lambda)
}

func yeoJohnsonInverse(v, lambda float64) float64 {
	const eps = 1e-6
	if v >= 0 {
		if math.Abs(lambda) < eps {
			return math.Expm1(v)
		}
		base := v*lambda + 1
		if base <= 0 {
			return math.NaN()
		}
		return math.Pow(base, 1/lambda) - 1
	}
	if math.Abs(lambda-2) < eps {
		return -math.Expm1(-v)
	}
	base := -v*(2-lambda) + 1
	if base <= 0 {
		return math.NaN()
	}
	return -(math.Pow(base, 1/(2-lambda)) - 1)
}

func (yj *YeoJohnson) Fit(y []float64) error {
	if yj.fitted {
		return nil
	}
	values := finiteOnly(y)
	if len(values) == 0 {
		return ErrEmptyInput
	}
	objective := func(p []float64) float64 { return -yeoJohnsonLogLikelihood(values, p[0]) }
	opt := numeric.NewDefaultNelderMeadOptions()
	opt.Lower = []float64{-5}
	opt.Upper = []float64{5}
	res, err := numeric.NelderMead(objective, []float64{1}, opt)
	if err != nil {
		return err
	}
	yj.Lambda = res.X[0]
	yj.fitted = true
	return nil
}

func yeoJohnsonLogLikelihood(y []float64, lambda float64) float64 {
	n := float64(len(y))
	transformed := make([]float64, len(y))
	var sumSignLog float64
	for i, v := range y {
		transformed[i] = yeoJohnsonForward(v, lambda)
		sumSignLog += math.Copysign(1, v) * math.Log1p(math.Abs(v))
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
	return -0.5*n*math.Log(variance) + (lambda-1)*sumSignLog
}

func (yj *YeoJohnson) Transform(y []float64) error {
	if !yj.fitted {
		return ErrNotFitted
	}
	for i, v := range y {
		if !isFinite(v) {
			continue
		}
		y[i] = yeoJohnsonForward(v, yj.Lambda)
	}
	return nil
}

func (yj *YeoJohnson) InverseTransform(y []float64) error {
	if !yj.fitted {
		return ErrNotFitted
	}
	for i, v := range y {
		if !isFinite(v) {
			continue
		}
		y[i] = yeoJohnsonInverse(v, yj.Lambda)
	}
	return nil
}
