package transform

import "math"

const logitEpsilon = 1e-9

// Logit transforms values in (0,1), clamped to (eps, 1-eps), to the real line.
// Its inverse is the sigmoid function.
type Logit struct{}

func NewLogit() *Logit { return &Logit{} }

func (l *Logit) Name() string { return "logit" }

func (l *Logit) Fit(y []float64) error { return nil }

func (l *Logit) Transform(y []float64) error {
	for i, v := range y {
		if !isFinite(v) {
			continue
		}
		c := math.Min(math.Max(v, logitEpsilon), 1-logitEpsilon)
		y[i] = math.Log(c / (1 - c))
	}
	return nil
}

func (l *Logit) InverseTransform(y []float64) error {
	for i, v := range y {
		if !isFinite(v) {
			continue
		}
		y[i] = 1 / (1 + math.Exp(-v))
	}
	return nil
}
