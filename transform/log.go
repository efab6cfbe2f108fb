package transform

import "math"

// Log is the stateless natural-log transform. Domain: positive reals.
type Log struct{}

func NewLog() *Log { return &Log{} }

func (l *Log) Name() string { return "log" }

func (l *Log) Fit(y []float64) error { return nil }

func (l *Log) Transform(y []float64) error {
	for i, v := range y {
		if !isFinite(v) {
			continue
		}
		y[i] = math.Log(v)
	}
	return nil
}

func (l *Log) InverseTransform(y []float64) error {
	for i, v := range y {
		if !isFinite(v) {
			continue
		}
		y[i] = math.Exp(v)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
