package transform

import "gonum.org/v1/gonum/stat"

// StandardScaler learns mean and sample standard deviation (Bessel-corrected,
// via gonum/stat.MeanStdDev) and maps to zero mean, unit variance. Constant
// input transforms to zero.
type StandardScaler struct {
	IgnoreNonFinite bool

	mean, std float64
	fitted    bool
}

func NewStandardScaler() *StandardScaler {
	return &StandardScaler{IgnoreNonFinite: true}
}

func (s *StandardScaler) Name() string { return "standard_scaler" }

func (s *StandardScaler) Fit(y []float64) error {
	values := y
	if s.IgnoreNonFinite {
		values = make([]float64, 0, len(y))
		for _, v := range y {
			if isFinite(v) {
				values = append(values, v)
			}
		}
	}
	if len(values) == 0 {
		return ErrEmptyInput
	}
	mean, std := stat.MeanStdDev(values, nil)
	s.mean, s.std = mean, std
	s.fitted = true
	return nil
}

func (s *StandardScaler) Transform(y []float64) error {
	if !s.fitted {
		return ErrNotFitted
	}
	for i, v := range y {
		if !isFinite(v) {
			continue
		}
		if s.std == 0 {
			y[i] = 0
			continue
		}
		y[i] = (v - s.mean) / s.std
	}
	return nil
}

func (s *StandardScaler) InverseTransform(y []float64) error {
	if !s.fitted {
		return ErrNotFitted
	}
	for i, v := range y {
		if !isFinite(v) {
			continue
		}
		y[i] = v*s.std + s.mean
	}
	return nil
}
