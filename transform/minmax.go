package transform

import "math"

// MinMaxScaler maps input into [OutMin, OutMax] using either a fitted or an
// explicitly supplied input range. Constant input degenerates to OutMin.
type MinMaxScaler struct {
	OutMin, OutMax float64

	inMin, inMax float64
	fitted       bool
}

// NewMinMaxScaler returns a scaler with an output range of [0,1], fitted at
// Fit time.
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{OutMin: 0, OutMax: 1}
}

// NewMinMaxScalerWithRange returns a scaler with explicit input bounds,
// already fitted.
func NewMinMaxScalerWithRange(inMin, inMax, outMin, outMax float64) *MinMaxScaler {
	return &MinMaxScaler{OutMin: outMin, OutMax: outMax, inMin: inMin, inMax: inMax, fitted: true}
}

func (m *MinMaxScaler) Name() string { return "minmax_scaler" }

func (m *MinMaxScaler) Fit(y []float64) error {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range y {
		if !isFinite(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if math.IsInf(min, 1) {
		return ErrEmptyInput
	}
	m.inMin, m.inMax = min, max
	m.fitted = true
	return nil
}

func (m *MinMaxScaler) Transform(y []float64) error {
	if !m.fitted {
		return ErrNotFitted
	}
	span := m.inMax - m.inMin
	for i, v := range y {
		if !isFinite(v) {
			continue
		}
		if span == 0 {
			y[i] = m.OutMin
			continue
		}
		frac := (v - m.inMin) / span
		y[i] = m.OutMin + frac*(m.OutMax-m.OutMin)
	}
	return nil
}

func (m *MinMaxScaler) InverseTransform(y []float64) error {
	if !m.fitted {
		return ErrNotFitted
	}
	outSpan := m.OutMax - m.OutMin
	for i, v := range y {
		if !isFinite(v) {
			continue
		}
		if outSpan == 0 {
			y[i] = m.inMin
			continue
		}
		frac := (v - m.OutMin) / outSpan
		y[i] = m.inMin + frac*(m.inMax-m.inMin)
	}
	return nil
}
