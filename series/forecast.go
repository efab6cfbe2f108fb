package series

import (
	"errors"
	"fmt"
)

var (
	ErrShapeMismatch  = errors.New("interval matrix shape does not match point matrix shape")
	ErrLowerAboveUpper = errors.New("lower bound exceeds upper bound")
)

// Forecast carries per-dimension point predictions and optional per-dimension
// lower/upper interval matrices, all dimension-major (Point[dim] is a
// horizon-long sequence).
type Forecast struct {
	Point [][]float64
	Lower [][]float64
	Upper [][]float64
}

// NewForecast builds a point-only forecast for a single dimension.
func NewForecast(point []float64) *Forecast {
	return &Forecast{Point: [][]float64{point}}
}

// Horizon returns the forecast length (0 if Point is empty).
func (f *Forecast) Horizon() int {
	if len(f.Point) == 0 {
		return 0
	}
	return len(f.Point[0])
}

// WithIntervals attaches lower/upper matrices and validates them.
func (f *Forecast) WithIntervals(lower, upper [][]float64) (*Forecast, error) {
	out := &Forecast{Point: f.Point, Lower: lower, Upper: upper}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks shape and lower<=upper invariants when intervals are populated.
func (f *Forecast) Validate() error {
	if f.Lower == nil && f.Upper == nil {
		return nil
	}
	if len(f.Lower) != len(f.Point) || len(f.Upper) != len(f.Point) {
		return fmt.Errorf("point has %d dims, lower has %d, upper has %d: %w", len(f.Point), len(f.Lower), len(f.Upper), ErrShapeMismatch)
	}
	for d := range f.Point {
		if len(f.Lower[d]) != len(f.Point[d]) || len(f.Upper[d]) != len(f.Point[d]) {
			return fmt.Errorf("dimension %d: %w", d, ErrShapeMismatch)
		}
		for i := range f.Point[d] {
			if f.Lower[d][i] > f.Upper[d][i] {
				return fmt.Errorf("dimension %d, index %d: lower %f > upper %f: %w", d, i, f.Lower[d][i], f.Upper[d][i], ErrLowerAboveUpper)
			}
		}
	}
	return nil
}
