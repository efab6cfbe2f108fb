package series

import (
	"math"
	"time"
)

// Policy selects how Sanitize handles non-finite values.
type Policy int

const (
	// PolicyError fails if any non-finite value is present.
	PolicyError Policy = iota
	// PolicyDrop keeps only rows where every dimension is finite.
	PolicyDrop
	// PolicyFillValue replaces every non-finite value with a constant.
	PolicyFillValue
	// PolicyForwardFill replaces each non-finite value with the most recent
	// finite value in its own dimension.
	PolicyForwardFill
)

// ErrNonFinite is returned by Sanitize under PolicyError when a non-finite value
// is present.
type ErrNonFinite struct {
	Dim, Index int
}

func (e *ErrNonFinite) Error() string {
	return "non-finite value at dimension " + itoa(e.Dim) + ", index " + itoa(e.Index)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Sanitize applies a missing-value policy, returning a new Series. PolicyFillValue
// and PolicyForwardFill require fillValue; ForwardFill uses it as the initial fill
// for a leading run of non-finites.
func (s *Series) Sanitize(policy Policy, fillValue float64) (*Series, error) {
	switch policy {
	case PolicyError:
		for d, dim := range s.y {
			for i, v := range dim {
				if !isFinite(v) {
					return nil, &ErrNonFinite{Dim: d, Index: i}
				}
			}
		}
		return s.Copy(), nil

	case PolicyDrop:
		keep := make([]bool, s.Len())
		for i := range keep {
			keep[i] = true
			for _, dim := range s.y {
				if !isFinite(dim[i]) {
					keep[i] = false
					break
				}
			}
		}
		return s.filterRows(keep)

	case PolicyFillValue:
		out := s.Copy()
		for d := range out.y {
			for i, v := range out.y[d] {
				if !isFinite(v) {
					out.y[d][i] = fillValue
				}
			}
		}
		return out, nil

	case PolicyForwardFill:
		out := s.Copy()
		for d := range out.y {
			last := fillValue
			haveLast := false
			for i, v := range out.y[d] {
				if isFinite(v) {
					last = v
					haveLast = true
					continue
				}
				if haveLast {
					out.y[d][i] = last
				} else {
					out.y[d][i] = fillValue
				}
			}
		}
		return out, nil

	default:
		return s.Copy(), nil
	}
}

func (s *Series) filterRows(keep []bool) (*Series, error) {
	n := 0
	for _, k := range keep {
		if k {
			n++
		}
	}
	t := make([]time.Time, 0, n)
	y := make([][]float64, len(s.y))
	for d := range y {
		y[d] = make([]float64, 0, n)
	}
	var regressors map[string][]float64
	if len(s.regressors) > 0 {
		regressors = make(map[string][]float64, len(s.regressors))
		for name := range s.regressors {
			regressors[name] = make([]float64, 0, n)
		}
	}
	for i, k := range keep {
		if !k {
			continue
		}
		t = append(t, s.t[i])
		for d := range y {
			y[d] = append(y[d], s.y[d][i])
		}
		for name, reg := range s.regressors {
			regressors[name] = append(regressors[name], reg[i])
		}
	}
	out := &Series{
		t:          t,
		y:          y,
		labels:     s.labels,
		metadata:   s.metadata,
		loc:        s.loc,
		calendar:   s.calendar,
		regressors: regressors,
	}
	return out, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
