package numeric

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrEmptyInitialPoint  = errors.New("nelder-mead: empty initial point")
	ErrBoundsDimMismatch  = errors.New("nelder-mead: bounds dimension does not match initial point")
	ErrBoundsInverted     = errors.New("nelder-mead: lower bound exceeds upper bound")
	ErrMaxIterationsReached = errors.New("nelder-mead: failed to converge within the iteration cap")
)

// Objective is the functional minimized by NelderMead.
type Objective func(x []float64) float64

// NelderMeadOptions configures the bounded simplex minimizer.
type NelderMeadOptions struct {
	Step        float64 // initial simplex step per dimension: Step*x0[i], or Step when x0[i] is 0
	Tolerance   float64 // convergence threshold on the simplex value stddev
	MaxIter     int
	Reflection  float64 // alpha
	Expansion   float64 // gamma
	Contraction float64 // rho
	Shrink      float64 // sigma
	Lower       []float64 // optional, same length as x0
	Upper       []float64 // optional, same length as x0
}

// NewDefaultNelderMeadOptions returns the textbook Nelder-Mead coefficients.
func NewDefaultNelderMeadOptions() *NelderMeadOptions {
	return &NelderMeadOptions{
		Step:        0.1,
		Tolerance:   1e-8,
		MaxIter:     500,
		Reflection:  1.0,
		Expansion:   2.0,
		Contraction: 0.5,
		Shrink:      0.5,
	}
}

// NelderMeadResult reports the minimizer's outcome.
type NelderMeadResult struct {
	X          []float64
	Value      float64
	Iterations int
	Converged  bool
}

// NelderMead runs the bounded Nelder-Mead simplex minimizer: reflect, expand on
// improvement over the best vertex, contract on non-improvement over the worst,
// shrink toward the best vertex when contraction fails to improve. Bounds, when
// provided, are enforced by clamping every new vertex. Converges when the sample
// standard deviation of simplex objective values drops below opt.Tolerance.
func NelderMead(f Objective, x0 []float64, opt *NelderMeadOptions) (*NelderMeadResult, error) {
	if opt == nil {
		opt = NewDefaultNelderMeadOptions()
	}
	n := len(x0)
	if n == 0 {
		return nil, ErrEmptyInitialPoint
	}
	if opt.Lower != nil && len(opt.Lower) != n {
		return nil, fmt.Errorf("lower has %d dims, x0 has %d: %w", len(opt.Lower), n, ErrBoundsDimMismatch)
	}
	if opt.Upper != nil && len(opt.Upper) != n {
		return nil, fmt.Errorf("upper has %d dims, x0 has %d: %w", len(opt.Upper), n, ErrBoundsDimMismatch)
	}
	for i := 0; opt.Lower != nil && opt.Upper != nil && i < n; i++ {
		if opt.Lower[i] > opt.Upper[i] {
			return nil, fmt.Errorf("dimension %d: %w", i, ErrBoundsInverted)
		}
	}

	clamp := func(x []float64) {
		for i := range x {
			if opt.Lower != nil && x[i] < opt.Lower[i] {
				x[i] = opt.Lower[i]
			}
			if opt.Upper != nil && x[i] > opt.Upper[i] {
				x[i] = opt.Upper[i]
			}
		}
	}

	// initial simplex: x0 plus n perturbed vertices
	simplex := make([][]float64, n+1)
	values := make([]float64, n+1)
	simplex[0] = append([]float64(nil), x0...)
	clamp(simplex[0])
	values[0] = f(simplex[0])
	for i := 0; i < n; i++ {
		v := append([]float64(nil), x0...)
		step := opt.Step
		if v[i] != 0 {
			step = opt.Step * v[i]
		}
		v[i] += step
		clamp(v)
		simplex[i+1] = v
		values[i+1] = f(v)
	}

	order := make([]int, n+1)
	sortSimplex := func() {
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })
	}

	iter := 0
	for ; iter < opt.MaxIter; iter++ {
		sortSimplex()
		if simplexStdDev(values) < opt.Tolerance {
			return result(simplex, values, order, iter, true), nil
		}

		best := order[0]
		worst := order[n]
		secondWorst := order[n-1]

		centroid := make([]float64, n)
		for _, idx := range order[:n] {
			for d := 0; d < n; d++ {
				centroid[d] += simplex[idx][d]
			}
		}
		for d := range centroid {
			centroid[d] /= float64(n)
		}

		reflectPt := reflectedPoint(centroid, simplex[worst], opt.Reflection)
		clamp(reflectPt)
		reflectVal := f(reflectPt)

		switch {
		case reflectVal < values[best]:
			expandPt := reflectedPoint(centroid, simplex[worst], opt.Reflection*opt.Expansion)
			clamp(expandPt)
			expandVal := f(expandPt)
			if expandVal < reflectVal {
				simplex[worst], values[worst] = expandPt, expandVal
			} else {
				simplex[worst], values[worst] = reflectPt, reflectVal
			}

		case reflectVal < values[secondWorst]:
			simplex[worst], values[worst] = reflectPt, reflectVal

		default:
			var contractPt []float64
			if reflectVal < values[worst] {
				contractPt = interiorPoint(centroid, reflectPt, opt.Contraction)
			} else {
				contractPt = interiorPoint(centroid, simplex[worst], opt.Contraction)
			}
			clamp(contractPt)
			contractVal := f(contractPt)
			if contractVal < values[worst] && contractVal < reflectVal {
				simplex[worst], values[worst] = contractPt, contractVal
			} else {
				for _, idx := range order[1:] {
					shrunk := interiorPoint(simplex[best], simplex[idx], 1-opt.Shrink)
					clamp(shrunk)
					simplex[idx] = shrunk
					values[idx] = f(shrunk)
				}
			}
		}
	}

	sortSimplex()
	return result(simplex, values, order, iter, false), nil
}

func reflectedPoint(centroid, worst []float64, coef float64) []float64 {
	out := make([]float64, len(centroid))
	for d := range out {
		out[d] = centroid[d] + coef*(centroid[d]-worst[d])
	}
	return out
}

func interiorPoint(a, b []float64, frac float64) []float64 {
	out := make([]float64, len(a))
	for d := range out {
		out[d] = a[d] + frac*(b[d]-a[d])
	}
	return out
}

func simplexStdDev(values []float64) float64 {
	n := float64(len(values))
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= n
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= n - 1
	return math.Sqrt(variance)
}

func result(simplex [][]float64, values []float64, order []int, iter int, converged bool) *NelderMeadResult {
	best := order[0]
	return &NelderMeadResult{
		X:          append([]float64(nil), simplex[best]...),
		Value:      values[best],
		Iterations: iter,
		Converged:  converged,
	}
}
