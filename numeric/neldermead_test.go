package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNelderMeadMinimizesQuadratic(t *testing.T) {
	// f(x,y) = (x-3)^2 + (y+2)^2, minimum at (3,-2)
	f := func(x []float64) float64 {
		return (x[0]-3)*(x[0]-3) + (x[1]+2)*(x[1]+2)
	}
	res, err := NelderMead(f, []float64{0, 0}, NewDefaultNelderMeadOptions())
	require.NoError(t, err)
	assert.InDelta(t, 3.0, res.X[0], 1e-3)
	assert.InDelta(t, -2.0, res.X[1], 1e-3)
	assert.True(t, res.Converged)
}

func TestNelderMeadRespectsBounds(t *testing.T) {
	// unconstrained minimum is at x=10, bounded to [0,1]
	f := func(x []float64) float64 { return (x[0] - 10) * (x[0] - 10) }
	opt := NewDefaultNelderMeadOptions()
	opt.Lower = []float64{0}
	opt.Upper = []float64{1}
	res, err := NelderMead(f, []float64{0.5}, opt)
	require.NoError(t, err)
	assert.True(t, res.X[0] >= 0 && res.X[0] <= 1)
	assert.InDelta(t, 1.0, res.X[0], 1e-2)
}

func TestNelderMeadRejectsMismatchedBounds(t *testing.T) {
	opt := NewDefaultNelderMeadOptions()
	opt.Lower = []float64{0, 0}
	_, err := NelderMead(func(x []float64) float64 { return 0 }, []float64{1}, opt)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBoundsDimMismatch)
}

func TestNelderMeadAlphaOptimization(t *testing.T) {
	// one-step SES residual objective: a simple convex function over alpha in [0.01,0.99]
	y := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1}
	obj := func(p []float64) float64 {
		alpha := p[0]
		level := y[0]
		var sse float64
		for i := 1; i < len(y); i++ {
			pred := level
			err := y[i] - pred
			sse += err * err
			level += alpha * err
		}
		return sse
	}
	opt := NewDefaultNelderMeadOptions()
	opt.Lower = []float64{0.01}
	opt.Upper = []float64{0.99}
	res, err := NelderMead(obj, []float64{0.5}, opt)
	require.NoError(t, err)
	assert.True(t, res.X[0] >= 0.01 && res.X[0] <= 0.99)
	assert.False(t, math.IsNaN(res.Value))
}
