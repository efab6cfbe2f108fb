// Package numeric collects the L1 numerical utilities: robust statistics, the
// bounded Nelder-Mead minimizer, period-detection kernels, and small linear-algebra
// helpers shared by the forecaster family.
package numeric

import "sort"

// Median returns the sample median. The input is not mutated.
func Median(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	cp := append([]float64(nil), x...)
	sort.Float64s(cp)
	n := len(cp)
	if n%2 == 1 {
		return cp[n/2]
	}
	return (cp[n/2-1] + cp[n/2]) / 2
}

// minDxThreshold guards Siegel's slope division against near-vertical point pairs.
const minDxThreshold = 1e-10

// SiegelRepeatedMedians fits a robust line y = intercept + slope*x using the
// Siegel (1982) repeated-medians estimator: for each point i, the median over
// j != i of the pairwise slope (y_j-y_i)/(x_j-x_i) is taken, then the median of
// those per-point medians is the overall slope. The intercept is the median of
// y - slope*x. Pairs with |dx| below a fixed threshold contribute a zero slope
// rather than dividing by a near-zero delta.
func SiegelRepeatedMedians(x, y []float64) (slope, intercept float64) {
	n := len(x)
	if n < 2 {
		return 0, Median(y)
	}

	perPoint := make([]float64, n)
	for i := 0; i < n; i++ {
		slopes := make([]float64, 0, n-1)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dx := x[j] - x[i]
			if dx < 0 {
				dx = -dx
			}
			if dx < minDxThreshold {
				slopes = append(slopes, 0)
				continue
			}
			slopes = append(slopes, (y[j]-y[i])/(x[j]-x[i]))
		}
		perPoint[i] = Median(slopes)
	}
	slope = Median(perPoint)

	resid := make([]float64, n)
	for i := range resid {
		resid[i] = y[i] - slope*x[i]
	}
	intercept = Median(resid)
	return slope, intercept
}
