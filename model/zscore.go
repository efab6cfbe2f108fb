package model

import "gonum.org/v1/gonum/stat/distuv"

// zscoreForCoverage returns the two-sided standard normal critical value for a
// central coverage fraction in (0,1), e.g. 0.95 -> ~1.96.
func zscoreForCoverage(coverage float64) float64 {
	n := distuv.Normal{Mu: 0, Sigma: 1}
	return n.Quantile(0.5 + coverage/2)
}

const defaultCoverage = 0.80
