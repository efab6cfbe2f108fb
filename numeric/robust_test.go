package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedianOddEven(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3, 2, 4}))
	assert.Equal(t, 2.5, Median([]float64{1, 2, 3, 4}))
}

func TestSiegelRepeatedMediansRecoversLine(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{1, 3, 5, 7, 9} // y = 1 + 2x
	slope, intercept := SiegelRepeatedMedians(x, y)
	assert.InDelta(t, 2.0, slope, 1e-9)
	assert.InDelta(t, 1.0, intercept, 1e-9)
}

func TestSiegelRepeatedMediansRobustToOutlier(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5}
	y := []float64{1, 3, 5, 7, 9, 500} // last point is a gross outlier
	slope, intercept := SiegelRepeatedMedians(x, y)
	assert.InDelta(t, 2.0, slope, 1.0)
	assert.InDelta(t, 1.0, intercept, 2.0)
}

func TestDetectOutliersTukey(t *testing.T) {
	y := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}
	idx := DetectOutliers(y, 0.1, 0.9, 1.5)
	assert.Contains(t, idx, 9)
}
