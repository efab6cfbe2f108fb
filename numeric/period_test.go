package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sineWave(n, period int) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = math.Sin(2 * math.Pi * float64(i) / float64(period))
	}
	return y
}

func TestDetectACFFindsPeriod(t *testing.T) {
	y := sineWave(120, 12)
	cands := Detect(y, MethodACF, 2, 40)
	best, ok := Primary(cands)
	if assert.True(t, ok) {
		assert.Equal(t, 12, best.Period)
	}
}

func TestDetectFFTFindsPeriod(t *testing.T) {
	y := sineWave(120, 12)
	cands := Detect(y, MethodFFT, 2, 40)
	best, ok := Primary(cands)
	if assert.True(t, ok) {
		assert.Equal(t, 12, best.Period)
	}
}

func TestDetectAutoMergesCandidates(t *testing.T) {
	y := sineWave(144, 12)
	cands := Detect(y, MethodAuto, 2, 40)
	assert.NotEmpty(t, cands)
}

func TestDetectNoSeasonReturnsEmpty(t *testing.T) {
	y := make([]float64, 10)
	for i := range y {
		y[i] = float64(i) // pure trend, no seasonality
	}
	cands := Detect(y, MethodACF, 2, 4)
	assert.Empty(t, cands)
}
