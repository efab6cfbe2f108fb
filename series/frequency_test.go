package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferFreqUniform(t *testing.T) {
	tm := mkTimes(10, time.Hour)
	s, err := NewUnivariate(tm, make([]float64, 10))
	require.NoError(t, err)

	d, ok := s.InferFreq(time.Second)
	require.True(t, ok)
	assert.Equal(t, time.Hour, d)
}

func TestInferFreqMajorityCluster(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tm := []time.Time{
		base,
		base.Add(time.Hour),
		base.Add(2 * time.Hour),
		base.Add(3 * time.Hour),
		base.Add(3*time.Hour + 2*time.Minute), // one outlier gap
	}
	s, err := NewUnivariate(tm, make([]float64, len(tm)))
	require.NoError(t, err)

	d, ok := s.InferFreq(time.Second)
	require.True(t, ok)
	assert.Equal(t, time.Hour, d)
}

func TestInferFreqNoMajority(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tm := []time.Time{
		base,
		base.Add(time.Hour),
		base.Add(3 * time.Hour),
		base.Add(6 * time.Hour),
	}
	s, err := NewUnivariate(tm, make([]float64, len(tm)))
	require.NoError(t, err)

	_, ok := s.InferFreq(time.Second)
	assert.False(t, ok)
}
