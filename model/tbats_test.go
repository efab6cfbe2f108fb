package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTBATSFitsAndForecasts(t *testing.T) {
	y := seasonalSample()
	s := mkUnivariate(t, y)
	opt := NewDefaultTBATSOptions([]int{4})
	m, err := NewTBATS(opt)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(4)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 4)
	for _, v := range f.Point[0] {
		assert.False(t, v != v)
	}
}

func TestTBATSRejectsNoPeriods(t *testing.T) {
	_, err := NewTBATS(&TBATSOptions{})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTBATSReportsAIC(t *testing.T) {
	y := seasonalSample()
	s := mkUnivariate(t, y)
	opt := NewDefaultTBATSOptions([]int{4})
	m, err := NewTBATS(opt)
	require.NoError(t, err)
	require.NoError(t, m.Fit(s))

	aic, ok := m.AIC()
	require.True(t, ok)
	assert.False(t, aic != aic)
}

func TestAutoTBATSSelectsConfiguration(t *testing.T) {
	y := seasonalSample()
	s := mkUnivariate(t, y)
	m := NewAutoTBATS([]int{4})
	require.NoError(t, m.Fit(s))

	f, err := m.Predict(4)
	require.NoError(t, err)
	assert.Len(t, f.Point[0], 4)
}
