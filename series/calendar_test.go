package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarIsHolidayOccurrence(t *testing.T) {
	start := time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)
	cal, err := NewCalendar([]Occurrence{
		{Name: "christmas", Start: start, End: start.Add(24 * time.Hour)},
	}, false)
	require.NoError(t, err)

	assert.True(t, cal.IsHoliday(start.Add(6*time.Hour)))
	assert.False(t, cal.IsHoliday(start.Add(-time.Hour)))
}

func TestCalendarWeekendsOptIn(t *testing.T) {
	cal, err := NewCalendar(nil, true)
	require.NoError(t, err)

	saturday := time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC) // a Saturday
	monday := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	assert.True(t, cal.IsHoliday(saturday))
	assert.False(t, cal.IsHoliday(monday))
}

func TestCalendarRejectsZeroDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := NewCalendar([]Occurrence{{Name: "bad", Start: start, End: start}}, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrZeroDuration)
}
