package series

import (
	"errors"
	"fmt"
	"time"

	"github.com/rickar/cal/v2"
)

var (
	ErrZeroDuration  = errors.New("holiday occurrence has non-positive duration")
	ErrUnsetInterval = errors.New("holiday occurrence start or end is unset")
)

// Occurrence is a single holiday span, either a full calendar day or a
// business-hours window within one.
type Occurrence struct {
	Name    string
	Start   time.Time
	End     time.Time
	Partial bool // business-hours span rather than a full day
}

func (o Occurrence) valid() error {
	if o.Start.IsZero() || o.End.IsZero() {
		return ErrUnsetInterval
	}
	if !o.End.After(o.Start) {
		return fmt.Errorf("occurrence %q spans [%s, %s]: %w", o.Name, o.Start, o.End, ErrZeroDuration)
	}
	return nil
}

func dayKey(t time.Time) (int, int, int) {
	y, m, d := t.Date()
	return y, int(m), d
}

// Calendar holds holiday occurrences indexed into a day-key set for O(1) lookup,
// and optionally treats weekends as non-business days.
type Calendar struct {
	occurrences      []Occurrence
	days             map[[3]int]struct{}
	weekendsHoliday  bool
}

// NewCalendar builds a Calendar from explicit occurrences. Fails if any occurrence
// has a non-positive duration or an unset bound.
func NewCalendar(occurrences []Occurrence, weekendsHoliday bool) (*Calendar, error) {
	days := make(map[[3]int]struct{})
	out := make([]Occurrence, 0, len(occurrences))
	for _, o := range occurrences {
		if err := o.valid(); err != nil {
			return nil, err
		}
		out = append(out, o)
		for d := o.Start; d.Before(o.End); d = d.Add(24 * time.Hour) {
			y, m, dd := dayKey(d)
			days[[3]int{y, m, dd}] = struct{}{}
		}
	}
	return &Calendar{occurrences: out, days: days, weekendsHoliday: weekendsHoliday}, nil
}

// FromRickarHolidays expands a set of *cal.Holiday definitions (e.g. us.Holidays
// from github.com/rickar/cal/v2/us) across [start, end] into a Calendar.
func FromRickarHolidays(holidays []*cal.Holiday, start, end time.Time, weekendsHoliday bool) (*Calendar, error) {
	var occurrences []Occurrence
	for i := start.Year(); i <= end.Year(); i++ {
		for _, h := range holidays {
			actual, observed := h.Calc(i)
			if observed.Before(start) || observed.After(end) {
				if actual.Before(start) || actual.After(end) {
					continue
				}
				observed = actual
			}
			occurrences = append(occurrences, Occurrence{
				Name:  h.Name,
				Start: time.Date(observed.Year(), observed.Month(), observed.Day(), 0, 0, 0, 0, observed.Location()),
				End:   time.Date(observed.Year(), observed.Month(), observed.Day(), 0, 0, 0, 0, observed.Location()).Add(24 * time.Hour),
			})
		}
	}
	return NewCalendar(occurrences, weekendsHoliday)
}

// IsHoliday reports whether t falls within any occurrence or on a holiday day-key,
// including weekends when the calendar opts in.
func (c *Calendar) IsHoliday(t time.Time) bool {
	if c == nil {
		return false
	}
	if c.weekendsHoliday {
		switch t.Weekday() {
		case time.Saturday, time.Sunday:
			return true
		}
	}
	y, m, d := dayKey(t)
	if _, ok := c.days[[3]int{y, m, d}]; ok {
		return true
	}
	for _, o := range c.occurrences {
		if (t.After(o.Start) || t.Equal(o.Start)) && t.Before(o.End) {
			return true
		}
	}
	return false
}

// Occurrences returns the raw occurrence list.
func (c *Calendar) Occurrences() []Occurrence {
	if c == nil {
		return nil
	}
	return c.occurrences
}
