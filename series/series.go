// Package series is the L0 data model: an immutable-once-constructed time-series
// value object holding timestamps, one or more value dimensions, optional calendar
// annotations and named regressors, metadata, and inferred frequency.
package series

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoData              = errors.New("no timestamps or values provided")
	ErrLengthMismatch      = errors.New("value dimension length does not match timestamp length")
	ErrRegressorMismatch   = errors.New("regressor length does not match timestamp length")
	ErrRaggedRows          = errors.New("row-major values are ragged")
	ErrNonMonotonic        = errors.New("timestamps are not strictly increasing")
	ErrNoDimensions        = errors.New("no value dimensions provided")
	ErrDimOutOfRange       = errors.New("dimension index out of range")
	ErrSliceOutOfRange     = errors.New("slice bounds out of range")
)

// Series is the core time-series container. Timestamps are stored once and shared
// by every dimension (column-major: Y[dim][i]). A Series is read-only after
// construction; every mutating operation (Sanitize, Interpolate, Slice) returns a
// new Series.
type Series struct {
	t          []time.Time
	y          [][]float64
	labels     []string
	regressors map[string][]float64
	metadata   map[string]string
	loc        *time.Location
	calendar   *Calendar
	freq       time.Duration
	freqKnown  bool
}

// Option configures a Series at construction time.
type Option func(*Series)

// WithLabels assigns a name to each value dimension. New returns an
// ErrLengthMismatch error if the count does not match the dimension count.
func WithLabels(labels ...string) Option {
	return func(s *Series) { s.labels = append([]string(nil), labels...) }
}

// WithRegressor attaches a named, full-length regressor column.
func WithRegressor(name string, values []float64) Option {
	return func(s *Series) {
		if s.regressors == nil {
			s.regressors = make(map[string][]float64)
		}
		cp := make([]float64, len(values))
		copy(cp, values)
		s.regressors[name] = cp
	}
}

// WithMetadata attaches whole-series string metadata.
func WithMetadata(meta map[string]string) Option {
	return func(s *Series) {
		if s.metadata == nil {
			s.metadata = make(map[string]string)
		}
		for k, v := range meta {
			s.metadata[k] = v
		}
	}
}

// WithLocation sets the time-zone descriptor used for calendar-aware operations.
func WithLocation(loc *time.Location) Option {
	return func(s *Series) { s.loc = loc }
}

// WithCalendar attaches a holiday/business-day calendar.
func WithCalendar(c *Calendar) Option {
	return func(s *Series) { s.calendar = c }
}

// New builds a Series from one or more column-major value dimensions. All
// dimensions must share the timestamp length. Fails with ErrLengthMismatch,
// ErrNoDimensions, or ErrNonMonotonic.
func New(t []time.Time, y [][]float64, opts ...Option) (*Series, error) {
	if len(t) == 0 {
		return nil, ErrNoData
	}
	if len(y) == 0 {
		return nil, ErrNoDimensions
	}
	for i, dim := range y {
		if len(dim) != len(t) {
			return nil, fmt.Errorf("dimension %d has length %d, timestamps have length %d: %w", i, len(dim), len(t), ErrLengthMismatch)
		}
	}
	if err := checkMonotonic(t); err != nil {
		return nil, err
	}

	s := &Series{
		t: append([]time.Time(nil), t...),
		y: copyDims(y),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.labels != nil && len(s.labels) != len(y) {
		return nil, fmt.Errorf("%d labels provided for %d dimensions: %w", len(s.labels), len(y), ErrLengthMismatch)
	}
	for name, reg := range s.regressors {
		if len(reg) != len(t) {
			return nil, fmt.Errorf("regressor %q has length %d, timestamps have length %d: %w", name, len(reg), len(t), ErrRegressorMismatch)
		}
	}
	return s, nil
}

// NewUnivariate builds a single-dimension Series.
func NewUnivariate(t []time.Time, y []float64, opts ...Option) (*Series, error) {
	return New(t, [][]float64{y}, opts...)
}

// NewFromRows builds a Series from row-major values (one row per timestamp, one
// column per dimension), transposing into the internal column-major layout. Fails
// with ErrRaggedRows if rows differ in length.
func NewFromRows(t []time.Time, rows [][]float64, opts ...Option) (*Series, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	if len(rows) != len(t) {
		return nil, fmt.Errorf("row count %d does not match timestamp count %d: %w", len(rows), len(t), ErrLengthMismatch)
	}
	nDim := len(rows[0])
	for i, row := range rows {
		if len(row) != nDim {
			return nil, fmt.Errorf("row %d has %d columns, expected %d: %w", i, len(row), nDim, ErrRaggedRows)
		}
	}
	y := make([][]float64, nDim)
	for d := 0; d < nDim; d++ {
		y[d] = make([]float64, len(rows))
		for i, row := range rows {
			y[d][i] = row[d]
		}
	}
	return New(t, y, opts...)
}

func checkMonotonic(t []time.Time) error {
	for i := 1; i < len(t); i++ {
		if !t[i].After(t[i-1]) {
			return fmt.Errorf("timestamp at index %d (%s) does not strictly follow index %d (%s): %w", i, t[i], i-1, t[i-1], ErrNonMonotonic)
		}
	}
	return nil
}

func copyDims(y [][]float64) [][]float64 {
	out := make([][]float64, len(y))
	for i, dim := range y {
		out[i] = append([]float64(nil), dim...)
	}
	return out
}

// Len returns the number of timestamps (and the length of every dimension).
func (s *Series) Len() int { return len(s.t) }

// NumDim returns the number of value dimensions.
func (s *Series) NumDim() int { return len(s.y) }

// Times returns the timestamp slice. Callers must not mutate it.
func (s *Series) Times() []time.Time { return s.t }

// Dim returns a read-only view of the dimension at the given index.
func (s *Series) Dim(i int) ([]float64, error) {
	if i < 0 || i >= len(s.y) {
		return nil, fmt.Errorf("dimension %d: %w", i, ErrDimOutOfRange)
	}
	return s.y[i], nil
}

// Univariate returns dimension 0, the conventional primary series.
func (s *Series) Univariate() []float64 { return s.y[0] }

// Row extracts the values of every dimension at time index i.
func (s *Series) Row(i int) ([]float64, error) {
	if i < 0 || i >= s.Len() {
		return nil, fmt.Errorf("row %d: %w", i, ErrDimOutOfRange)
	}
	row := make([]float64, len(s.y))
	for d := range s.y {
		row[d] = s.y[d][i]
	}
	return row, nil
}

// Labels returns the per-dimension labels, or nil if unset.
func (s *Series) Labels() []string { return s.labels }

// Metadata returns the whole-series metadata map.
func (s *Series) Metadata() map[string]string { return s.metadata }

// Regressor returns the named regressor column, and whether it exists.
func (s *Series) Regressor(name string) ([]float64, bool) {
	v, ok := s.regressors[name]
	return v, ok
}

// RegressorNames returns the set of attached regressor names.
func (s *Series) RegressorNames() []string {
	names := make([]string, 0, len(s.regressors))
	for k := range s.regressors {
		names = append(names, k)
	}
	return names
}

// Calendar returns the attached calendar, or nil.
func (s *Series) Calendar() *Calendar { return s.calendar }

// Location returns the attached time-zone descriptor, or nil.
func (s *Series) Location() *time.Location { return s.loc }

// Slice returns a sub-view spanning [start, end) with all metadata, regressors, and
// calendar carried over (calendar is shared, not recomputed, since it is
// immutable after construction).
func (s *Series) Slice(start, end int) (*Series, error) {
	if start < 0 || end > s.Len() || start > end {
		return nil, fmt.Errorf("slice [%d:%d) of length %d: %w", start, end, s.Len(), ErrSliceOutOfRange)
	}
	y := make([][]float64, len(s.y))
	for d := range s.y {
		y[d] = append([]float64(nil), s.y[d][start:end]...)
	}
	out := &Series{
		t:        append([]time.Time(nil), s.t[start:end]...),
		y:        y,
		labels:   s.labels,
		metadata: s.metadata,
		loc:      s.loc,
		calendar: s.calendar,
	}
	if len(s.regressors) > 0 {
		out.regressors = make(map[string][]float64, len(s.regressors))
		for name, reg := range s.regressors {
			out.regressors[name] = append([]float64(nil), reg[start:end]...)
		}
	}
	return out, nil
}

// Copy returns a deep copy of the Series.
func (s *Series) Copy() *Series {
	cp, _ := s.Slice(0, s.Len())
	cp.freq = s.freq
	cp.freqKnown = s.freqKnown
	return cp
}
