package market

import (
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/cryptobot/pkg/errs"
)

// Series is a time-ascending sequence of bars with unique timestamps.
// Sampling may be irregular.
type Series []Bar

// Validate checks the ordering, uniqueness and finiteness invariants.
func (s Series) Validate() error {
	for i, b := range s {
		if !b.finite() {
			return &errs.DataError{Index: i, Reason: "bar has NaN or infinite value", Err: errs.ErrBadPrice}
		}
		if i == 0 {
			continue
		}
		prev := s[i-1].Time
		switch {
		case b.Time.Equal(prev):
			return &errs.DataError{
				Index:  i,
				Reason: fmt.Sprintf("duplicate timestamp %s", b.Time.UTC().Format(time.RFC3339)),
				Err:    errs.ErrDuplicateTime,
			}
		case b.Time.Before(prev):
			return &errs.DataError{
				Index:  i,
				Reason: fmt.Sprintf("timestamp %s before previous bar", b.Time.UTC().Format(time.RFC3339)),
				Err:    errs.ErrUnordered,
			}
		}
	}
	return nil
}

// Closes returns the close prices in order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Sorted returns a copy ordered by time. Duplicates are kept so that
// Validate can report them.
func (s Series) Sorted() Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// Between returns the bars in [from, to). A zero bound is open.
func (s Series) Between(from, to time.Time) Series {
	out := make(Series, 0, len(s))
	for _, b := range s {
		if inRange(b.Time, from, to) {
			out = append(out, b)
		}
	}
	return out
}

// Start and End return the first and last timestamps, zero when empty.
func (s Series) Start() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[0].Time
}

func (s Series) End() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].Time
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
