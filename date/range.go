package date

import (
	"fmt"
	"time"
)

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// NewRange returns the range [from, to].
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// Year returns the calendar year y as a range, the usual tax year.
func Year(y int) Range {
	return Range{From: New(y, time.January, 1), To: New(y, time.December, 31)}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// ContainsTime reports whether the calendar day of t is in the range.
func (r Range) ContainsTime(t time.Time) bool { return r.Contains(Of(t)) }

// Extend returns a copy of the range whose end is pushed by days.
func (r Range) Extend(days int) Range { return Range{From: r.From, To: r.To.Add(days)} }

func (r Range) String() string { return fmt.Sprintf("%s_%s", r.From, r.To) }
