// Package calendar works with hotel-local calendar dates and builds the month and week grids.
//
// A date is a time.Time at midnight UTC carrying the calendar day only. Persisted dates
// use DateLayout so that string comparison orders them chronologically.
package calendar

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateOf drops the clock part of t, keeping the calendar day as seen in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Format(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}

func Parse(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) time.Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func SameDay(a, b time.Time) bool {
	return Format(a) == Format(b)
}

// Ordered returns a and b as calendar dates with the earlier one first.
func Ordered(a, b time.Time) (time.Time, time.Time) {
	a, b = DateOf(a), DateOf(b)
	if b.Before(a) {
		return b, a
	}
	return a, b
}

// DaysInclusive counts the dates in [start, end].
func DaysInclusive(start, end time.Time) int {
	start, end = Ordered(start, end)
	return int(end.Sub(start).Hours()/24) + 1
}

func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Range is an inclusive span of calendar dates with Start <= End.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewRange orders a and b into a Range.
func NewRange(a, b time.Time) Range {
	start, end := Ordered(DateOf(a), DateOf(b))
	return Range{Start: start, End: end}
}

// Days returns the number of dates in r.
func (r Range) Days() int {
	return DaysInclusive(r.Start, r.End)
}

func (r Range) String() string {
	if SameDay(r.Start, r.End) {
		return Format(r.Start)
	}
	return Format(r.Start) + " – " + Format(r.End)
}
