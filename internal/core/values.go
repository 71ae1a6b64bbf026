package core

import "time"

// Logical is a three-valued boolean: True, False, or Unknown. It replaces
// the three-singleton comparison rules of the historical implementation
// with a plain discriminated union.
type Logical struct {
	known bool
	value bool
}

var (
	LogicalTrue    = Logical{known: true, value: true}
	LogicalFalse   = Logical{known: true, value: false}
	LogicalUnknown = Logical{known: false}
)

func (l Logical) Known() bool { return l.known }

// Value returns the boolean value and whether it is known. An unknown
// logical reports ok=false; callers that need a definite bool should check
// ok first rather than trusting the zero value.
func (l Logical) Value() (v bool, ok bool) { return l.value, l.known }

func (l Logical) String() string {
	if !l.known {
		return "?"
	}
	if l.value {
		return "T"
	}
	return "F"
}

// Date is an option-like wrapper around a calendar date (no time-of-day).
// The zero Date is the null/empty date.
type Date struct {
	valid bool
	year  int
	month time.Month
	day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{valid: true, year: year, month: month, day: day}
}

func (d Date) Valid() bool { return d.valid }

func (d Date) Time() time.Time {
	if !d.valid {
		return time.Time{}
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Equal(o Date) bool {
	if d.valid != o.valid {
		return false
	}
	if !d.valid {
		return true
	}
	return d.year == o.year && d.month == o.month && d.day == o.day
}

// DateTime is an option-like wrapper around a date plus a time-of-day with
// millisecond resolution (the on-disk representation's native precision;
// sub-millisecond input is discarded, per the round-trip invariant).
type DateTime struct {
	valid bool
	t     time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{valid: true, t: t.Truncate(time.Millisecond)}
}

func (dt DateTime) Valid() bool { return dt.valid }

func (dt DateTime) Time() time.Time {
	if !dt.valid {
		return time.Time{}
	}
	return dt.t
}

func (dt DateTime) Equal(o DateTime) bool {
	if dt.valid != o.valid {
		return false
	}
	if !dt.valid {
		return true
	}
	return dt.t.Equal(o.t)
}

// NumericValue is the decoded form of a Numeric or Float field: either a
// value, the documented "empty" state (all spaces, decodes to 0 with
// Empty=true), or the documented overflow state (all asterisks).
type NumericValue struct {
	Value    float64
	Empty    bool
	Overflow bool
}
