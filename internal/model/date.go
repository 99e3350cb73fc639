package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Precision indicates the granularity at which a date is actually known.
// Acquisition and connection dates are often approximate ("sometime in 2021"),
// so every stored date carries one of these tags alongside it.
type Precision string

const (
	PrecisionYear  Precision = "year"
	PrecisionMonth Precision = "month"
	PrecisionDay   Precision = "day"
	PrecisionNone  Precision = "none"
)

// ParsePrecision validates a precision string from storage or user input.
func ParsePrecision(s string) (Precision, error) {
	switch Precision(s) {
	case PrecisionYear, PrecisionMonth, PrecisionDay, PrecisionNone:
		return Precision(s), nil
	}
	return PrecisionNone, fmt.Errorf("invalid precision: %q", s)
}

// Date is a calendar date known only to a given precision.
// Month is meaningful only at month or day precision; Day only at day
// precision. Consumers must check Precision before trusting either field —
// the normalized storage form pads unknown components with 01.
//
// The zero value is the absent date (Precision "none").
type Date struct {
	Year      int
	Month     int
	Day       int
	Precision Precision
}

// NewDate builds a Date from a {year, month?, day?} triple, deriving the
// precision from which components are supplied (zero means omitted).
// A day without a month is rejected.
func NewDate(year, month, day int) (Date, error) {
	if year == 0 {
		return Date{Precision: PrecisionNone}, fmt.Errorf("year is required")
	}
	if year < 1000 || year > 9999 {
		return Date{Precision: PrecisionNone}, fmt.Errorf("year out of range: %d", year)
	}
	if month == 0 {
		if day != 0 {
			return Date{Precision: PrecisionNone}, fmt.Errorf("day supplied without month")
		}
		return Date{Year: year, Precision: PrecisionYear}, nil
	}
	if month < 1 || month > 12 {
		return Date{Precision: PrecisionNone}, fmt.Errorf("month out of range: %d", month)
	}
	if day == 0 {
		return Date{Year: year, Month: month, Precision: PrecisionMonth}, nil
	}
	// Let the time package validate day-of-month (leap years etc).
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return Date{Precision: PrecisionNone}, fmt.Errorf("invalid calendar date: %04d-%02d-%02d", year, month, day)
	}
	return Date{Year: year, Month: month, Day: day, Precision: PrecisionDay}, nil
}

// DatePrecision returns the precision implied by a {year, month, day} triple
// without constructing a Date (zero means omitted).
func DatePrecision(year, month, day int) Precision {
	switch {
	case year == 0:
		return PrecisionNone
	case month == 0:
		return PrecisionYear
	case day == 0:
		return PrecisionMonth
	default:
		return PrecisionDay
	}
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool {
	return d.Precision == PrecisionNone || d.Precision == ""
}

// String returns the normalized zero-padded storage form "YYYY-MM-DD".
// Unknown components are padded with 01, so lexicographic order on the
// result equals chronological order. The absent date renders as "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	month, day := d.Month, d.Day
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, month, day)
}

// Display renders the date at its known precision only: "2021", "2021-06"
// or "2021-06-15".
func (d Date) Display() string {
	switch d.Precision {
	case PrecisionYear:
		return fmt.Sprintf("%04d", d.Year)
	case PrecisionMonth:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	case PrecisionDay:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
	return ""
}

// Before reports whether d sorts strictly before other in the normalized
// string order. Absent dates sort first.
func (d Date) Before(other Date) bool {
	return d.String() < other.String()
}

// ParseDate reconstructs a Date from its normalized storage form and the
// precision tag stored alongside it. Components below the stated precision
// are discarded rather than trusted.
func ParseDate(s string, precision Precision) (Date, error) {
	if precision == PrecisionNone || precision == "" || s == "" {
		return Date{Precision: PrecisionNone}, nil
	}

	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return Date{Precision: PrecisionNone}, fmt.Errorf("malformed date string: %q", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{Precision: PrecisionNone}, fmt.Errorf("malformed date string: %q", s)
		}
		nums[i] = n
	}

	switch precision {
	case PrecisionYear:
		return NewDate(nums[0], 0, 0)
	case PrecisionMonth:
		return NewDate(nums[0], nums[1], 0)
	default:
		return NewDate(nums[0], nums[1], nums[2])
	}
}
