// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/City-of-Helsinki/hitas-calc/pkg/constants"
)

const (
	// DateTimeLayout is the month format expected in config files and is also
	// the output date format.
	DateTimeLayout = constants.DateTimeLayout

	// DateLayout is the full-date format for completion and purchase dates.
	DateLayout = constants.DateLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// MonthOf truncates a date to the first day of its month.
func MonthOf(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the number of whole months elapsed from start to end,
// computed by explicit year/month component subtraction. A started but
// unfinished month does not count: when the end day-of-month is smaller than
// the start's the difference is reduced by one. Never negative.
func MonthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*constants.MonthsPerYear + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// YearsAndMonths splits a whole-month count into years plus remainder months.
func YearsAndMonths(months int) (int, int) {
	return months / constants.MonthsPerYear, months % constants.MonthsPerYear
}

// InterestDays returns the number of interest-accruing days from payment to
// completion using the 30/360 banking convention: every month counts as
// exactly 30 days, with day-of-month components capped at 30. The result may
// be zero or negative when the payment is dated at or after completion.
func InterestDays(payment, completion time.Time) int {
	startDay := payment.Day()
	if startDay > constants.DaysPerInterestMonth {
		startDay = constants.DaysPerInterestMonth
	}
	endDay := completion.Day()
	if endDay > constants.DaysPerInterestMonth {
		endDay = constants.DaysPerInterestMonth
	}
	return (completion.Year()-payment.Year())*constants.DaysPerInterestYear +
		(int(completion.Month())-int(payment.Month()))*constants.DaysPerInterestMonth +
		endDay - startDay
}

// QuarterOf truncates a date to the first day of its calendar quarter.
func QuarterOf(date time.Time) time.Time {
	quarterMonth := time.Month((int(date.Month())-1)/3*3 + 1)
	return time.Date(date.Year(), quarterMonth, 1, 0, 0, 0, 0, time.UTC)
}

// SurfaceAreaCeilingValidUntil returns the last day the surface-area price
// ceiling quoted for the given calculation date stays valid. The ceiling is
// recalculated quarterly, so validity follows a fixed month-range table
// instead of the usual three-month offset: Feb-Apr run until May 31, May-Jul
// until Aug 31, Aug-Oct until Nov 30, and Nov-Jan until the end of February
// (leap-year aware).
func SurfaceAreaCeilingValidUntil(date time.Time) time.Time {
	year := date.Year()
	switch date.Month() {
	case time.February, time.March, time.April:
		return time.Date(year, time.May, 31, 0, 0, 0, 0, time.UTC)
	case time.May, time.June, time.July:
		return time.Date(year, time.August, 31, 0, 0, 0, 0, time.UTC)
	case time.August, time.September, time.October:
		return time.Date(year, time.November, 30, 0, 0, 0, 0, time.UTC)
	case time.November, time.December:
		return endOfFebruary(year + 1)
	default: // January
		return endOfFebruary(year)
	}
}

// endOfFebruary returns the last day of February for the given year, which is
// March 1 minus one day so leap years resolve correctly.
func endOfFebruary(year int) time.Time {
	return time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}
