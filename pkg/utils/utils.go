package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
	// MonthKeyLayout groups dates by calendar month.
	MonthKeyLayout = "2006-01"
)

// AddMonths moves t forward by n calendar months, clamping the day to the
// last day of the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := firstOfMonth.AddDate(0, n, 0)

	day := t.Day()
	if last := DaysInMonth(target); day > last {
		day = last
	}

	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// MonthsBetween counts whole months elapsed from start to end.
// A month is complete once end reaches the same day-of-month as start.
// Returns 0 when end is before start.
func MonthsBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}

	months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	if end.Day() < start.Day() && end.Day() < DaysInMonth(end) {
		months--
	}

	if months < 0 {
		return 0
	}
	return months
}

// MonthKey returns the year-month bucket of t, e.g. "2024-02".
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// RoundMoney rounds to 2 decimal places for currency
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundShare rounds a ratio to 4 decimal places.
func RoundShare(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

// SafeRatio returns numerator/denominator, or zero when the denominator is zero.
func SafeRatio(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.Div(denominator)
}

// SumDecimals adds up values.
func SumDecimals(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
