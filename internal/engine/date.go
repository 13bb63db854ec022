package engine

import "time"

// Weekday names indexed Monday-first (0 = Monday .. 6 = Sunday).
// The table is fixed English on purpose: bucket keys never depend on locale.
var weekdayNames = [7]string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

const (
	mondayIndex   = 0
	saturdayIndex = 5
)

// civilDate strips the clock and the location, keeping only the calendar date.
// All arithmetic runs in UTC so that day differences are always whole days.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weekdayIndex returns 0 for Monday through 6 for Sunday.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// weekdayName maps a Monday-first index to its English name.
func weekdayName(index int) string {
	return weekdayNames[index]
}

// windowStart computes the anchor of the look-ahead window:
// today + ((7 - weekdayIndex(today)) mod 7) days.
func windowStart(today time.Time) time.Time {
	d := civilDate(today)
	return d.AddDate(0, 0, (7-weekdayIndex(d))%7)
}

// anchorDate places a month/day in the given year.
// Feb 29 clamps to Feb 28 when the target year is not a leap year.
func anchorDate(year int, month time.Month, day int) time.Time {
	if month == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// daysBetween returns the number of whole days from a to b (both civil dates).
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
