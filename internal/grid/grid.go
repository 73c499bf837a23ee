// Package grid produces the date cells behind the month and week views.
// All functions are pure over the input date's calendar components.
package grid

import "time"

// MonthCells is the fixed cell count of a month view: 6 weeks of 7 days.
// A fixed grid keeps the layout height constant regardless of month
// length or starting weekday.
const MonthCells = 42

// MonthDays returns the 42 consecutive days of the month grid containing
// ref. The first entry is the Sunday on or before the first day of ref's
// month; entries advance one calendar day at a time.
func MonthDays(ref time.Time) []time.Time {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	start := first.AddDate(0, 0, -int(first.Weekday()))

	days := make([]time.Time, MonthCells)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// WeekDays returns the 7 days of the week containing ref, Sunday through
// Saturday.
func WeekDays(ref time.Time) []time.Time {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	start := day.AddDate(0, 0, -int(day.Weekday()))

	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// IsToday reports whether d falls on the current system date.
func IsToday(d time.Time) bool {
	return SameDay(d, time.Now())
}

// DayStart returns d truncated to 00:00:00 in d's location.
func DayStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// DayEnd returns the last second of d's calendar day (23:59:59).
func DayEnd(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location())
}

// MonthWindow returns the inclusive [first day 00:00:00, last day
// 23:59:59] span of ref's month.
func MonthWindow(ref time.Time) (time.Time, time.Time) {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 1, -1)
	return first, DayEnd(last)
}

// WeekWindow returns the inclusive [Sunday 00:00:00, Saturday 23:59:59]
// span of ref's week.
func WeekWindow(ref time.Time) (time.Time, time.Time) {
	days := WeekDays(ref)
	return days[0], DayEnd(days[6])
}
