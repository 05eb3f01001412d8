// Package timerange computes the time windows used by activity filters and
// analytics rollups. Windows are computed relative to a supplied "now" in
// that time's location, so handlers pass request time and tests pass fixed
// instants.
package timerange

import "time"

// Range names accepted by the timeRange query parameter.
const (
	All   = "all"
	Today = "today"
	Week  = "week"
	Month = "month"
)

// Valid reports whether name is a recognized range name. The empty string is
// treated as "all".
func Valid(name string) bool {
	switch name {
	case "", All, Today, Week, Month:
		return true
	}
	return false
}

// Start returns the inclusive lower bound for the named range, or a zero
// time and false for "all"/unrecognized names (meaning no lower bound).
func Start(name string, now time.Time) (time.Time, bool) {
	switch name {
	case Today:
		return StartOfDay(now), true
	case Week:
		return StartOfWeek(now), true
	case Month:
		return StartOfMonth(now), true
	}
	return time.Time{}, false
}

// StartOfDay returns midnight of now's day in now's location.
func StartOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// StartOfWeek returns midnight of the most recent Monday (today when now is
// a Monday).
func StartOfWeek(now time.Time) time.Time {
	day := StartOfDay(now)
	// Weekday() counts Sunday as 0; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// StartOfMonth returns midnight of the first day of now's month.
func StartOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// LastDays returns the instant the given number of days before now. The
// analytics summary uses a rolling 7-day window, unlike the activity
// filter's Monday-anchored week.
func LastDays(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}
