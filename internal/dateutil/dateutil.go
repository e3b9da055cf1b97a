// Package dateutil provides the Sunday calendar math the planner and CLI
// share: finding the next Sunday, recognizing the first Sunday of a month,
// and formatting Sunday dates for display.
package dateutil

import "time"

// sundayLayout renders dates like "Sunday, December 15, 2024".
const sundayLayout = "Monday, January 02, 2006"

// NextSunday returns the first Sunday on or after from, at midnight in
// from's location. A Sunday maps to itself.
func NextSunday(from time.Time) time.Time {
	days := (7 - int(from.Weekday())) % 7
	next := from.AddDate(0, 0, days)
	return Midnight(next)
}

// IsFirstSunday reports whether date is the first Sunday of its month.
func IsFirstSunday(date time.Time) bool {
	return date.Weekday() == time.Sunday && date.Day() <= 7
}

// Midnight truncates a date to the start of its day, keeping the location.
func Midnight(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// FormatSunday renders a date for service announcements.
func FormatSunday(date time.Time) string {
	return date.Format(sundayLayout)
}
