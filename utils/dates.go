// Package utils holds date arithmetic shared by calendars, schedules and curves.
package utils

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// SortDates sorts dates in ascending order.
func SortDates(dates []time.Time) {
	slices.SortFunc(dates, time.Time.Compare)
}

// ParseDate converts YYYY-MM-DD to a UTC time.Time.
func ParseDate(s string) (time.Time, error) {
	const layout = "2006-01-02"
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseDate: %w", err)
	}
	return t, nil
}

// Days returns the number of calendar days from start to end.
func Days(start, end time.Time) float64 {
	return math.Round(end.Sub(start).Hours() / 24)
}

// Position maps a date to a curve position: calendar days from the curve anchor date.
func Position(anchor, t time.Time) float64 {
	return Days(anchor, t)
}

// AddMonth adds months like Excel's EDATE: a day past the end of the target month clamps
// to its last day, so Jan 31 + 1M is Feb 28 (29 in leap years).
func AddMonth(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(t.Day(), last),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// RoundTo rounds a float to the specified decimal places.
func RoundTo(val float64, decimals uint32) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
