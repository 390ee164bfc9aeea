package utils

import (
	"fmt"
	"strings"
	"time"
)

// DayCount is a day count convention.
type DayCount string

const (
	ACT360     DayCount = "ACT/360"
	ACT365F    DayCount = "ACT/365F"
	Thirty360E DayCount = "30E/360"
	Thirty360  DayCount = "30/360"
)

// ParseDayCount accepts the convention names used in quote files, e.g. "act/360".
func ParseDayCount(s string) (DayCount, error) {
	dc := DayCount(strings.ToUpper(strings.TrimSpace(s)))
	switch dc {
	case ACT360, ACT365F, Thirty360E, Thirty360:
		return dc, nil
	case "ACT/365", "ACT/365FIXED":
		return ACT365F, nil
	case "":
		return ACT360, nil
	}
	return "", fmt.Errorf("ParseDayCount: unknown convention %q", s)
}

// Basis returns the denominator of the convention's year.
func (dc DayCount) Basis() float64 {
	if dc == ACT365F {
		return 365
	}
	return 360
}

// YearFraction computes year fraction between two dates using the specified day count convention.
// Unknown conventions fall back to ACT/365F.
func YearFraction(start, end time.Time, dc DayCount) float64 {
	switch dc {
	case ACT360:
		return Days(start, end) / 360.0
	case ACT365F:
		return Days(start, end) / 365.0
	case Thirty360E:
		// D1 and D2 are capped at 30.
		d1 := min(start.Day(), 30)
		d2 := min(end.Day(), 30)
		return thirty360(start, end, d1, d2)
	case Thirty360:
		// Bond basis: D2 is capped only when D1 is.
		d1 := min(start.Day(), 30)
		d2 := end.Day()
		if d2 == 31 && d1 == 30 {
			d2 = 30
		}
		return thirty360(start, end, d1, d2)
	default:
		return Days(start, end) / 365.0
	}
}

func thirty360(start, end time.Time, d1, d2 int) float64 {
	y1, m1 := start.Year(), int(start.Month())
	y2, m2 := end.Year(), int(end.Month())
	return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
}
