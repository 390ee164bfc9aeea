package calendar

import (
	"math"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// nthWeekday returns the n-th weekday of the month; n < 0 counts from the end.
func nthWeekday(y int, m time.Month, wd time.Weekday, n int) time.Time {
	if n > 0 {
		t := date(y, m, 1)
		for t.Weekday() != wd {
			t = t.AddDate(0, 0, 1)
		}
		return t.AddDate(0, 0, 7*(n-1))
	}
	t := date(y, m+1, 0)
	for t.Weekday() != wd {
		t = t.AddDate(0, 0, -1)
	}
	return t.AddDate(0, 0, 7*(n+1))
}

// easterSunday uses the anonymous Gregorian algorithm.
func easterSunday(y int) time.Time {
	a := y % 19
	b := y / 100
	c := y % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return date(y, time.Month(month), day)
}

// observed moves a Saturday holiday to Friday and a Sunday holiday to Monday.
func observed(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	default:
		return t
	}
}

func holidayRules(cal ID, y int) []time.Time {
	switch cal {
	case TARGET:
		return targetHolidays(y)
	case USD:
		return usdHolidays(y)
	case JPN:
		return jpnHolidays(y)
	case KRW:
		return krwHolidays(y)
	default:
		return nil
	}
}

func targetHolidays(y int) []time.Time {
	easter := easterSunday(y)
	return []time.Time{
		date(y, time.January, 1),
		easter.AddDate(0, 0, -2),
		easter.AddDate(0, 0, 1),
		date(y, time.May, 1),
		date(y, time.December, 25),
		date(y, time.December, 26),
	}
}

// usdHolidays follows the Federal Reserve schedule used for SOFR fixings.
func usdHolidays(y int) []time.Time {
	hs := []time.Time{
		observed(date(y, time.January, 1)),
		nthWeekday(y, time.January, time.Monday, 3),
		nthWeekday(y, time.February, time.Monday, 3),
		nthWeekday(y, time.May, time.Monday, -1),
		observed(date(y, time.July, 4)),
		nthWeekday(y, time.September, time.Monday, 1),
		nthWeekday(y, time.October, time.Monday, 2),
		observed(date(y, time.November, 11)),
		nthWeekday(y, time.November, time.Thursday, 4),
		observed(date(y, time.December, 25)),
	}
	if y >= 2022 {
		hs = append(hs, observed(date(y, time.June, 19)))
	}
	return hs
}

// jpnHolidays covers the national holidays in force since 2020, with substitute
// holidays for those falling on a Sunday.
func jpnHolidays(y int) []time.Time {
	k := float64(y - 1980)
	vernal := int(math.Floor(20.8431 + 0.242194*k - math.Floor(k/4)))
	autumnal := int(math.Floor(23.2488 + 0.242194*k - math.Floor(k/4)))

	fixed := []time.Time{
		date(y, time.January, 1),
		nthWeekday(y, time.January, time.Monday, 2),
		date(y, time.February, 11),
		date(y, time.February, 23),
		date(y, time.March, vernal),
		date(y, time.April, 29),
		date(y, time.May, 3),
		date(y, time.May, 4),
		date(y, time.May, 5),
		nthWeekday(y, time.July, time.Monday, 3),
		date(y, time.August, 11),
		nthWeekday(y, time.September, time.Monday, 3),
		date(y, time.September, autumnal),
		nthWeekday(y, time.October, time.Monday, 2),
		date(y, time.November, 3),
		date(y, time.November, 23),
	}

	taken := make(map[time.Time]bool, len(fixed))
	for _, h := range fixed {
		taken[h] = true
	}
	hs := append([]time.Time(nil), fixed...)
	for _, h := range fixed {
		if h.Weekday() != time.Sunday {
			continue
		}
		sub := h.AddDate(0, 0, 1)
		for taken[sub] {
			sub = sub.AddDate(0, 0, 1)
		}
		taken[sub] = true
		hs = append(hs, sub)
	}
	// Bank holidays observed by the Tokyo market.
	hs = append(hs, date(y, time.January, 2), date(y, time.January, 3), date(y, time.December, 31))
	return hs
}

// krwHolidays covers the solar-calendar public holidays and the exchange's year-end
// closing day. Lunar holidays (Seollal, Buddha's Birthday, Chuseok) are not generated.
func krwHolidays(y int) []time.Time {
	return []time.Time{
		date(y, time.January, 1),
		date(y, time.March, 1),
		date(y, time.May, 1),
		date(y, time.May, 5),
		date(y, time.June, 6),
		date(y, time.August, 15),
		date(y, time.October, 3),
		date(y, time.October, 9),
		date(y, time.December, 25),
		date(y, time.December, 31),
	}
}
