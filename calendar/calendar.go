// Package calendar provides business-day calendars and date rolling conventions used to
// build instrument schedules.
package calendar

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/meenmo/ratecal/utils"
)

// ID identifies a holiday calendar.
type ID string

const (
	TARGET ID = "TARGET"
	JPN    ID = "JPN"
	USD    ID = "USD"
	KRW    ID = "KRW"
	NONE   ID = "NONE" // weekends only
)

var ids = []ID{TARGET, JPN, USD, KRW, NONE}

// ParseID accepts a calendar name in any case.
func ParseID(s string) (ID, error) {
	id := ID(strings.ToUpper(strings.TrimSpace(s)))
	if id == "" {
		return NONE, nil
	}
	for _, known := range ids {
		if id == known {
			return id, nil
		}
	}
	return "", fmt.Errorf("ParseID: unknown calendar %q", s)
}

type yearKey struct {
	cal  ID
	year int
}

var (
	mu       sync.Mutex
	holidays = map[yearKey]map[string]struct{}{}
)

func isHoliday(cal ID, t time.Time) bool {
	key := yearKey{cal: cal, year: t.Year()}

	mu.Lock()
	set, ok := holidays[key]
	if !ok {
		set = make(map[string]struct{})
		for _, h := range holidayRules(cal, t.Year()) {
			set[h.Format("2006-01-02")] = struct{}{}
		}
		holidays[key] = set
	}
	mu.Unlock()

	_, ok = set[t.Format("2006-01-02")]
	return ok
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal ID, t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies Modified Following: Following, unless that crosses into the next month,
// in which case the last business day of t's month.
func Adjust(cal ID, t time.Time) time.Time {
	adj := AdjustFollowing(cal, t)
	if adj.Month() != t.Month() {
		return LastBusinessDayOfMonth(cal, t)
	}
	return adj
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal ID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal ID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}

// AddTenor rolls t by a tenor such as "2D", "1W", "3M" or "10Y". Day tenors count
// business days; week tenors count calendar days; month and year tenors use end-of-month
// clamping. The result is adjusted Modified Following except for day tenors, which land
// on business days already.
func AddTenor(cal ID, t time.Time, tenor string) (time.Time, error) {
	n, unit, err := utils.ParseTenor(tenor)
	if err != nil {
		return time.Time{}, fmt.Errorf("AddTenor: %w", err)
	}
	switch unit {
	case utils.Day:
		return AddBusinessDays(cal, t, n), nil
	case utils.Week:
		return Adjust(cal, t.AddDate(0, 0, 7*n)), nil
	case utils.Month:
		return Adjust(cal, utils.AddMonth(t, n)), nil
	default:
		return Adjust(cal, utils.AddMonth(t, 12*n)), nil
	}
}

// LastBusinessDayOfMonth returns the last business day of the month containing t.
func LastBusinessDayOfMonth(cal ID, t time.Time) time.Time {
	nextMonth := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return AddBusinessDays(cal, nextMonth, -1)
}

// IsEndOfMonth checks if t is the last business day of its month.
func IsEndOfMonth(cal ID, t time.Time) bool {
	return t.Equal(LastBusinessDayOfMonth(cal, t))
}
