package utils

import (
	"testing"
	"time"
)

func d(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAddMonth_EndOfMonthClamp(t *testing.T) {
	t.Parallel()

	cases := []struct {
		start  string
		months int
		want   string
	}{
		{"2025-01-31", 1, "2025-02-28"},
		{"2024-01-31", 1, "2024-02-29"},
		{"2025-03-31", -1, "2025-02-28"},
		{"2025-05-15", 12, "2026-05-15"},
		{"2025-08-31", 1, "2025-09-30"},
	}
	for _, tc := range cases {
		if got := AddMonth(d(tc.start), tc.months); !got.Equal(d(tc.want)) {
			t.Fatalf("AddMonth(%s, %d) = %s, want %s", tc.start, tc.months, got.Format("2006-01-02"), tc.want)
		}
	}
}

func TestPosition(t *testing.T) {
	t.Parallel()

	anchor := d("2025-01-02")
	if got := Position(anchor, d("2025-04-02")); got != 90 {
		t.Fatalf("Position = %v, want 90", got)
	}
	if got := Position(anchor, anchor); got != 0 {
		t.Fatalf("Position(anchor) = %v, want 0", got)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := ParseDate("2025/01/02"); err == nil {
		t.Fatal("expected error for bad layout")
	}
}

func TestYearFraction(t *testing.T) {
	t.Parallel()

	cases := []struct {
		start, end string
		dc         DayCount
		want       float64
	}{
		{"2025-01-02", "2025-04-02", ACT360, 90.0 / 360},
		{"2025-01-02", "2026-01-02", ACT365F, 1},
		{"2025-01-31", "2025-03-31", Thirty360E, 60.0 / 360},
		{"2025-01-30", "2025-03-31", Thirty360, 60.0 / 360},
		{"2025-01-29", "2025-03-31", Thirty360, 62.0 / 360},
		{"2025-01-29", "2025-03-31", Thirty360E, 61.0 / 360},
	}
	for _, tc := range cases {
		if got := YearFraction(d(tc.start), d(tc.end), tc.dc); got != tc.want {
			t.Fatalf("YearFraction(%s, %s, %s) = %v, want %v", tc.start, tc.end, tc.dc, got, tc.want)
		}
	}
}

func TestParseDayCount(t *testing.T) {
	t.Parallel()

	if dc, err := ParseDayCount("act/365"); err != nil || dc != ACT365F {
		t.Fatalf("ParseDayCount(act/365) = %q, %v", dc, err)
	}
	if dc, _ := ParseDayCount("30E/360"); dc.Basis() != 360 {
		t.Fatalf("basis = %v, want 360", dc.Basis())
	}
	if _, err := ParseDayCount("BUS/252"); err == nil {
		t.Fatal("expected error for unknown convention")
	}
}

func TestParseTenor(t *testing.T) {
	t.Parallel()

	n, unit, err := ParseTenor(" 10y ")
	if err != nil || n != 10 || unit != Year {
		t.Fatalf("ParseTenor = %d %c %v", n, unit, err)
	}
	if y, _ := TenorToYears("6M"); y != 0.5 {
		t.Fatalf("TenorToYears(6M) = %v", y)
	}
	for _, bad := range []string{"", "M", "3Q", "xM"} {
		if _, _, err := ParseTenor(bad); err == nil {
			t.Fatalf("ParseTenor(%q): expected error", bad)
		}
	}
}
