package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// TenorUnit is the unit of a tenor string.
type TenorUnit byte

const (
	Day   TenorUnit = 'D'
	Week  TenorUnit = 'W'
	Month TenorUnit = 'M'
	Year  TenorUnit = 'Y'
)

// ParseTenor splits tenors like "1W", "3M", "10Y" into a count and a unit.
func ParseTenor(tenor string) (int, TenorUnit, error) {
	tenor = strings.TrimSpace(strings.ToUpper(tenor))
	if len(tenor) < 2 {
		return 0, 0, fmt.Errorf("ParseTenor: invalid tenor %q", tenor)
	}
	unit := TenorUnit(tenor[len(tenor)-1])
	switch unit {
	case Day, Week, Month, Year:
	default:
		return 0, 0, fmt.Errorf("ParseTenor: invalid unit in %q", tenor)
	}
	n, err := strconv.Atoi(tenor[:len(tenor)-1])
	if err != nil {
		return 0, 0, fmt.Errorf("ParseTenor: %q: %w", tenor, err)
	}
	return n, unit, nil
}

// TenorToYears converts tenor strings to approximate year fractions, e.g. for sorting.
func TenorToYears(tenor string) (float64, error) {
	n, unit, err := ParseTenor(tenor)
	if err != nil {
		return 0, err
	}
	switch unit {
	case Week:
		return float64(n) * 7.0 / 365.0, nil
	case Month:
		return float64(n) / 12.0, nil
	case Year:
		return float64(n), nil
	default:
		return float64(n) / 365.0, nil
	}
}
