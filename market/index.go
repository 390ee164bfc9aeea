// Package market holds the quoting conventions of the benchmark rates curves are
// calibrated to.
package market

import (
	"fmt"
	"strings"
)

// Index enumerates supported floating benchmarks.
type Index string

const (
	SOFR      Index = "SOFR"
	ESTR      Index = "ESTR"
	TONAR     Index = "TONAR"
	EURIBOR3M Index = "EURIBOR3M"
	EURIBOR6M Index = "EURIBOR6M"
	TIBOR3M   Index = "TIBOR3M"
	TIBOR6M   Index = "TIBOR6M"
	CD91      Index = "CD91"
)

// ParseIndex accepts index names in any case; "CD91D" is an alias of CD91.
func ParseIndex(s string) (Index, error) {
	idx := Index(strings.ToUpper(strings.TrimSpace(s)))
	if idx == "CD91D" {
		idx = CD91
	}
	if _, ok := conventions[idx]; !ok {
		return "", fmt.Errorf("ParseIndex: unknown index %q", s)
	}
	return idx, nil
}

// IsOvernight reports whether the index is an overnight rate used for OIS discounting.
func (i Index) IsOvernight() bool {
	switch i {
	case ESTR, TONAR, SOFR:
		return true
	default:
		return false
	}
}
