package curve

import (
	"fmt"
	"sort"
)

// Set maps curve identifiers to curves. Instruments price against a Set.
type Set map[string]DiscountCurve

// NewSet indexes curves by ID.
func NewSet(curves ...DiscountCurve) (Set, error) {
	s := make(Set, len(curves))
	for _, c := range curves {
		if c == nil {
			return nil, fmt.Errorf("NewSet: %w", ErrNilCurve)
		}
		if _, ok := s[c.ID()]; ok {
			return nil, fmt.Errorf("NewSet: %q: %w", c.ID(), ErrDuplicateID)
		}
		s[c.ID()] = c
	}
	return s, nil
}

// Get returns the curve with the given id.
func (s Set) Get(id string) (DiscountCurve, error) {
	c, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("curve %q: %w", id, ErrCurveNotFound)
	}
	return c, nil
}

// IDs returns the curve identifiers in sorted order.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
