package instrument

import (
	"fmt"

	"github.com/meenmo/ratecal/curve"
	"github.com/meenmo/ratecal/dual"
	"github.com/meenmo/ratecal/solver"
)

// Spread is the difference rate(A) - rate(B) of two percent-quoted instruments, in basis
// points. It calibrates spread curves inside composites.
type Spread struct {
	Name string
	A    solver.Instrument
	B    solver.Instrument
}

// Rate returns (rate(A) - rate(B))·100.
func (s *Spread) Rate(curves curve.Set) (dual.Number, error) {
	a, err := s.A.Rate(curves)
	if err != nil {
		return dual.Number{}, fmt.Errorf("spread %s: %w", s.Label(), err)
	}
	b, err := s.B.Rate(curves)
	if err != nil {
		return dual.Number{}, fmt.Errorf("spread %s: %w", s.Label(), err)
	}
	return dual.MulScalar(dual.Sub(a, b), 100), nil
}

// Label returns Name, or one built from the legs' labels.
func (s *Spread) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("%s vs %s", label(s.A), label(s.B))
}

func label(inst solver.Instrument) string {
	if l, ok := inst.(solver.Labeler); ok {
		return l.Label()
	}
	return fmt.Sprintf("%T", inst)
}
