package solver

//go:generate mockgen -source=instrument.go -destination=mocks/mock_instrument.go -package=mocks

import (
	"github.com/meenmo/ratecal/curve"
	"github.com/meenmo/ratecal/dual"
)

// Instrument is anything whose market rate can be priced off a set of curves.
//
// Rate must be computed entirely with dual arithmetic so that its gradient references
// the node variables of the curves it reads. Rate is called concurrently with other
// instruments during a pricing pass and must not mutate the curves.
type Instrument interface {
	Rate(curves curve.Set) (dual.Number, error)
}

// Labeler is implemented by instruments that name themselves in diagnostics.
type Labeler interface {
	Label() string
}
