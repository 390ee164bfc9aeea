// Package instrument provides calibratable instruments priced off a curve set: deposits,
// fixed-versus-float par swaps and spreads between two instruments.
//
// Rates are returned in percent, spreads in basis points.
package instrument

import (
	"fmt"
	"time"

	"github.com/meenmo/ratecal/curve"
	"github.com/meenmo/ratecal/dual"
	"github.com/meenmo/ratecal/solver"
	"github.com/meenmo/ratecal/utils"
)

var (
	_ solver.Instrument = (*Deposit)(nil)
	_ solver.Labeler    = (*Deposit)(nil)
)

// Deposit is a single-period money market deposit quoted as a simple rate.
type Deposit struct {
	Name  string
	Curve string

	// Start and End are curve positions (days from the anchor).
	Start float64
	End   float64

	// Basis is the day-count year length. Defaults to 360.
	Basis float64
}

// NewDeposit builds a deposit between two dates, measured from the curve anchor date.
func NewDeposit(curveID string, anchor, start, end time.Time, dc utils.DayCount) *Deposit {
	return &Deposit{
		Curve: curveID,
		Start: utils.Position(anchor, start),
		End:   utils.Position(anchor, end),
		Basis: dc.Basis(),
	}
}

// Rate returns (DF(start)/DF(end) - 1)/((end-start)/basis) in percent.
func (d *Deposit) Rate(curves curve.Set) (dual.Number, error) {
	c, err := curves.Get(d.Curve)
	if err != nil {
		return dual.Number{}, fmt.Errorf("deposit %s: %w", d.Label(), err)
	}
	basis := d.Basis
	if basis == 0 {
		basis = 360
	}
	r, err := curve.ForwardRate(c, d.Start, d.End, basis)
	if err != nil {
		return dual.Number{}, fmt.Errorf("deposit %s: %w", d.Label(), err)
	}
	return dual.MulScalar(r, 100), nil
}

// Label returns Name, or the curve and period when Name is empty.
func (d *Deposit) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("%s deposit %g-%g", d.Curve, d.Start, d.End)
}
