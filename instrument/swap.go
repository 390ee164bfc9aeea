package instrument

import (
	"errors"
	"fmt"

	"github.com/meenmo/ratecal/curve"
	"github.com/meenmo/ratecal/dual"
	"github.com/meenmo/ratecal/solver"
)

var (
	_ solver.Instrument = (*Swap)(nil)
	_ solver.Instrument = (*Spread)(nil)
)

// Swap is a fixed-versus-float swap quoted as its par fixed rate. Both legs share one
// schedule; the float leg projects simple forwards off ForecastCurve.
type Swap struct {
	Name          string
	DiscountCurve string
	ForecastCurve string // defaults to DiscountCurve
	Schedule      []Period
}

// Rate returns Σ DF(pᵢ)·fwdᵢ·τᵢ / Σ DF(pᵢ)·τᵢ in percent. With a single curve this is
// the OIS par rate.
func (s *Swap) Rate(curves curve.Set) (dual.Number, error) {
	if len(s.Schedule) == 0 {
		return dual.Number{}, fmt.Errorf("swap %s: %w", s.Label(), ErrInvalidSchedule)
	}
	disc, err := curves.Get(s.DiscountCurve)
	if err != nil {
		return dual.Number{}, fmt.Errorf("swap %s: %w", s.Label(), err)
	}
	fcst := disc
	if s.ForecastCurve != "" && s.ForecastCurve != s.DiscountCurve {
		if fcst, err = curves.Get(s.ForecastCurve); err != nil {
			return dual.Number{}, fmt.Errorf("swap %s: %w", s.Label(), err)
		}
	}

	var float, annuity dual.Number
	for i, p := range s.Schedule {
		df, err := disc.ValueAt(p.Payment)
		if err != nil {
			return dual.Number{}, fmt.Errorf("swap %s period %d: %w", s.Label(), i, err)
		}
		start, err := fcst.ValueAt(p.AccrualStart)
		if err != nil {
			return dual.Number{}, fmt.Errorf("swap %s period %d: %w", s.Label(), i, err)
		}
		end, err := fcst.ValueAt(p.AccrualEnd)
		if err != nil {
			return dual.Number{}, fmt.Errorf("swap %s period %d: %w", s.Label(), i, err)
		}
		// fwd·τ = DF(start)/DF(end) - 1
		growth, err := dual.Div(start, end)
		if err != nil {
			return dual.Number{}, fmt.Errorf("swap %s period %d: %w", s.Label(), i, err)
		}
		float = dual.Add(float, dual.Mul(df, dual.AddScalar(growth, -1)))
		annuity = dual.Add(annuity, dual.MulScalar(df, p.Accrual))
	}

	rate, err := dual.Div(float, annuity)
	if err != nil {
		return dual.Number{}, fmt.Errorf("swap %s: annuity: %w", s.Label(), errors.Join(err, ErrInvalidSchedule))
	}
	return dual.MulScalar(rate, 100), nil
}

// Label returns Name, or the curves and final payment position.
func (s *Swap) Label() string {
	if s.Name != "" {
		return s.Name
	}
	last := 0.0
	if n := len(s.Schedule); n > 0 {
		last = s.Schedule[n-1].Payment
	}
	fcst := s.ForecastCurve
	if fcst == "" {
		fcst = s.DiscountCurve
	}
	return fmt.Sprintf("%s/%s swap %g", s.DiscountCurve, fcst, last)
}
