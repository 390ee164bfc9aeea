package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/ratecal/calendar"
	"github.com/meenmo/ratecal/curve"
	"github.com/meenmo/ratecal/instrument"
	"github.com/meenmo/ratecal/market"
	"github.com/meenmo/ratecal/solver"
	"github.com/meenmo/ratecal/utils"
)

// Model is a problem resolved against its calendar: curves with dated nodes and priced
// instruments, ready for solver.New.
type Model struct {
	Anchor  time.Time
	Options solver.Options

	// Dates holds the node dates of each calibrated curve by curve ID.
	Dates map[string][]time.Time

	Risk []solver.Instrument
}

type builder struct {
	anchor time.Time
	cal    calendar.ID
	dc     utils.DayCount
}

// Build resolves tenors to dates and constructs curves and instruments.
func (p *Problem) Build() (*Model, error) {
	anchor, err := utils.ParseDate(p.Anchor)
	if err != nil {
		return nil, fmt.Errorf("invalid anchor: %w", err)
	}
	cal, err := calendar.ParseID(p.Calendar)
	if err != nil {
		return nil, err
	}
	dc, err := utils.ParseDayCount(p.DayCount)
	if err != nil {
		return nil, err
	}
	b := builder{anchor: anchor, cal: cal, dc: dc}

	m := &Model{
		Anchor: anchor,
		Dates:  make(map[string][]time.Time, len(p.Curves)),
		Options: solver.Options{
			Config: solver.Config{
				Tolerance:     p.Tolerance,
				MaxIterations: p.MaxIterations,
				Lambda:        p.Lambda,
			},
			ID:              p.ID,
			Algorithm:       solver.Algorithm(strings.ToLower(p.Algorithm)),
			Underdetermined: solver.Underdetermined(strings.ToLower(p.Underdetermined)),
			Workers:         p.Workers,
		},
	}

	if len(p.Curves) == 0 {
		return nil, fmt.Errorf("curves is required")
	}
	known := make(map[string]curve.DiscountCurve)
	for _, spec := range p.Curves {
		c, dates, err := b.curve(spec)
		if err != nil {
			return nil, err
		}
		if _, dup := known[c.ID()]; dup {
			return nil, fmt.Errorf("curve %q: %w", c.ID(), curve.ErrDuplicateID)
		}
		known[c.ID()] = c
		m.Options.Curves = append(m.Options.Curves, c)
		m.Dates[c.ID()] = dates
	}

	for _, spec := range p.Composites {
		comp, err := compose(spec, known)
		if err != nil {
			return nil, err
		}
		if _, dup := known[comp.ID()]; dup {
			return nil, fmt.Errorf("composite %q: %w", comp.ID(), curve.ErrDuplicateID)
		}
		known[comp.ID()] = comp
		m.Options.Extra = append(m.Options.Extra, comp)
	}

	if len(p.Instruments) == 0 {
		return nil, fmt.Errorf("instruments is required")
	}
	for i, spec := range p.Instruments {
		inst, err := b.instrument(spec)
		if err != nil {
			return nil, fmt.Errorf("instrument %d: %w", i, err)
		}
		m.Options.Instruments = append(m.Options.Instruments, inst)
		m.Options.Targets = append(m.Options.Targets, spec.Quote)
	}
	for i, spec := range p.Risk {
		inst, err := b.instrument(spec)
		if err != nil {
			return nil, fmt.Errorf("risk %d: %w", i, err)
		}
		m.Risk = append(m.Risk, inst)
	}
	return m, nil
}

func (b builder) curve(spec CurveSpec) (*curve.Curve, []time.Time, error) {
	interp, err := curve.ParseInterpolation(spec.Interpolation)
	if err != nil {
		return nil, nil, fmt.Errorf("curve %q: %w", spec.ID, err)
	}

	dates := []time.Time{b.anchor}
	positions := []float64{0}
	for _, tenor := range spec.Tenors {
		d, err := calendar.AddTenor(b.cal, b.anchor, tenor)
		if err != nil {
			return nil, nil, fmt.Errorf("curve %q: %w", spec.ID, err)
		}
		dates = append(dates, d)
		positions = append(positions, utils.Position(b.anchor, d))
	}

	values := spec.Values
	if len(values) == 0 {
		values = make([]float64, len(positions))
		for i := range values {
			values[i] = 1
		}
	}

	c, err := curve.New(spec.ID, positions, values, curve.WithInterpolation(interp))
	if err != nil {
		return nil, nil, err
	}
	return c, dates, nil
}

func compose(spec CompositeSpec, known map[string]curve.DiscountCurve) (*curve.Composite, error) {
	parts := make([]curve.DiscountCurve, 0, len(spec.Curves))
	for _, id := range spec.Curves {
		c, ok := known[id]
		if !ok {
			return nil, fmt.Errorf("composite %q: curve %q: %w", spec.ID, id, curve.ErrCurveNotFound)
		}
		parts = append(parts, c)
	}

	var opts []curve.CompositeOption
	if spec.Composition != "" {
		opts = append(opts, curve.WithComposition(curve.Composition(strings.ToLower(spec.Composition))))
	}
	return curve.NewComposite(spec.ID, parts, opts...)
}

func (b builder) instrument(spec InstrumentSpec) (solver.Instrument, error) {
	switch strings.ToLower(strings.TrimSpace(spec.Type)) {
	case "deposit":
		return b.deposit(spec)
	case "swap":
		return b.swap(spec)
	case "spread":
		if spec.A == nil || spec.B == nil {
			return nil, fmt.Errorf("spread requires a and b")
		}
		a, err := b.instrument(*spec.A)
		if err != nil {
			return nil, fmt.Errorf("spread leg a: %w", err)
		}
		bb, err := b.instrument(*spec.B)
		if err != nil {
			return nil, fmt.Errorf("spread leg b: %w", err)
		}
		return &instrument.Spread{Name: spec.Label, A: a, B: bb}, nil
	default:
		return nil, fmt.Errorf("unknown instrument type %q (deposit, swap or spread)", spec.Type)
	}
}

// terms are an instrument's dates and conventions after index defaults and overrides.
type terms struct {
	cal      calendar.ID
	dc       utils.DayCount
	freq     int
	payDelay int
	start    time.Time
}

func (b builder) terms(spec InstrumentSpec) (terms, error) {
	t := terms{cal: b.cal, dc: b.dc, freq: 12}
	spot := b.anchor
	if strings.TrimSpace(spec.Index) != "" {
		idx, err := market.ParseIndex(spec.Index)
		if err != nil {
			return terms{}, err
		}
		conv, err := market.Lookup(idx)
		if err != nil {
			return terms{}, err
		}
		t.cal, t.dc, t.freq, t.payDelay = conv.Calendar, conv.DayCount, conv.FrequencyMonths, conv.PayDelayDays
		spot = calendar.AddBusinessDays(conv.Calendar, b.anchor, conv.SpotLagDays)
	}

	if strings.TrimSpace(spec.DayCount) != "" {
		dc, err := utils.ParseDayCount(spec.DayCount)
		if err != nil {
			return terms{}, err
		}
		t.dc = dc
	}
	if strings.TrimSpace(spec.Frequency) != "" {
		freq, err := tenorMonths(spec.Frequency)
		if err != nil {
			return terms{}, fmt.Errorf("frequency: %w", err)
		}
		t.freq = freq
	}
	if spec.PayDelay != nil {
		t.payDelay = *spec.PayDelay
	}

	t.start = spot
	if strings.TrimSpace(spec.Start) != "" {
		start, err := calendar.AddTenor(t.cal, spot, spec.Start)
		if err != nil {
			return terms{}, err
		}
		t.start = start
	}
	return t, nil
}

func (b builder) deposit(spec InstrumentSpec) (*instrument.Deposit, error) {
	if spec.Curve == "" {
		return nil, fmt.Errorf("deposit requires curve")
	}
	t, err := b.terms(spec)
	if err != nil {
		return nil, err
	}
	end, err := calendar.AddTenor(t.cal, t.start, spec.Tenor)
	if err != nil {
		return nil, err
	}
	dep := instrument.NewDeposit(spec.Curve, b.anchor, t.start, end, t.dc)
	dep.Name = spec.Label
	return dep, nil
}

func (b builder) swap(spec InstrumentSpec) (*instrument.Swap, error) {
	if spec.Discount == "" {
		return nil, fmt.Errorf("swap requires discount")
	}
	t, err := b.terms(spec)
	if err != nil {
		return nil, err
	}
	months, err := tenorMonths(spec.Tenor)
	if err != nil {
		return nil, err
	}

	schedule, err := instrument.BuildSchedule(instrument.ScheduleConfig{
		Anchor:          b.anchor,
		Effective:       t.start,
		Maturity:        utils.AddMonth(t.start, months),
		FrequencyMonths: t.freq,
		Calendar:        t.cal,
		DayCount:        t.dc,
		PayDelay:        t.payDelay,
		EndOfMonth:      spec.EndOfMonth,
	})
	if err != nil {
		return nil, err
	}
	return &instrument.Swap{
		Name:          spec.Label,
		DiscountCurve: spec.Discount,
		ForecastCurve: spec.Forecast,
		Schedule:      schedule,
	}, nil
}

func tenorMonths(tenor string) (int, error) {
	n, unit, err := utils.ParseTenor(tenor)
	if err != nil {
		return 0, err
	}
	switch unit {
	case utils.Month:
		return n, nil
	case utils.Year:
		return 12 * n, nil
	default:
		return 0, fmt.Errorf("tenor %q must be in months or years", tenor)
	}
}
