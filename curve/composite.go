package curve

import (
	"fmt"

	"github.com/meenmo/ratecal/dual"
)

// Composition combines constituent discount factors into a composite one.
type Composition string

const (
	// Product multiplies each constituent's discount factor relative to its anchor value:
	// Π vᵢ(x)/vᵢ(anchor).
	Product Composition = "product"

	// LogSum computes exp(Σ ln(vᵢ(x)/vᵢ(anchor))). The real value equals Product; every
	// ratio must be positive.
	LogSum Composition = "log_sum"
)

// Composite is a curve derived from several curves sharing one anchor. Its discount
// factors carry sensitivities to every constituent's node variables.
type Composite struct {
	id     string
	curves []DiscountCurve
	comp   Composition
	anchor float64
}

// CompositeOption configures a Composite.
type CompositeOption func(c *Composite)

// WithComposition sets the combining function. The default is Product.
func WithComposition(comp Composition) CompositeOption {
	return func(c *Composite) {
		c.comp = comp
	}
}

// NewComposite builds a composite curve over curves.
func NewComposite(id string, curves []DiscountCurve, opts ...CompositeOption) (*Composite, error) {
	if id == "" {
		return nil, fmt.Errorf("NewComposite: %w", ErrEmptyID)
	}
	if len(curves) == 0 {
		return nil, fmt.Errorf("NewComposite %s: %w", id, ErrNoConstituents)
	}

	c := &Composite{
		id:     id,
		curves: append([]DiscountCurve(nil), curves...),
		comp:   Product,
		anchor: curves[0].Anchor(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.comp != Product && c.comp != LogSum {
		return nil, fmt.Errorf("NewComposite %s: %q: %w", id, c.comp, ErrUnknownComposition)
	}
	for _, crv := range curves[1:] {
		if crv.Anchor() != c.anchor {
			return nil, fmt.Errorf("NewComposite %s: %s anchored at %g, %s at %g: %w",
				id, curves[0].ID(), c.anchor, crv.ID(), crv.Anchor(), ErrAnchorMismatch)
		}
	}
	return c, nil
}

// ID returns the composite identifier.
func (c *Composite) ID() string {
	return c.id
}

// Anchor returns the shared anchor position.
func (c *Composite) Anchor() float64 {
	return c.anchor
}

// Curves returns the constituents in construction order.
func (c *Composite) Curves() []DiscountCurve {
	return append([]DiscountCurve(nil), c.curves...)
}

// ValueAt returns the composed discount factor at position.
func (c *Composite) ValueAt(position float64) (dual.Number, error) {
	ratios := make([]dual.Number, len(c.curves))
	for i, crv := range c.curves {
		v, err := crv.ValueAt(position)
		if err != nil {
			return dual.Number{}, fmt.Errorf("ValueAt %s: %w", c.id, err)
		}
		a, err := crv.ValueAt(c.anchor)
		if err != nil {
			return dual.Number{}, fmt.Errorf("ValueAt %s: %w", c.id, err)
		}
		ratios[i], err = dual.Div(v, a)
		if err != nil {
			return dual.Number{}, fmt.Errorf("ValueAt %s: %s anchor value: %w", c.id, crv.ID(), err)
		}
	}

	switch c.comp {
	case LogSum:
		logs := make([]dual.Number, len(ratios))
		for i, r := range ratios {
			l, err := dual.Log(r)
			if err != nil {
				return dual.Number{}, fmt.Errorf("ValueAt %s: %s: %w", c.id, c.curves[i].ID(), err)
			}
			logs[i] = l
		}
		return dual.Exp(dual.Sum(logs...)), nil
	default:
		out := ratios[0]
		for _, r := range ratios[1:] {
			out = dual.Mul(out, r)
		}
		return out, nil
	}
}
