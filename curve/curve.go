// Package curve provides interpolated discount curves whose node values are AD numbers,
// composite curves built from them, and the curve set instruments are priced against.
//
// Positions are plain ordered numbers, conventionally days from the anchor date (see
// utils.Position). The first node is the anchor and is held fixed at its initial value
// unless WithFreeAnchor is given.
package curve

import (
	"fmt"
	"math"
	"sync"

	"github.com/meenmo/ratecal/dual"
)

// DiscountCurve is anything that can produce a discount factor at a position.
type DiscountCurve interface {
	ID() string
	Anchor() float64
	ValueAt(position float64) (dual.Number, error)
}

// Node is a calibration point of a Curve.
type Node struct {
	Position float64
	Value    dual.Number
	Fixed    bool
}

// Curve is an ordered set of nodes with an interpolation strategy.
//
// Node values change only through SetNodes. Reads and writes are guarded so that a
// curve may be queried while a solver owns it; a solver only writes between pricing
// passes.
type Curve struct {
	id         string
	interp     Interpolation
	order      int
	freeAnchor bool
	fixedIdx   []int

	mu        sync.RWMutex
	positions []float64
	values    []float64
	fixed     []bool
	nodes     []dual.Number
}

// Option configures a Curve.
type Option func(c *Curve)

// WithInterpolation sets the interpolation strategy. The default is LogLinear.
func WithInterpolation(interp Interpolation) Option {
	return func(c *Curve) {
		c.interp = interp
	}
}

// WithOrder sets the AD order of node variables (1 or 2).
func WithOrder(order int) Option {
	return func(c *Curve) {
		c.order = order
	}
}

// WithFixed marks additional nodes as fixed: they carry no variable and are never
// calibrated.
func WithFixed(indices ...int) Option {
	return func(c *Curve) {
		c.fixedIdx = append(c.fixedIdx, indices...)
	}
}

// WithFreeAnchor makes the anchor node a calibration variable.
func WithFreeAnchor() Option {
	return func(c *Curve) {
		c.freeAnchor = true
	}
}

// New builds a curve from node positions and initial values.
func New(id string, positions, values []float64, opts ...Option) (*Curve, error) {
	c := &Curve{
		id:     id,
		interp: LogLinear,
		order:  1,
	}
	for _, opt := range opts {
		opt(c)
	}

	if id == "" {
		return nil, fmt.Errorf("New: %w", ErrEmptyID)
	}
	if !c.interp.valid() {
		return nil, fmt.Errorf("New %s: %q: %w", id, c.interp, ErrUnknownInterpolation)
	}
	if len(positions) != len(values) {
		return nil, fmt.Errorf("New %s: %d positions, %d values: %w", id, len(positions), len(values), ErrNodeCount)
	}
	if len(positions) < 2 && !(c.interp == Null && len(positions) == 1) {
		return nil, fmt.Errorf("New %s: %d node(s) with %s interpolation: %w", id, len(positions), c.interp, ErrTooFewNodes)
	}
	for i, p := range positions {
		if math.IsNaN(p) || math.IsInf(p, 0) || math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			return nil, fmt.Errorf("New %s: node %d: %w", id, i, ErrInvalidPosition)
		}
		if i > 0 && p <= positions[i-1] {
			return nil, fmt.Errorf("New %s: node %d at %g after %g: %w", id, i, p, positions[i-1], ErrNotMonotonic)
		}
	}

	c.positions = append([]float64(nil), positions...)
	c.values = append([]float64(nil), values...)
	c.fixed = make([]bool, len(positions))
	c.fixed[0] = !c.freeAnchor
	for _, i := range c.fixedIdx {
		if i < 0 || i >= len(positions) {
			return nil, fmt.Errorf("New %s: fixed node %d: %w", id, i, ErrNodeIndex)
		}
		c.fixed[i] = true
	}
	c.rebuild()
	return c, nil
}

// rebuild recreates node numbers from values. Callers hold the write lock or own c.
func (c *Curve) rebuild() {
	nodes := make([]dual.Number, len(c.values))
	for i, v := range c.values {
		switch {
		case c.fixed[i]:
			nodes[i] = dual.Constant(v).ToOrder(c.order)
		case c.order >= 2:
			nodes[i] = dual.Variable2(v, c.tag(i))
		default:
			nodes[i] = dual.Variable(v, c.tag(i))
		}
	}
	c.nodes = nodes
}

func (c *Curve) tag(i int) string {
	return fmt.Sprintf("%s%d", c.id, i)
}

// ID returns the curve identifier.
func (c *Curve) ID() string {
	return c.id
}

// Anchor returns the first node position.
func (c *Curve) Anchor() float64 {
	return c.positions[0]
}

// Interpolation returns the interpolation strategy.
func (c *Curve) Interpolation() Interpolation {
	return c.interp
}

// Order returns the AD order of node values.
func (c *Curve) Order() int {
	return c.order
}

// Len returns the number of nodes.
func (c *Curve) Len() int {
	return len(c.positions)
}

// Positions returns a copy of the node positions.
func (c *Curve) Positions() []float64 {
	return append([]float64(nil), c.positions...)
}

// Values returns a copy of the current node values.
func (c *Curve) Values() []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]float64(nil), c.values...)
}

// Nodes returns a copy of the current nodes.
func (c *Curve) Nodes() []Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Node, len(c.nodes))
	for i, n := range c.nodes {
		out[i] = Node{Position: c.positions[i], Value: n, Fixed: c.fixed[i]}
	}
	return out
}

// FreeVars returns the variable tags of non-fixed nodes in node order.
func (c *Curve) FreeVars() []string {
	var tags []string
	for i, f := range c.fixed {
		if !f {
			tags = append(tags, c.tag(i))
		}
	}
	return tags
}

// FreeIndices returns the indices of non-fixed nodes.
func (c *Curve) FreeIndices() []int {
	var idx []int
	for i, f := range c.fixed {
		if !f {
			idx = append(idx, i)
		}
	}
	return idx
}

// SetNodes replaces every node value. Positions and node count are unchanged.
func (c *Curve) SetNodes(values []float64) error {
	if len(values) != len(c.positions) {
		return fmt.Errorf("SetNodes %s: %d values for %d nodes: %w", c.id, len(values), len(c.positions), ErrNodeCount)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("SetNodes %s: node %d: %w", c.id, i, ErrInvalidPosition)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	copy(c.values, values)
	c.rebuild()
	return nil
}

// ValueAt returns the discount factor at position.
func (c *Curve) ValueAt(position float64) (dual.Number, error) {
	if math.IsNaN(position) || math.IsInf(position, 0) {
		return dual.Number{}, fmt.Errorf("ValueAt %s: %w", c.id, ErrInvalidPosition)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	v, err := c.interpolate(position)
	if err != nil {
		return dual.Number{}, fmt.Errorf("ValueAt %s at %g: %w", c.id, position, err)
	}
	return v, nil
}

// ZeroRate returns the continuously compounded zero rate to position, with time measured
// as (position - anchor)/basis.
func ZeroRate(c DiscountCurve, position, basis float64) (dual.Number, error) {
	df, err := c.ValueAt(position)
	if err != nil {
		return dual.Number{}, err
	}
	return dual.ZeroRate(df, (position-c.Anchor())/basis)
}

// ForwardRate returns the simple forward rate between start and end with accrual
// (end - start)/basis, as a decimal.
func ForwardRate(c DiscountCurve, start, end, basis float64) (dual.Number, error) {
	dfStart, err := c.ValueAt(start)
	if err != nil {
		return dual.Number{}, err
	}
	dfEnd, err := c.ValueAt(end)
	if err != nil {
		return dual.Number{}, err
	}
	return dual.SimpleRate(dfStart, dfEnd, (end-start)/basis)
}
