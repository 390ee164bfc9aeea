package curve

import (
	"fmt"
	"strings"

	"github.com/meenmo/ratecal/dual"
)

// Interpolation selects how a curve is valued between and beyond its nodes.
//
// Between bracketing nodes (x1, v1), (x2, v2) with w = (x-x1)/(x2-x1):
//   - Linear: v1 + (v2-v1)·w; extrapolation extends the boundary segment's slope.
//   - LogLinear: exp(ln v1 + (ln v2 - ln v1)·w); extrapolation extends the boundary
//     segment's log-slope.
//   - FlatForward: holds the forward f = ln(v1/v2)/(x2-x1) implied by the next node,
//     v1·exp(-f·(x-x1)); extrapolation holds the boundary segment's forward. On a
//     discount curve this agrees with LogLinear.
//   - FlatBackward: takes the right node's value; extrapolation holds the boundary value.
//   - LinearZeroRate: linear in z = -ln(v)/(x - anchor); a segment starting at the
//     anchor uses the right node's rate on both ends. Extrapolation extends the rate slope.
//   - Null: values only at nodes. A single-node Null curve is constant.
type Interpolation string

const (
	Linear         Interpolation = "linear"
	LogLinear      Interpolation = "log_linear"
	FlatForward    Interpolation = "flat_forward"
	FlatBackward   Interpolation = "flat_backward"
	LinearZeroRate Interpolation = "linear_zero_rate"
	Null           Interpolation = "null"
)

var interpolations = []Interpolation{Linear, LogLinear, FlatForward, FlatBackward, LinearZeroRate, Null}

// ParseInterpolation accepts names like "log_linear", "LogLinear" or "log-linear".
func ParseInterpolation(s string) (Interpolation, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch norm {
	case "loglinear":
		norm = string(LogLinear)
	case "flatforward":
		norm = string(FlatForward)
	case "flatbackward":
		norm = string(FlatBackward)
	case "linearzerorate":
		norm = string(LinearZeroRate)
	case "":
		return LogLinear, nil
	}
	for _, interp := range interpolations {
		if string(interp) == norm {
			return interp, nil
		}
	}
	return "", fmt.Errorf("ParseInterpolation: %q: %w", s, ErrUnknownInterpolation)
}

func (i Interpolation) valid() bool {
	for _, interp := range interpolations {
		if i == interp {
			return true
		}
	}
	return false
}

// interpolate values position under the read lock.
func (c *Curve) interpolate(x float64) (dual.Number, error) {
	if len(c.positions) == 1 {
		return c.nodes[0], nil
	}

	i, node, exact := findSegment(c.positions, x)
	if exact {
		return c.nodes[node], nil
	}

	x1, x2 := c.positions[i], c.positions[i+1]
	v1, v2 := c.nodes[i], c.nodes[i+1]
	w := (x - x1) / (x2 - x1)

	switch c.interp {
	case Linear:
		return dual.Add(dual.Scale(1-w, v1), dual.Scale(w, v2)), nil

	case LogLinear:
		l1, err := dual.Log(v1)
		if err != nil {
			return dual.Number{}, err
		}
		l2, err := dual.Log(v2)
		if err != nil {
			return dual.Number{}, err
		}
		return dual.Exp(dual.Add(dual.Scale(1-w, l1), dual.Scale(w, l2))), nil

	case FlatForward:
		ratio, err := dual.Div(v1, v2)
		if err != nil {
			return dual.Number{}, err
		}
		lr, err := dual.Log(ratio)
		if err != nil {
			return dual.Number{}, err
		}
		fwd := dual.Scale(1/(x2-x1), lr)
		return dual.Mul(v1, dual.Exp(dual.Scale(-(x-x1), fwd))), nil

	case FlatBackward:
		if x < x1 {
			return v1, nil
		}
		return v2, nil

	case LinearZeroRate:
		return c.linearZeroRate(x, i, w)

	case Null:
		return dual.Number{}, ErrNoInterpolation

	default:
		return dual.Number{}, ErrUnknownInterpolation
	}
}

func (c *Curve) linearZeroRate(x float64, i int, w float64) (dual.Number, error) {
	anchor := c.positions[0]
	z2, err := dual.ZeroRate(c.nodes[i+1], c.positions[i+1]-anchor)
	if err != nil {
		return dual.Number{}, err
	}
	z1 := z2
	if c.positions[i] != anchor {
		z1, err = dual.ZeroRate(c.nodes[i], c.positions[i]-anchor)
		if err != nil {
			return dual.Number{}, err
		}
	}
	z := dual.Add(dual.Scale(1-w, z1), dual.Scale(w, z2))
	return dual.DiscountFromZero(z, x-anchor), nil
}
