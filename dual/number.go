// Package dual implements forward-mode automatic differentiation for curve calibration.
//
// A Number carries a real value, a sparse gradient keyed by variable tag and, for
// second-order numbers, a Hessian over the same tags. Every operation returns a new
// Number; tags are kept sorted so that two numbers built independently can always be
// merged onto the union of their variables.
//
// Supported operations and their derivatives:
//   - Add, Sub: ∇(a±b) = ∇a ± ∇b
//   - Mul: ∇(ab) = b∇a + a∇b, H(ab) = bHa + aHb + ∇a∇bᵀ + ∇b∇aᵀ
//   - Div, Inv: 1/x has first derivative -1/x² and second 2/x³
//   - Exp, Log, Pow, Sqrt: unary chain rule ∇f = f′∇x, Hf = f′Hx + f″∇x∇xᵀ
package dual

import (
	"fmt"
	"sort"
	"strings"
)

// Number is a real value with first (and optionally second) order derivatives.
//
// The zero value is the constant 0.
type Number struct {
	real   float64
	vars   []string  // sorted, never mutated after construction
	grad   []float64 // aligned with vars
	hess   []float64 // row-major len(vars)×len(vars), nil unless second
	second bool
}

// Constant returns a first-order number with no variables.
func Constant(v float64) Number {
	return Number{real: v}
}

// Variable returns a first-order number with unit gradient on tag.
func Variable(v float64, tag string) Number {
	return Number{real: v, vars: []string{tag}, grad: []float64{1}}
}

// Variable2 returns a second-order number with unit gradient on tag and zero Hessian.
func Variable2(v float64, tag string) Number {
	return Number{real: v, vars: []string{tag}, grad: []float64{1}, hess: []float64{0}, second: true}
}

// FromGradient builds a first-order number from an explicit gradient map.
func FromGradient(v float64, grad map[string]float64) Number {
	vars := make([]string, 0, len(grad))
	for tag := range grad {
		vars = append(vars, tag)
	}
	sort.Strings(vars)
	g := make([]float64, len(vars))
	for i, tag := range vars {
		g[i] = grad[tag]
	}
	return Number{real: v, vars: vars, grad: g}
}

// Real returns the real part.
func (x Number) Real() float64 {
	return x.real
}

// Order returns 2 for second-order numbers and 1 otherwise.
func (x Number) Order() int {
	if x.second {
		return 2
	}
	return 1
}

// Vars returns a copy of the variable tags in canonical (sorted) order.
func (x Number) Vars() []string {
	out := make([]string, len(x.vars))
	copy(out, x.vars)
	return out
}

// Gradient returns partial derivatives aligned with tags. With no tags it returns the
// gradient over x's own variables in canonical order.
func (x Number) Gradient(tags ...string) []float64 {
	if len(tags) == 0 {
		out := make([]float64, len(x.grad))
		copy(out, x.grad)
		return out
	}
	out := make([]float64, len(tags))
	for i, tag := range tags {
		out[i] = x.Gradient1(tag)
	}
	return out
}

// Gradient1 returns ∂x/∂tag, zero when tag is absent.
func (x Number) Gradient1(tag string) float64 {
	if i, ok := x.index(tag); ok {
		return x.grad[i]
	}
	return 0
}

// Hessian2 returns ∂²x/∂a∂b, zero for first-order numbers or absent tags.
func (x Number) Hessian2(a, b string) float64 {
	if !x.second {
		return 0
	}
	i, ok := x.index(a)
	if !ok {
		return 0
	}
	j, ok := x.index(b)
	if !ok {
		return 0
	}
	return x.hess[i*len(x.vars)+j]
}

// ToOrder converts x to the requested order. Downgrading drops the Hessian.
func (x Number) ToOrder(order int) Number {
	switch {
	case order >= 2 && !x.second:
		n := len(x.vars)
		return Number{real: x.real, vars: x.vars, grad: x.grad, hess: make([]float64, n*n), second: true}
	case order < 2 && x.second:
		return Number{real: x.real, vars: x.vars, grad: x.grad}
	default:
		return x
	}
}

// String formats x as <Dual: real, (tags), [grad]>.
func (x Number) String() string {
	kind := "Dual"
	if x.second {
		kind = "Dual2"
	}
	g := make([]string, len(x.grad))
	for i, v := range x.grad {
		g[i] = fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("<%s: %.12g, (%s), [%s]>", kind, x.real, strings.Join(x.vars, ", "), strings.Join(g, ", "))
}

func (x Number) index(tag string) (int, bool) {
	i := sort.SearchStrings(x.vars, tag)
	if i < len(x.vars) && x.vars[i] == tag {
		return i, true
	}
	return 0, false
}

// Less reports whether a < b on real parts.
func Less(a, b Number) bool {
	return a.real < b.real
}

// Equal reports whether a and b have equal real parts. Derivatives are ignored.
func Equal(a, b Number) bool {
	return a.real == b.real
}

// Compare returns -1, 0 or +1 comparing real parts.
func Compare(a, b Number) int {
	switch {
	case a.real < b.real:
		return -1
	case a.real > b.real:
		return 1
	default:
		return 0
	}
}
