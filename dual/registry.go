package dual

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Registry maps each free calibration variable to its column in the global unknown
// vector. It is built once per calibration run and never modified afterwards, so it is
// safe for concurrent use.
//
// Unification of two numbers merges their tags lexicographically; the registry order is
// only the column order of Gradient, Jacobian and Hessian (curve by curve, node by node).
type Registry struct {
	tags  []string
	index map[string]int
}

// NewRegistry builds a registry over tags in the given order.
func NewRegistry(tags ...string) (*Registry, error) {
	r := &Registry{
		tags:  make([]string, 0, len(tags)),
		index: make(map[string]int, len(tags)),
	}
	for _, tag := range tags {
		if tag == "" {
			return nil, fmt.Errorf("NewRegistry: %w", ErrEmptyTag)
		}
		if _, ok := r.index[tag]; ok {
			return nil, fmt.Errorf("NewRegistry: %q: %w", tag, ErrDuplicateVariable)
		}
		r.index[tag] = len(r.tags)
		r.tags = append(r.tags, tag)
	}
	return r, nil
}

// Len returns the number of registered variables.
func (r *Registry) Len() int {
	return len(r.tags)
}

// Tags returns a copy of the registered tags in registry order.
func (r *Registry) Tags() []string {
	out := make([]string, len(r.tags))
	copy(out, r.tags)
	return out
}

// Index returns the column of tag.
func (r *Registry) Index(tag string) (int, bool) {
	i, ok := r.index[tag]
	return i, ok
}

// Gradient returns x's gradient as a dense vector in registry order. Derivatives with
// respect to unregistered tags are dropped: they are not unknowns of this run.
func (r *Registry) Gradient(x Number) []float64 {
	out := make([]float64, len(r.tags))
	for i, tag := range x.vars {
		if j, ok := r.index[tag]; ok {
			out[j] = x.grad[i]
		}
	}
	return out
}

// Jacobian stacks the registry-ordered gradients of xs into a len(xs)×Len() matrix.
func (r *Registry) Jacobian(xs []Number) *mat.Dense {
	if len(xs) == 0 || len(r.tags) == 0 {
		return &mat.Dense{}
	}
	jac := mat.NewDense(len(xs), len(r.tags), nil)
	for row, x := range xs {
		jac.SetRow(row, r.Gradient(x))
	}
	return jac
}

// Hessian returns x's Hessian in registry order. First-order numbers yield a zero matrix.
func (r *Registry) Hessian(x Number) *mat.SymDense {
	n := len(r.tags)
	if n == 0 {
		return &mat.SymDense{}
	}
	h := mat.NewSymDense(n, nil)
	if !x.second {
		return h
	}
	m := len(x.vars)
	for i, a := range x.vars {
		ja, ok := r.index[a]
		if !ok {
			continue
		}
		for k := i; k < m; k++ {
			jb, ok := r.index[x.vars[k]]
			if !ok {
				continue
			}
			h.SetSym(ja, jb, x.hess[i*m+k])
		}
	}
	return h
}
