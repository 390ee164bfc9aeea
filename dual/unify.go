package dual

// unionVars merges two sorted tag lists. When both lists hold the same tags the first
// slice is returned unchanged so that repeated operations on one curve share storage.
func unionVars(a, b []string) []string {
	if sameVars(a, b) {
		return a
	}
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

func sameVars(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	if &a[0] == &b[0] {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// align expresses x's derivatives over vars, a sorted superset of x.vars. Missing
// entries are zero; a first-order x gets a zero Hessian when second is set.
func align(x Number, vars []string, second bool) (grad, hess []float64) {
	n := len(vars)
	if sameVars(x.vars, vars) {
		grad = x.grad
		if len(grad) != n {
			grad = make([]float64, n)
		}
		if second {
			hess = x.hess
			if !x.second || len(hess) != n*n {
				hess = make([]float64, n*n)
			}
		}
		return grad, hess
	}

	pos := make([]int, len(x.vars))
	j := 0
	for i, tag := range x.vars {
		for vars[j] != tag {
			j++
		}
		pos[i] = j
	}

	grad = make([]float64, n)
	for i, p := range pos {
		grad[p] = x.grad[i]
	}
	if second {
		hess = make([]float64, n*n)
		if x.second {
			m := len(x.vars)
			for i, pi := range pos {
				for k, pk := range pos {
					hess[pi*n+pk] = x.hess[i*m+k]
				}
			}
		}
	}
	return grad, hess
}

// unify aligns a and b onto the union of their variables.
func unify(a, b Number) (vars []string, ga, gb, ha, hb []float64, second bool) {
	second = a.second || b.second
	vars = unionVars(a.vars, b.vars)
	ga, ha = align(a, vars, second)
	gb, hb = align(b, vars, second)
	return vars, ga, gb, ha, hb, second
}
