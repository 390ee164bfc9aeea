package dual

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Add returns a + b.
func Add(a, b Number) Number {
	vars, ga, gb, ha, hb, second := unify(a, b)
	out := Number{real: a.real + b.real, vars: vars, second: second}
	out.grad = floats.AddTo(make([]float64, len(vars)), ga, gb)
	if second {
		out.hess = floats.AddTo(make([]float64, len(ha)), ha, hb)
	}
	return out
}

// Sub returns a - b.
func Sub(a, b Number) Number {
	return Add(a, Neg(b))
}

// Neg returns -x.
func Neg(x Number) Number {
	return Scale(-1, x)
}

// Scale returns f·x.
func Scale(f float64, x Number) Number {
	out := Number{real: f * x.real, vars: x.vars, second: x.second}
	out.grad = floats.ScaleTo(make([]float64, len(x.grad)), f, x.grad)
	if x.second {
		out.hess = floats.ScaleTo(make([]float64, len(x.hess)), f, x.hess)
	}
	return out
}

// AddScalar returns x + f.
func AddScalar(x Number, f float64) Number {
	out := x
	out.real = x.real + f
	return out
}

// Sum adds all xs. The sum of no numbers is the constant 0.
func Sum(xs ...Number) Number {
	var out Number
	for _, x := range xs {
		out = Add(out, x)
	}
	return out
}

// Mul returns a·b.
func Mul(a, b Number) Number {
	vars, ga, gb, ha, hb, second := unify(a, b)
	n := len(vars)
	out := Number{real: a.real * b.real, vars: vars, second: second}
	out.grad = floats.ScaleTo(make([]float64, n), b.real, ga)
	floats.AddScaled(out.grad, a.real, gb)
	if second {
		out.hess = floats.ScaleTo(make([]float64, n*n), b.real, ha)
		floats.AddScaled(out.hess, a.real, hb)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				out.hess[i*n+j] += ga[i]*gb[j] + gb[i]*ga[j]
			}
		}
	}
	return out
}

// Inv returns 1/x.
func Inv(x Number) (Number, error) {
	if x.real == 0 {
		return Number{}, fmt.Errorf("Inv: %w", ErrDivisionByZero)
	}
	r := x.real
	return x.chain(1/r, -1/(r*r), 2/(r*r*r)), nil
}

// Div returns a/b.
func Div(a, b Number) (Number, error) {
	inv, err := Inv(b)
	if err != nil {
		return Number{}, fmt.Errorf("Div: %w", ErrDivisionByZero)
	}
	return Mul(a, inv), nil
}

// Exp returns e**x.
func Exp(x Number) Number {
	e := math.Exp(x.real)
	return x.chain(e, e, e)
}

// Log returns the natural logarithm of x.
func Log(x Number) (Number, error) {
	if x.real <= 0 {
		return Number{}, fmt.Errorf("Log: %g: %w", x.real, ErrDomain)
	}
	r := x.real
	return x.chain(math.Log(r), 1/r, -1/(r*r)), nil
}

// Pow returns x**p for a real exponent p.
//
// A non-positive base is only accepted for integer exponents; 0 raised to a negative
// integer is a division by zero.
func Pow(x Number, p float64) (Number, error) {
	r := x.real
	integer := p == math.Trunc(p)
	switch {
	case r == 0 && p < 0:
		return Number{}, fmt.Errorf("Pow: 0**%g: %w", p, ErrDivisionByZero)
	case r <= 0 && !integer:
		return Number{}, fmt.Errorf("Pow: %g**%g: %w", r, p, ErrDomain)
	}

	var d1, d2 float64
	if p != 0 {
		d1 = p * math.Pow(r, p-1)
	}
	if p != 0 && p != 1 {
		d2 = p * (p - 1) * math.Pow(r, p-2)
	}
	return x.chain(math.Pow(r, p), d1, d2), nil
}

// PowNumber returns x**p where the exponent also carries derivatives, computed as
// exp(p·ln x).
func PowNumber(x, p Number) (Number, error) {
	lx, err := Log(x)
	if err != nil {
		return Number{}, fmt.Errorf("PowNumber: %w", err)
	}
	return Exp(Mul(p, lx)), nil
}

// Sqrt returns the square root of x. The derivative is undefined at 0.
func Sqrt(x Number) (Number, error) {
	if x.real <= 0 {
		return Number{}, fmt.Errorf("Sqrt: %g: %w", x.real, ErrDomain)
	}
	s := math.Sqrt(x.real)
	return x.chain(s, 0.5/s, -0.25/(s*x.real)), nil
}

// chain applies a unary function with value f, first derivative df and second
// derivative d2f at x.real.
func (x Number) chain(f, df, d2f float64) Number {
	n := len(x.vars)
	out := Number{real: f, vars: x.vars, second: x.second}
	out.grad = floats.ScaleTo(make([]float64, n), df, x.grad)
	if x.second {
		out.hess = floats.ScaleTo(make([]float64, n*n), df, x.hess)
		for i := 0; i < n; i++ {
			floats.AddScaled(out.hess[i*n:(i+1)*n], d2f*x.grad[i], x.grad)
		}
	}
	return out
}

// MulScalar returns x·f.
func MulScalar(x Number, f float64) Number {
	return Scale(f, x)
}
