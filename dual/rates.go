package dual

import "fmt"

// SimpleRate returns the simple rate implied by two discount factors over an accrual
// fraction dcf: (dfStart/dfEnd - 1) / dcf. The result is a decimal, not percent.
func SimpleRate(dfStart, dfEnd Number, dcf float64) (Number, error) {
	if dcf == 0 {
		return Number{}, fmt.Errorf("SimpleRate: zero accrual fraction: %w", ErrDivisionByZero)
	}
	ratio, err := Div(dfStart, dfEnd)
	if err != nil {
		return Number{}, fmt.Errorf("SimpleRate: %w", err)
	}
	return Scale(1/dcf, AddScalar(ratio, -1)), nil
}

// ZeroRate returns the continuously compounded zero rate -ln(df)/t.
func ZeroRate(df Number, t float64) (Number, error) {
	if t == 0 {
		return Number{}, fmt.Errorf("ZeroRate: zero time: %w", ErrDivisionByZero)
	}
	l, err := Log(df)
	if err != nil {
		return Number{}, fmt.Errorf("ZeroRate: %w", err)
	}
	return Scale(-1/t, l), nil
}

// DiscountFromZero returns exp(-rate·t), the inverse of ZeroRate.
func DiscountFromZero(rate Number, t float64) Number {
	return Exp(Scale(-t, rate))
}
