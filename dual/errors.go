package dual

import "errors"

var (
	// ErrDivisionByZero is returned when dividing by a number whose real part is zero.
	ErrDivisionByZero = errors.New("dual: division by zero")

	// ErrDomain is returned when a function is evaluated outside its real domain,
	// e.g. the logarithm of a non-positive value.
	ErrDomain = errors.New("dual: argument outside function domain")

	// ErrDuplicateVariable is returned when a registry is built with a repeated tag.
	ErrDuplicateVariable = errors.New("dual: duplicate variable tag")

	// ErrEmptyTag is returned when a registry is built with an empty tag.
	ErrEmptyTag = errors.New("dual: empty variable tag")
)
