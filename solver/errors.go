package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrIllPosed is returned when the system cannot determine a unique step: more
	// unknowns than instruments under the reject policy, or a singular or badly
	// conditioned Jacobian.
	ErrIllPosed = errors.New("solver: ill-posed system")

	// ErrNotConverged matches every *ConvergenceError.
	ErrNotConverged = errors.New("solver: not converged")

	// ErrNotSolved is returned by queries that need a converged run.
	ErrNotSolved = errors.New("solver: no converged solution")

	ErrNoCurves       = errors.New("solver: no curves to calibrate")
	ErrNoInstruments  = errors.New("solver: no instruments")
	ErrLengthMismatch = errors.New("solver: instruments, targets and labels differ in length")
	ErrNoUnknowns     = errors.New("solver: curves have no free nodes")
	ErrInvalidConfig  = errors.New("solver: invalid configuration")
	ErrUnknownPolicy  = errors.New("solver: unknown algorithm or policy")
)

// ConvergenceError reports a run that ended without meeting the tolerance.
type ConvergenceError struct {
	ID           string
	Iterations   int
	ResidualNorm float64
	Reason       string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("solver %s: not converged after %d iterations, residual norm %.6e: %s",
		e.ID, e.Iterations, e.ResidualNorm, e.Reason)
}

func (e *ConvergenceError) Unwrap() error {
	return ErrNotConverged
}

func invalidConfig(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
