package solver

// Config holds the numerical parameters of a calibration run.
type Config struct {
	// Tolerance is the absolute Euclidean norm of the residual vector below which the
	// solver reports convergence. Residuals are in instrument rate units (percent for the
	// reference instruments).
	Tolerance float64

	// MaxIterations bounds the number of pricing passes.
	MaxIterations int

	// MaxCondition is the largest acceptable condition number of the Jacobian.
	// Above it the system is treated as rank deficient.
	MaxCondition float64

	// StallTolerance is the relative step size below which a run that has not converged
	// is declared stalled: ‖Δ‖ ≤ StallTolerance·(1+‖x‖).
	StallTolerance float64

	// Lambda is the initial Levenberg-Marquardt damping factor.
	Lambda float64

	// MaxLambda ends a Levenberg-Marquardt run whose damping keeps growing.
	MaxLambda float64
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	Tolerance:      1e-10,
	MaxIterations:  100,
	MaxCondition:   1e12,
	StallTolerance: 1e-15,
	Lambda:         1,
	MaxLambda:      1e16,
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	if c.Tolerance == 0 {
		c.Tolerance = DefaultConfig.Tolerance
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultConfig.MaxIterations
	}
	if c.MaxCondition == 0 {
		c.MaxCondition = DefaultConfig.MaxCondition
	}
	if c.StallTolerance == 0 {
		c.StallTolerance = DefaultConfig.StallTolerance
	}
	if c.Lambda == 0 {
		c.Lambda = DefaultConfig.Lambda
	}
	if c.MaxLambda == 0 {
		c.MaxLambda = DefaultConfig.MaxLambda
	}
	return c
}

func (c Config) validate() error {
	switch {
	case c.Tolerance < 0:
		return invalidConfig("negative tolerance %g", c.Tolerance)
	case c.MaxIterations < 0:
		return invalidConfig("negative max iterations %d", c.MaxIterations)
	case c.MaxCondition < 1:
		return invalidConfig("max condition %g below 1", c.MaxCondition)
	case c.StallTolerance < 0:
		return invalidConfig("negative stall tolerance %g", c.StallTolerance)
	case c.Lambda < 0 || c.MaxLambda < c.Lambda:
		return invalidConfig("lambda %g outside [0, %g]", c.Lambda, c.MaxLambda)
	}
	return nil
}
