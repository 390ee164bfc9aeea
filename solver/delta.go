package solver

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/ratecal/dual"
)

// Delta returns the sensitivity of value to each instrument's quote at the last converged
// solution, aligned with Result.Labels: δ = (J⁺)ᵀ∇value, where ∇value is taken over
// the unknowns. Units are value per unit of instrument rate.
//
// value must be computed from the calibrated curves after Solve returned.
func (s *Solver) Delta(value dual.Number) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return nil, fmt.Errorf("Delta %s: %w", s.id, ErrNotSolved)
	}
	grad := mat.NewVecDense(s.registry.Len(), s.registry.Gradient(value))
	d, err := pseudoSolve(s.result.Jacobian.T(), grad, s.cfg.MaxCondition)
	if err != nil {
		return nil, fmt.Errorf("Delta %s: %w", s.id, err)
	}
	return append([]float64(nil), d.RawVector().Data...), nil
}

// DeltaByLabel is Delta keyed by instrument label.
func (s *Solver) DeltaByLabel(value dual.Number) (map[string]float64, error) {
	d, err := s.Delta(value)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(d))
	for i, label := range s.labels {
		out[label] += d[i]
	}
	return out, nil
}
