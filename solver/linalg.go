package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// gaussNewtonStep solves for Δ minimizing ‖r + JΔ‖.
//
// Square systems are solved by LU, over-determined ones through the normal equations
// (JᵀJ)Δ = -Jᵀr by Cholesky. Under-determined systems take the minimum-norm step
// -J⁺r when minNorm is set.
func gaussNewtonStep(j *mat.Dense, r *mat.VecDense, minNorm bool, maxCond float64) (*mat.VecDense, error) {
	m, n := j.Dims()
	rhs := mat.NewVecDense(m, nil)
	rhs.ScaleVec(-1, r)

	switch {
	case m == n:
		var lu mat.LU
		lu.Factorize(j)
		if c := lu.Cond(); math.IsInf(c, 1) || math.IsNaN(c) || c > maxCond {
			return nil, fmt.Errorf("%w: Jacobian condition number %.3e", ErrIllPosed, c)
		}
		dx := mat.NewVecDense(n, nil)
		if err := lu.SolveVecTo(dx, false, rhs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIllPosed, err)
		}
		return dx, nil

	case m > n:
		return normalStep(j, r, 0, maxCond)

	default:
		if !minNorm {
			return nil, fmt.Errorf("%w: %d unknowns, %d instruments", ErrIllPosed, n, m)
		}
		return minNormStep(j, rhs, maxCond)
	}
}

// normalStep solves (JᵀJ + λ·diag(JᵀJ))Δ = -Jᵀr. With λ = 0 this is the Gauss-Newton
// normal equation.
func normalStep(j *mat.Dense, r *mat.VecDense, lambda, maxCond float64) (*mat.VecDense, error) {
	_, n := j.Dims()

	jtj := mat.NewSymDense(n, nil)
	jtj.SymOuterK(1, j.T())
	if lambda > 0 {
		for i := 0; i < n; i++ {
			d := jtj.At(i, i)
			jtj.SetSym(i, i, d+lambda*d)
		}
	}

	jtr := mat.NewVecDense(n, nil)
	jtr.MulVec(j.T(), r)
	jtr.ScaleVec(-1, jtr)

	var chol mat.Cholesky
	if ok := chol.Factorize(jtj); !ok {
		return nil, fmt.Errorf("%w: normal matrix not positive definite", ErrIllPosed)
	}
	// cond(JᵀJ) is the square of cond(J).
	if c := chol.Cond(); math.IsInf(c, 1) || math.IsNaN(c) || math.Sqrt(c) > maxCond {
		return nil, fmt.Errorf("%w: Jacobian condition number %.3e", ErrIllPosed, math.Sqrt(c))
	}
	dx := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(dx, jtr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllPosed, err)
	}
	return dx, nil
}

// minNormStep returns J⁺·rhs using singular values above s₀/maxCond.
func minNormStep(j *mat.Dense, rhs *mat.VecDense, maxCond float64) (*mat.VecDense, error) {
	return pseudoSolve(j, rhs, maxCond)
}

// pseudoSolve returns the minimum-norm least-squares y with A·y ≈ b.
func pseudoSolve(a mat.Matrix, b *mat.VecDense, maxCond float64) (*mat.VecDense, error) {
	_, n := a.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: SVD failed", ErrIllPosed)
	}
	rank := svd.Rank(1 / maxCond)
	if rank == 0 {
		return nil, fmt.Errorf("%w: matrix has rank 0", ErrIllPosed)
	}
	y := mat.NewVecDense(n, nil)
	svd.SolveVecTo(y, b, rank)
	return y, nil
}
