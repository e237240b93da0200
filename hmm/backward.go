package hmm

import "gonum.org/v1/gonum/mat"

// Backward runs the reverse-kernel smoother over the nb rows of alpha
// starting at offset (the block Forward just normalized in place), writing
// state posteriors into the same rows of phi. It returns T, the sum over
// the block of conditional transition posteriors: T[j,i] accumulates
// P(X_k=j, X_{k+1}=i) summed over k, matching Q's i->j row-stochastic
// convention.
//
// The reverse kernel R[i,j] = P(X_k=j | X_{k+1}=i) has a zero denominator
// exactly when no predecessor can reach future state i; that slice of R is
// then defined as zero and the corresponding phi mass is simply not added,
// consistent with Forward dropping rows whose normalizer collapses to
// zero.
func Backward(Q *mat.Dense, alpha *mat.Dense, phi *mat.Dense, offset, nb int) (*mat.Dense, error) {
	m, mCols := Q.Dims()
	if m != mCols {
		return nil, ErrDimensionMismatch
	}
	_, cols := alpha.Dims()
	if cols != m {
		return nil, ErrDimensionMismatch
	}

	T := mat.NewDense(m, m, nil)
	if nb == 0 {
		return T, nil
	}

	copy(phi.RawRowView(offset+nb-1), alpha.RawRowView(offset+nb-1))

	denom := make([]float64, m)
	for k := nb - 2; k >= 0; k-- {
		alphaK := alpha.RawRowView(offset + k)
		phiNext := phi.RawRowView(offset + k + 1)
		phiK := phi.RawRowView(offset + k)
		for j := range phiK {
			phiK[j] = 0
		}

		for i := 0; i < m; i++ {
			s := 0.0
			for j := 0; j < m; j++ {
				s += alphaK[j] * Q.At(j, i)
			}
			denom[i] = s
		}

		for i := 0; i < m; i++ {
			if denom[i] == 0 {
				continue
			}
			for j := 0; j < m; j++ {
				rij := alphaK[j] * Q.At(j, i) / denom[i]
				contribution := phiNext[i] * rij
				phiK[j] += contribution
				T.Set(j, i, T.At(j, i)+contribution)
			}
		}
	}
	return T, nil
}
