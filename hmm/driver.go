package hmm

import "gonum.org/v1/gonum/mat"

// RunBlocks runs Forward then Backward independently over each block named
// by sizes, which must sum to pem's row count. Forward state is reset to
// init at every block boundary. It returns the posteriors phi (n x m), the
// blocks' summed transition counts Tsum (m x m), and the total
// log-likelihood across blocks. pem is mutated in place (its rows become
// the normalized alphas), matching Forward's contract.
func RunBlocks(sizes []int, Q *mat.Dense, init []float64, pem *mat.Dense) (phi *mat.Dense, Tsum *mat.Dense, loglik float64, err error) {
	n, m := pem.Dims()
	total := 0
	for _, size := range sizes {
		if size <= 0 {
			return nil, nil, 0, ErrBlockSize
		}
		total += size
	}
	if total != n {
		return nil, nil, 0, ErrBlockSize
	}

	phi = mat.NewDense(n, m, nil)
	Tsum = mat.NewDense(m, m, nil)

	offset := 0
	for _, size := range sizes {
		ll, err := Forward(Q, init, pem, offset, size)
		if err != nil {
			return nil, nil, 0, err
		}
		T, err := Backward(Q, pem, phi, offset, size)
		if err != nil {
			return nil, nil, 0, err
		}
		Tsum.Add(Tsum, T)
		loglik += ll
		offset += size
	}
	return phi, Tsum, loglik, nil
}
