package hmm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Forward runs the normalized alpha recursion over the nb rows of pem
// starting at offset. Those rows are in the mixed linear/log
// representation EvaluateEmissions produces; they are overwritten in place
// with the normalized alphas. The returned value is the block's
// log-likelihood.
//
// A row with any NaN slot is treated as missing: alpha_k is set to the raw
// transition prediction tmp, contributing nothing to the log-likelihood.
// A linear-space row whose mass collapses (c <= 0) falls back to the same
// policy, which also covers the k=0 edge case where init is all zero.
func Forward(Q *mat.Dense, init []float64, pem *mat.Dense, offset, nb int) (float64, error) {
	m, mCols := Q.Dims()
	if m != mCols {
		return 0, ErrDimensionMismatch
	}
	if err := validateStochastic(Q, 1e-9); err != nil {
		return 0, err
	}
	if err := validateVector(init, 1e-9); err != nil {
		return 0, err
	}
	_, cols := pem.Dims()
	if cols != m {
		return 0, ErrDimensionMismatch
	}

	tmp := make([]float64, m)
	loglik := 0.0

	for k := 0; k < nb; k++ {
		if k == 0 {
			copy(tmp, init)
		} else {
			prevAlpha := pem.RawRowView(offset + k - 1)
			for j := 0; j < m; j++ {
				s := 0.0
				for i := 0; i < m; i++ {
					s += prevAlpha[i] * Q.At(i, j)
				}
				tmp[j] = s
			}
		}

		row := pem.RawRowView(offset + k)
		switch {
		case hasNaN(row):
			copy(row, tmp)
		case row[0] < 0:
			loglik += forwardLogStep(tmp, row)
		default:
			c := floats.Dot(tmp, row)
			if c > 0 {
				for j := 0; j < m; j++ {
					row[j] = tmp[j] * row[j] / c
				}
				loglik += math.Log(c)
			} else {
				copy(row, tmp)
			}
		}
	}
	return loglik, nil
}

// forwardLogStep handles a log-space emission row: it combines tmp with
// row in place (row becomes the new normalized alpha) and returns the
// log-likelihood contribution for this step.
func forwardLogStep(tmp, row []float64) float64 {
	m := len(row)
	w := argmax(row)
	logw := row[w]

	c := 0.0
	for j := 0; j < m; j++ {
		c += tmp[j] * math.Exp(row[j]-logw)
	}
	if c <= 0 {
		copy(row, tmp)
		return 0
	}
	for j := 0; j < m; j++ {
		row[j] = tmp[j] * math.Exp(row[j]-logw) / c
	}
	return logw + math.Log(c)
}

func hasNaN(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// argmax returns the index of the largest entry, the first such index when
// there is a tie.
func argmax(row []float64) int {
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best
}
