package hmm

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Viterbi decodes the most likely state path through each block named by
// sizes, working entirely in log space. prob is n x m; if linear is true
// its entries are treated as probabilities and converted to log space
// internally (the original matrix is not modified). Q and init must be the
// linear-space transition matrix and initial distribution — Viterbi takes
// their logs itself.
//
// A row of prob whose log-space form contains any NaN, or whose entries
// are all -Inf, is replaced with an all-zero row so that step contributes
// only the transition term. A NaN or negative entry in Q or init is a hard
// error: unlike missing observations, a malformed model is not something
// Viterbi can route around. Ties in the max-product recursion are broken
// by keeping the first (lowest-index) maximum encountered.
func Viterbi(sizes []int, Q *mat.Dense, init []float64, prob *mat.Dense, linear bool) ([]int, error) {
	m, mCols := Q.Dims()
	if m != mCols {
		return nil, ErrDimensionMismatch
	}
	n, cols := prob.Dims()
	if cols != m {
		return nil, ErrDimensionMismatch
	}
	if len(init) != m {
		return nil, ErrDimensionMismatch
	}

	logQ := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			q := Q.At(i, j)
			if math.IsNaN(q) || q < 0 {
				return nil, ErrInvalidParameter
			}
			logQ.Set(i, j, math.Log(q))
		}
	}
	logInit := make([]float64, m)
	for i, v := range init {
		if math.IsNaN(v) || v < 0 {
			return nil, ErrInvalidParameter
		}
		logInit[i] = math.Log(v)
	}

	logProb := mat.NewDense(n, m, nil)
	for k := 0; k < n; k++ {
		src := prob.RawRowView(k)
		dst := logProb.RawRowView(k)
		if linear {
			for j, v := range src {
				dst[j] = math.Log(v)
			}
		} else {
			copy(dst, src)
		}
		applyNAPolicy(dst)
	}

	total := 0
	for _, size := range sizes {
		if size <= 0 {
			return nil, ErrBlockSize
		}
		total += size
	}
	if total != n {
		return nil, ErrBlockSize
	}

	path := make([]int, n)
	offset := 0
	for _, size := range sizes {
		decodeBlock(logQ, logInit, logProb, offset, size, path)
		offset += size
	}
	return path, nil
}

// applyNAPolicy zeroes out a row that carries no usable emission
// information: any NaN slot, or every slot at -Inf.
func applyNAPolicy(row []float64) {
	allNegInf := true
	for _, v := range row {
		if math.IsNaN(v) {
			for i := range row {
				row[i] = 0
			}
			return
		}
		if !math.IsInf(v, -1) {
			allNegInf = false
		}
	}
	if allNegInf {
		for i := range row {
			row[i] = 0
		}
	}
}

func decodeBlock(logQ *mat.Dense, logInit []float64, logProb *mat.Dense, offset, size int, path []int) {
	m := len(logInit)
	back := make([][]int, size)
	oldmax := make([]float64, m)
	newmax := make([]float64, m)

	row0 := logProb.RawRowView(offset)
	for j := 0; j < m; j++ {
		newmax[j] = logInit[j] + row0[j]
	}

	for k := 1; k < size; k++ {
		oldmax, newmax = newmax, oldmax
		back[k] = make([]int, m)
		row := logProb.RawRowView(offset + k)
		for j := 0; j < m; j++ {
			best := 0
			bestVal := oldmax[0] + logQ.At(0, j)
			for i := 1; i < m; i++ {
				v := oldmax[i] + logQ.At(i, j)
				if v > bestVal {
					bestVal = v
					best = i
				}
			}
			back[k][j] = best
			newmax[j] = bestVal + row[j]
		}
	}

	final := argmax(newmax)
	path[offset+size-1] = final
	for k := size - 1; k > 0; k-- {
		final = back[k][final]
		path[offset+k-1] = final
	}
}
