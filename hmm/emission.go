package hmm

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// OutputMode selects the representation EvaluateEmissions writes into its
// result matrix.
type OutputMode int

const (
	// LinPreferred emits linear-space values; if every state underflows to
	// zero for a row, that row falls back to log-space values instead. This
	// per-row mixed representation is what Forward expects.
	LinPreferred OutputMode = iota
	// Log always emits log-space values.
	Log
	// Lin always emits linear-space values, even when they all underflow
	// to zero.
	Lin
)

// EvaluateEmissions computes the n x m emission matrix for the
// zero-inflated model z, for every row of y. idx must come from BuildIndex
// on the same y: rows with idx[k] != k are copied verbatim from row
// idx[k] rather than recomputed. withConst requests the state-independent
// combinatorial normalization constant be added to the log emission before
// it is exponentiated (or reported, under Log).
//
// A row of y with any negative entry is NA: its entire emission row is set
// to NaN in all m slots, regardless of mode.
func EvaluateEmissions(y [][]int, idx []int, z *ZeroInflated, mode OutputMode, diag *Diagnostics, withConst bool) (*mat.Dense, error) {
	if z.A <= 0 || z.Pi < 0 || z.Pi > 1 {
		return nil, ErrInvalidParameter
	}
	if err := renormalizeRows(z.P, diag); err != nil {
		return nil, err
	}
	checkRatioStructure(z.P, diag)

	m, cols := z.dims()
	for _, row := range y {
		if len(row) != cols {
			return nil, ErrDimensionMismatch
		}
	}
	n := len(y)
	pem := mat.NewDense(n, m, nil)

	for k, row := range y {
		if idx[k] != k {
			continue // filled in by the copy pass below
		}
		logp := logEmissionRow(row, z, withConst)
		writeRow(pem.RawRowView(k), logp, mode)
	}
	for k := range y {
		if idx[k] == k {
			continue
		}
		copy(pem.RawRowView(k), pem.RawRowView(idx[k]))
	}
	return pem, nil
}

// logEmissionRow computes state i's log emission for canonical row y,
// for every state i = 0..m-1.
func logEmissionRow(y []int, z *ZeroInflated, withConst bool) []float64 {
	m, _ := z.dims()
	out := make([]float64, m)

	for _, v := range y {
		if v < 0 {
			for i := range out {
				out[i] = math.NaN()
			}
			return out
		}
	}

	allZero := isAllZero(y)
	var logConst float64
	if withConst && !allZero {
		logConst = combinatorialLogConst(y, z.A)
	}

	for i := 0; i < m; i++ {
		p0 := z.P.At(i, 0)
		if allZero {
			out[i] = math.Log(z.Pi*math.Pow(p0, z.A) + (1 - z.Pi))
			continue
		}
		logp := z.A * math.Log(p0)
		for j := 1; j < len(y); j++ {
			logp += float64(y[j]) * math.Log(z.P.At(i, j))
		}
		out[i] = logp + logConst
	}
	return out
}

// combinatorialLogConst computes -lgamma(a) + lgamma(a+sum y[1:]) -
// sum lgamma(y[j]+1), the state-independent term dropped from the emission
// unless the caller explicitly asks for it (it is needed for a true
// log-likelihood, not for posterior decoding, where it cancels).
func combinatorialLogConst(y []int, a float64) float64 {
	sum := 0.0
	lg, _ := math.Lgamma(a)
	c := -lg
	for j := 1; j < len(y); j++ {
		sum += float64(y[j])
		lgj, _ := math.Lgamma(float64(y[j]) + 1)
		c -= lgj
	}
	lgSum, _ := math.Lgamma(a + sum)
	return c + lgSum
}

// writeRow converts a freshly computed log-space emission row into the
// representation mode requests and writes it into dst.
func writeRow(dst, logp []float64, mode OutputMode) {
	switch mode {
	case Log:
		copy(dst, logp)
	case Lin:
		for i, v := range logp {
			dst[i] = math.Exp(v)
		}
	default: // LinPreferred
		allZero := true
		for i, v := range logp {
			lin := math.Exp(v)
			dst[i] = lin
			if lin != 0 {
				allZero = false
			}
		}
		if allZero {
			copy(dst, logp)
		}
	}
}
