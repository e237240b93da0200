package hmm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ZeroInflated is the emission model actually driven by Trainer.Fit: a
// mixture of a point mass at the all-zero observation (weight 1-Pi) and a
// negative multinomial (weight Pi). Pi and A are held fixed across a fit —
// they come from an external ZINB maximum-likelihood fit of the control
// track — while P is what Trainer.Fit re-estimates.
type ZeroInflated struct {
	// A is the shared dispersion exponent applied to the control track.
	A float64
	// Pi is the zero-inflation weight in [0,1].
	Pi float64
	// P is m x (r+1): P[i,0] is state i's control-track probability p0,
	// P[i,1..r] are its track probabilities. Each row must sum to 1 (the
	// evaluator renormalizes internally and records a Diagnostics warning
	// if it had to).
	P *mat.Dense
}

// Mixture is the standalone two-component multinomial mixture variant
// (plain multinomial components, no dispersion exponent) referenced in the original design notes. It coexists with
// ZeroInflated but is not used by Trainer.Fit.
type Mixture struct {
	// Theta is the mixing weight of the first component.
	Theta float64
	// P and Q are the two components' probability vectors over r+1
	// outcomes (control track plus r experimental tracks).
	P []float64
	Q []float64
}

// RatioWeight computes 1/(1+exp(logQ-logP)) for one observation, where
// logP and logQ are the log-probabilities of that observation under
// components P and Q respectively. This is the legacy "Ratio" output mode: a
// responsibility weight for component P, not a per-state emission.
func (mx Mixture) RatioWeight(logP, logQ float64) float64 {
	return 1.0 / (1.0 + math.Exp(logQ-logP))
}

// dims returns the number of states m and the number of P columns (r+1).
func (z *ZeroInflated) dims() (m, cols int) {
	r, c := z.P.Dims()
	return r, c
}

// renormalizeRows normalizes every row of m to sum to 1 in place. It
// returns an error if any entry is negative or a row sums to exactly 0, and
// reports (at most once, via diag) whether any row actually needed scaling.
func renormalizeRows(m *mat.Dense, diag *Diagnostics) error {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		sum := 0.0
		for _, v := range row {
			if math.IsNaN(v) || v < 0 {
				return ErrInvalidParameter
			}
			sum += v
		}
		if sum == 0 {
			return ErrInvalidParameter
		}
		if math.Abs(sum-1) > 1e-12 {
			diag.markRenormalized()
			for j := 0; j < cols; j++ {
				row[j] /= sum
			}
		}
	}
	return nil
}

// checkRatioStructure verifies the structural constraint P[i,1]/P[i,0] == R
// for every state, warning (not failing) when it drifts beyond 1e-3. It
// returns the ratio R taken from state 0, which the Baum-Welch update then
// holds fixed for the remainder of the fit.
func checkRatioStructure(p *mat.Dense, diag *Diagnostics) float64 {
	rows, cols := p.Dims()
	if cols < 2 || rows == 0 {
		return 0
	}
	r := p.At(0, 1) / p.At(0, 0)
	for i := 1; i < rows; i++ {
		ri := p.At(i, 1) / p.At(i, 0)
		if math.Abs(ri-r) > 1e-3 {
			diag.markInconsistentStructure(math.Abs(ri - r))
		}
	}
	return r
}

// rowSum is a thin wrapper so call sites read like summation notation
// instead of a raw loop.
func rowSum(v []float64) float64 {
	return floats.Sum(v)
}

// validateStochastic checks that every row of m sums to 1 within tol and
// that no entry is NaN or negative.
func validateStochastic(m *mat.Dense, tol float64) error {
	rows, _ := m.Dims()
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		for _, v := range row {
			if math.IsNaN(v) || v < 0 {
				return ErrInvalidParameter
			}
		}
		if math.Abs(rowSum(row)-1) > tol {
			return ErrInvalidParameter
		}
	}
	return nil
}

func validateVector(v []float64, tol float64) error {
	for _, x := range v {
		if math.IsNaN(x) || x < 0 {
			return ErrInvalidParameter
		}
	}
	if math.Abs(rowSum(v)-1) > tol {
		return ErrInvalidParameter
	}
	return nil
}
