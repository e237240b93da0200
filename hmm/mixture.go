package hmm

import "math"

// multinomialLogProb computes the log-density of observation y under
// probability vector p, Σ_j y_j log p_j, used by Mixture's two components.
// Unlike ZeroInflated's negative multinomial there is no dispersion
// exponent here: Mixture's two components are plain multinomials over
// theta, P and Q, with no analogue of the control-track exponent a.
func multinomialLogProb(y []int, p []float64) float64 {
	lp := 0.0
	for j, v := range y {
		lp += float64(v) * math.Log(p[j])
	}
	return lp
}

// LogProbs returns the log-density of y under each of Mixture's two
// components.
func (mx Mixture) LogProbs(y []int) (logP, logQ float64) {
	return multinomialLogProb(y, mx.P), multinomialLogProb(y, mx.Q)
}

// Ratio computes the responsibility weight of component P for observation
// y, the "Ratio" output mode of the original evaluator.
func (mx Mixture) Ratio(y []int) float64 {
	logP, logQ := mx.LogProbs(y)
	return mx.RatioWeight(logP, logQ)
}
