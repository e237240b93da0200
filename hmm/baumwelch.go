package hmm

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// FitResult is everything Trainer.Fit hands back after a run.
type FitResult struct {
	Q          *mat.Dense // updated transition matrix
	P          *mat.Dense // updated emission probability matrix
	Phi        *mat.Dense // n x m posteriors from the last completed iteration
	Pem        *mat.Dense // n x m log-space emissions, recomputed after the fit
	Path       []int      // Viterbi decoding under the fitted parameters
	LogLik     float64    // log-likelihood of the last completed iteration
	Iterations int
}

// Trainer runs the Baum-Welch outer loop: it alternates calls to
// EvaluateEmissions and RunBlocks with closed-form updates of Q and
// bracketed-Newton updates of P. a and pi are never touched — they are
// assumed fixed from an external ZINB fit of the control track. init is
// likewise never re-estimated: Fit requires a valid starting point and
// documents the block-stationary assumption this implies rather than
// guessing at an update rule the original program never specified.
type Trainer struct {
	Config Config
	Logger zerolog.Logger
}

// NewTrainer returns a Trainer configured with cfg whose Logger is
// zerolog.Nop(), so a caller that doesn't care about logging never has to
// think about it.
func NewTrainer(cfg Config) *Trainer {
	return &Trainer{Config: cfg, Logger: zerolog.Nop()}
}

// Fit runs Baum-Welch on y (block-segmented per sizes) starting from Q,
// init and z. Q and z.P are both required to already be valid — a
// row-stochastic Q, a distribution init, and a P whose rows are
// (near-)stochastic — Fit returns ErrInvalidParameter rather than
// accepting the original program's zero-initialized start, which would
// immediately underflow.
//
// On ErrBracketingFailed the returned FitResult carries the log-likelihood
// of the last successfully completed iteration, but Q and P are the
// pre-iteration values: the partially computed update is discarded.
func (t *Trainer) Fit(y [][]int, sizes []int, z *ZeroInflated, Q *mat.Dense, init []float64) (*FitResult, error) {
	if err := t.validate(y, sizes, z, Q, init); err != nil {
		return nil, err
	}

	idx, i0 := BuildIndex(y)
	diag := &Diagnostics{}
	if err := renormalizeRows(z.P, diag); err != nil {
		return nil, err
	}
	ratioR := checkRatioStructure(z.P, diag)
	t.logDiagnostics(diag)

	var (
		loglik     float64
		lastPhi    *mat.Dense
		iterations int
	)

	for iter := 0; iter < t.Config.MaxIter; iter++ {
		iterations = iter + 1

		pem, err := EvaluateEmissions(y, idx, z, LinPreferred, diag, false)
		if err != nil {
			return nil, err
		}
		phi, Tsum, ll, err := RunBlocks(sizes, Q, init, pem)
		if err != nil {
			return nil, err
		}
		loglik = ll
		lastPhi = phi

		newQ := updateTransitions(Tsum, Q)
		newP, err := t.updateEmissions(y, idx, i0, phi, z, ratioR)
		if err != nil {
			return &FitResult{Q: Q, P: z.P, Phi: phi, LogLik: loglik, Iterations: iterations}, err
		}

		delta := maxAbsDiff(newP, z.P)
		Q = newQ
		z.P = newP
		t.logIteration(iterations, loglik, delta)
		if delta < t.Config.Tolerance {
			break
		}
	}

	finalPem, err := EvaluateEmissions(y, idx, z, Log, diag, true)
	if err != nil {
		return nil, err
	}
	path, err := Viterbi(sizes, Q, init, finalPem, false)
	if err != nil {
		return nil, err
	}

	return &FitResult{
		Q:          Q,
		P:          z.P,
		Phi:        lastPhi,
		Pem:        finalPem,
		Path:       path,
		LogLik:     loglik,
		Iterations: iterations,
	}, nil
}

func (t *Trainer) validate(y [][]int, sizes []int, z *ZeroInflated, Q *mat.Dense, init []float64) error {
	if z.A <= 0 || z.Pi < 0 || z.Pi > 1 {
		return ErrInvalidParameter
	}
	if err := validateStochastic(Q, 1e-9); err != nil {
		return err
	}
	if err := validateVector(init, 1e-9); err != nil {
		return err
	}
	m, mCols := Q.Dims()
	if m != mCols || len(init) != m {
		return ErrDimensionMismatch
	}
	pm, _ := z.P.Dims()
	if pm != m {
		return ErrDimensionMismatch
	}
	total := 0
	for _, s := range sizes {
		if s <= 0 {
			return ErrBlockSize
		}
		total += s
	}
	if total != len(y) {
		return ErrBlockSize
	}
	return nil
}

func (t *Trainer) logDiagnostics(diag *Diagnostics) {
	if diag.Renormalized {
		t.Logger.Warn().Msg("P rows required renormalization")
	}
	if diag.InconsistentStructure {
		t.Logger.Warn().
			Float64("max_ratio_deviation", diag.MaxRatioDeviation).
			Msg("P[i,1]/P[i,0] is not uniform across states")
	}
}

func (t *Trainer) logIteration(iter int, loglik, delta float64) {
	t.Logger.Debug().
		Int("iteration", iter).
		Float64("loglik", loglik).
		Float64("max_delta_p", delta).
		Msg("baum-welch iteration")
}

// updateTransitions re-estimates Q from the summed expected transition
// counts. A row whose expected count sums to zero retains its previous
// value rather than dividing by zero into NaN.
func updateTransitions(Tsum, oldQ *mat.Dense) *mat.Dense {
	m, _ := Tsum.Dims()
	newQ := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		row := Tsum.RawRowView(i)
		s := floats.Sum(row)
		dst := newQ.RawRowView(i)
		if s == 0 {
			copy(dst, oldQ.RawRowView(i))
			continue
		}
		for j, v := range row {
			dst[j] = v / s
		}
	}
	return newQ
}

// updateEmissions re-estimates P, state by state, via the bucketed A/B/D/
// ystar/E sums over zero and non-zero observation rows and a
// bracketed-Newton solve for p0. ratioR = P[i,1]/P[i,0] is fixed once,
// before the first iteration, and held constant: it is the structural
// constraint tying the ChIP track to the control track.
func (t *Trainer) updateEmissions(y [][]int, idx []int, i0 int, phi *mat.Dense, z *ZeroInflated, ratioR float64) (*mat.Dense, error) {
	m, cols := z.P.Dims()
	newP := mat.NewDense(m, cols, nil)
	c := 1 + ratioR

	for i := 0; i < m; i++ {
		var a, b, d, e float64
		ystar := make([]float64, cols)

		for k, row := range y {
			p := phi.At(k, i)
			if p == 0 {
				continue
			}
			if i0 >= 0 && idx[k] == i0 {
				b += p
				continue
			}
			a += p
			d += p * float64(row[0])
			for j := 1; j < cols; j++ {
				ystar[j] += p * float64(row[j])
			}
		}
		for j := 1; j < cols; j++ {
			e += ystar[j]
		}

		p0, err := solveP0(a, b, d, e, z.A, z.Pi, c, t.Config)
		if err != nil {
			return nil, err
		}

		newP.Set(i, 0, p0)
		newP.Set(i, 1, p0*ratioR)
		denom := emissionDenom(d, a, b, p0, z.A, z.Pi)
		for j := 2; j < cols; j++ {
			newP.Set(i, j, ystar[j]/denom/c)
		}
	}
	return newP, nil
}

// emissionDenom computes (D+a*A)/p0 + B*pi*a*p0^(a-1)/(pi*p0^a+1-pi), the
// shared denominator in both the root equation and the P_new[i,j>=2]
// update.
func emissionDenom(d, a, b, p0, dispersion, pi float64) float64 {
	return (d+dispersion*a)/p0 + b*pi*dispersion*math.Pow(p0, dispersion-1)/(pi*math.Pow(p0, dispersion)+1-pi)
}

func maxAbsDiff(x, y *mat.Dense) float64 {
	rows, cols := x.Dims()
	max := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d := math.Abs(x.At(i, j) - y.At(i, j))
			if d > max {
				max = d
			}
		}
	}
	return max
}
