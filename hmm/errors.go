package hmm

import "errors"

// Sentinel errors returned by this package. Callers should match them with
// errors.Is, not by string comparison, so that matching keeps working if a
// caller wraps them (fmt.Errorf with %w) to add context.
//
// ERROR PRIORITY: invalid parameters are checked before any inference runs;
// bracketing failures can only occur mid-fit, after parameters have already
// been validated once.
var (
	// ErrInvalidParameter is returned when Q, init or P contains NaN or a
	// negative entry, when a <= 0, when pi is outside [0,1], or when a row
	// of P sums to exactly 0 (unrenormalizable).
	ErrInvalidParameter = errors.New("hmm: invalid parameter")

	// ErrBracketingFailed is returned by the Baum-Welch emission update when
	// the root finder cannot straddle zero for p0 within [0,1]. The fit is
	// aborted; no partial P is committed.
	ErrBracketingFailed = errors.New("hmm: bracketing failed to locate p0")

	// ErrBlockSize is returned when the supplied block sizes do not sum to
	// the number of rows in Y, or when any block size is non-positive.
	ErrBlockSize = errors.New("hmm: block sizes inconsistent with row count")

	// ErrDimensionMismatch is returned when Q, init, P or Y disagree on the
	// number of states or tracks.
	ErrDimensionMismatch = errors.New("hmm: dimension mismatch")
)

// Diagnostics collects the non-fatal warnings a call may raise instead of
// relying on a process-global "warned" flag. A zero-value Diagnostics is
// ready to use; callers that don't care about warnings can pass nil and
// every collector function becomes a no-op.
type Diagnostics struct {
	// Renormalized is set once if any row of P needed renormalization.
	Renormalized bool
	// InconsistentStructure is set if some state's P[i,1]/P[i,0] deviates
	// from the shared ratio R by more than 1e-3. Non-fatal: the trainer
	// still enforces the ratio constraint in its own updates.
	InconsistentStructure bool
	// MaxRatioDeviation records the largest such deviation observed.
	MaxRatioDeviation float64
}

func (d *Diagnostics) markRenormalized() {
	if d != nil {
		d.Renormalized = true
	}
}

func (d *Diagnostics) markInconsistentStructure(deviation float64) {
	if d == nil {
		return
	}
	d.InconsistentStructure = true
	if deviation > d.MaxRatioDeviation {
		d.MaxRatioDeviation = deviation
	}
}
