package hmm

import "math"

// solveP0 finds p0 in (0,1) solving
//
//	f(p0) = p0 + E/((D+a*A)/p0 + B*pi*a*p0^(a-1)/(pi*p0^a+1-pi)) - 1/C = 0
//
// It brackets a root by doubling an interval outward from p0=0.5, then
// refines with Newton's method, falling back to bisection whenever a
// Newton step would leave the current bracket. The original program's
// derivative is not given in closed form here, so the derivative is
// estimated by central difference — cheap at one extra f() evaluation per
// iteration and exact enough given the bracket already constrains the
// step.
func solveP0(a, b, d, e, dispersion, pi, c float64, cfg Config) (float64, error) {
	const eps = 1e-9
	target := 1 / c

	f := func(p0 float64) float64 {
		return p0 + e/emissionDenom(d, a, b, p0, dispersion, pi) - target
	}

	lo, hi := 0.5, 0.5
	half := 0.25
	flo, fhi := f(lo), f(hi)
	bracketed := false
	for iter := 0; iter < 60; iter++ {
		lo = 0.5 - half
		hi = 0.5 + half
		if lo <= eps {
			lo = eps
		}
		if hi >= 1-eps {
			hi = 1 - eps
		}
		flo, fhi = f(lo), f(hi)
		if flo*fhi <= 0 {
			bracketed = true
			break
		}
		if lo <= eps && hi >= 1-eps {
			break
		}
		half *= 2
	}
	if !bracketed || lo > 1-eps || hi < eps {
		return 0, ErrBracketingFailed
	}

	p0 := (lo + hi) / 2
	for iter := 0; iter < cfg.JahmmMaxIter && hi-lo >= cfg.Tolerance; iter++ {
		fp0 := f(p0)
		if sameSign(flo, fp0) {
			lo, flo = p0, fp0
		} else {
			hi, fhi = p0, fp0
		}

		h := 1e-6
		deriv := (f(p0+h) - f(p0-h)) / (2 * h)
		next := p0
		if deriv != 0 {
			next = p0 - fp0/deriv
		}
		if math.IsNaN(next) || next <= lo || next >= hi {
			next = (lo + hi) / 2
		}
		p0 = next
	}
	return p0, nil
}

func sameSign(x, y float64) bool {
	return (x < 0 && y < 0) || (x > 0 && y > 0)
}
