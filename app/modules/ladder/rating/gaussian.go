package rating

import "math"

// gaussian is a normal distribution kept in natural parameters: precision (pi)
// and precision-adjusted mean (tau). Multiplying and dividing densities reduces
// to adding and subtracting these.
type gaussian struct {
	pi  float64
	tau float64
}

func fromMoments(mu, sigma float64) gaussian {
	pi := 1 / (sigma * sigma)
	return gaussian{pi: pi, tau: pi * mu}
}

func (g gaussian) mu() float64 {
	if g.pi == 0 {
		return 0
	}
	return g.tau / g.pi
}

func (g gaussian) sigma() float64 {
	if g.pi == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(1 / g.pi)
}

func (g gaussian) mul(o gaussian) gaussian {
	return gaussian{pi: g.pi + o.pi, tau: g.tau + o.tau}
}

func (g gaussian) div(o gaussian) gaussian {
	return gaussian{pi: g.pi - o.pi, tau: g.tau - o.tau}
}

// distance measures how far a belief moved between two updates. It drives the
// convergence test of the iterative schedule.
func (g gaussian) distance(o gaussian) float64 {
	piDelta := math.Abs(g.pi - o.pi)
	if math.IsInf(piDelta, 0) {
		return 0
	}
	return math.Max(math.Abs(g.tau-o.tau), math.Sqrt(piDelta))
}

// Standard normal helpers.

func pdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

func cdf(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func ppf(p float64) float64 {
	return -math.Sqrt2 * math.Erfcinv(2*p)
}

// tailCutoff is where pdf/cdf stops being computable directly: below it pdf
// underflows before cdf does.
const tailCutoff = -30.0

// vWin is the additive mean correction of a Gaussian truncated to (margin, +inf),
// with diff and margin already scaled by the standard deviation.
func vWin(diff, margin float64) float64 {
	x := diff - margin
	if x < tailCutoff {
		v, _ := winTail(x)
		return v
	}
	denom := cdf(x)
	if denom == 0 {
		return -x
	}
	return pdf(x) / denom
}

// wWin is the multiplicative variance correction matching vWin. It stays in (0, 1).
func wWin(diff, margin float64) float64 {
	x := diff - margin
	var w float64
	if x < tailCutoff {
		_, w = winTail(x)
	} else {
		v := vWin(diff, margin)
		w = v * (v + x)
	}
	switch {
	case math.IsNaN(w) || w <= 0:
		return 0
	case w >= 1:
		return 1 - 1e-9
	}
	return w
}

// winTail evaluates both corrections far in the lower tail from the asymptotic
// Mills ratio cdf(x)/pdf(x) ~ (1 - a)/-x with a = 1/x^2 - 3/x^4. Then
// v = -x/(1-a) and v+x = v*a, so w = v*v*a needs no cancelling subtraction.
func winTail(x float64) (v, w float64) {
	x2 := x * x
	a := 1/x2 - 3/(x2*x2)
	v = -x / (1 - a)
	return v, v * v * a
}
