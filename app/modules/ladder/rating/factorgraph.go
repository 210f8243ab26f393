package rating

import "math"

// variable is a node of the factor graph. It keeps its current marginal and
// the last message received from every adjacent factor, keyed by factor id.
type variable struct {
	value    gaussian
	messages map[int]gaussian
}

func newVariable() *variable {
	return &variable{messages: make(map[int]gaussian)}
}

func (v *variable) set(g gaussian) float64 {
	delta := v.value.distance(g)
	v.value = g
	return delta
}

// cavity is the marginal with the given factor's contribution divided out.
func (v *variable) cavity(factor int) gaussian {
	return v.value.div(v.messages[factor])
}

// updateMessage replaces the factor's message and folds it into the marginal.
func (v *variable) updateMessage(factor int, msg gaussian) float64 {
	old := v.messages[factor]
	v.messages[factor] = msg
	return v.set(v.value.div(old).mul(msg))
}

// updateValue sets the marginal directly and back-computes the factor's message.
func (v *variable) updateValue(factor int, value gaussian) float64 {
	old := v.messages[factor]
	v.messages[factor] = value.mul(old).div(v.value)
	return v.set(value)
}

type weighted struct {
	v     *variable
	coeff float64
}

// sumFactor encodes sum = Σ coeffs[i]*terms[i].
type sumFactor struct {
	id     int
	sum    *variable
	terms  []*variable
	coeffs []float64
}

func (f *sumFactor) down() float64 {
	parts := make([]weighted, len(f.terms))
	for i, t := range f.terms {
		parts[i] = weighted{v: t, coeff: f.coeffs[i]}
	}
	return f.send(f.sum, parts)
}

// up solves the linear constraint for terms[index].
func (f *sumFactor) up(index int) float64 {
	return f.send(f.terms[index], f.upParts(index))
}

// upParts expresses terms[index] through the others. The sum variable always
// goes first so that interchangeable terms see identical arithmetic.
func (f *sumFactor) upParts(index int) []weighted {
	c := f.coeffs[index]
	parts := make([]weighted, 0, len(f.terms))
	parts = append(parts, weighted{v: f.sum, coeff: 1 / c})
	for i, t := range f.terms {
		if i == index {
			continue
		}
		parts = append(parts, weighted{v: t, coeff: -f.coeffs[i] / c})
	}
	return parts
}

// upAll sends a message to every term. All messages are computed from one
// snapshot of the cavities before any is applied, so interchangeable terms
// receive bit-identical messages.
func (f *sumFactor) upAll() {
	cavities := make(map[*variable]gaussian, len(f.terms)+1)
	cavities[f.sum] = f.sum.cavity(f.id)
	for _, t := range f.terms {
		cavities[t] = t.cavity(f.id)
	}
	snapshot := func(v *variable) gaussian { return cavities[v] }

	msgs := make([]gaussian, len(f.terms))
	for i := range f.terms {
		msgs[i] = combine(f.upParts(i), snapshot)
	}
	for i, t := range f.terms {
		t.updateMessage(f.id, msgs[i])
	}
}

func (f *sumFactor) send(target *variable, parts []weighted) float64 {
	msg := combine(parts, func(v *variable) gaussian { return v.cavity(f.id) })
	return target.updateMessage(f.id, msg)
}

// combine returns the Gaussian of a weighted sum of independent cavities.
func combine(parts []weighted, cavity func(*variable) gaussian) gaussian {
	var mu, piInv float64
	for _, p := range parts {
		c := cavity(p.v)
		mu += p.coeff * c.mu()
		if math.IsInf(piInv, 1) {
			continue
		}
		if c.pi == 0 {
			piInv = math.Inf(1)
			continue
		}
		piInv += p.coeff * p.coeff / c.pi
	}
	pi := 1 / piInv
	return gaussian{pi: pi, tau: pi * mu}
}

// likelihoodFactor links a skill to a performance with additive noise of the
// given variance.
type likelihoodFactor struct {
	id       int
	mean     *variable
	value    *variable
	variance float64
}

func (f *likelihoodFactor) down() float64 {
	msg := f.mean.cavity(f.id)
	a := 1 / (1 + f.variance*msg.pi)
	return f.value.updateMessage(f.id, gaussian{pi: a * msg.pi, tau: a * msg.tau})
}

func (f *likelihoodFactor) up() float64 {
	msg := f.value.cavity(f.id)
	a := 1 / (1 + f.variance*msg.pi)
	return f.mean.updateMessage(f.id, gaussian{pi: a * msg.pi, tau: a * msg.tau})
}

// truncateFactor constrains a team difference to exceed the draw margin.
type truncateFactor struct {
	id     int
	diff   *variable
	margin float64
}

func (f *truncateFactor) up() float64 {
	div := f.diff.cavity(f.id)
	sqrtPi := math.Sqrt(div.pi)
	t := div.tau / sqrtPi
	e := f.margin * sqrtPi
	v := vWin(t, e)
	w := wWin(t, e)
	denom := 1 - w
	return f.diff.updateValue(f.id, gaussian{
		pi:  div.pi / denom,
		tau: (div.tau + sqrtPi*v) / denom,
	})
}
