package l1paths

// Polynomial holds coefficients ordered from the highest degree down to the
// constant term, so {a, b, c} is a·s² + b·s + c.
type Polynomial []float64

// Horner evaluates p at s by nested multiplication. An empty polynomial
// evaluates to zero; a NaN s yields NaN unless p is constant.
func Horner(p Polynomial, s float64) float64 {
	if len(p) == 0 {
		return 0
	}
	acc := p[0]
	for _, c := range p[1:] {
		acc = acc*s + c
	}
	return acc
}

// Eval is shorthand for Horner(p, s).
func (p Polynomial) Eval(s float64) float64 {
	return Horner(p, s)
}

// Degree returns the polynomial degree, or -1 for an empty polynomial.
func (p Polynomial) Degree() int {
	return len(p) - 1
}

// Derivative returns d/ds of p in the same highest-degree-first order.
// The derivative of a constant is the zero polynomial {0}.
func Derivative(p Polynomial) Polynomial {
	n := len(p)
	if n <= 1 {
		return Polynomial{0}
	}
	d := make(Polynomial, n-1)
	for i := 0; i < n-1; i++ {
		power := float64(n - 1 - i)
		d[i] = p[i] * power
	}
	return d
}
