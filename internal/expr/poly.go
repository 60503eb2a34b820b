package expr

import "math"

// maxDegree bounds integer power expansion.
const maxDegree = 64

// Coefficients returns the coefficients of n as a polynomial in v, lowest
// degree first. Each coefficient is itself an expression free of v. The
// second result is false when n is not a polynomial in v.
func Coefficients(n Node, v string) ([]Node, bool) {
	if !depends(n, v) {
		return []Node{n}, true
	}

	switch e := n.(type) {
	case Var:
		return []Node{Num{0}, Num{1}}, true
	case Neg:
		c, ok := Coefficients(e.X, v)
		if !ok {
			return nil, false
		}
		out := make([]Node, len(c))
		for i := range c {
			out[i] = neg(c[i])
		}
		return out, true
	case Binary:
		return binaryCoefficients(e, v)
	}
	return nil, false
}

func binaryCoefficients(b Binary, v string) ([]Node, bool) {
	if b.Op == '^' {
		k, ok := b.R.(Num)
		if !ok || k.Value < 0 || k.Value != math.Trunc(k.Value) || k.Value > maxDegree {
			return nil, false
		}
		base, ok := Coefficients(b.L, v)
		if !ok || (len(base)-1)*int(k.Value) > maxDegree {
			return nil, false
		}
		out := []Node{Num{1}}
		for i := 0; i < int(k.Value); i++ {
			out = convolve(out, base)
		}
		return out, true
	}

	l, ok := Coefficients(b.L, v)
	if !ok {
		return nil, false
	}

	if b.Op == '/' {
		if depends(b.R, v) {
			return nil, false
		}
		out := make([]Node, len(l))
		for i := range l {
			out[i] = div(l[i], b.R)
		}
		return out, true
	}

	r, ok := Coefficients(b.R, v)
	if !ok {
		return nil, false
	}

	switch b.Op {
	case '+':
		return combine(l, r, add), true
	case '-':
		return combine(l, r, sub), true
	case '*':
		if len(l)+len(r)-2 > maxDegree {
			return nil, false
		}
		return convolve(l, r), true
	}
	return nil, false
}

func combine(a, b []Node, op func(Node, Node) Node) []Node {
	n := max(len(a), len(b))
	out := make([]Node, n)
	for i := range out {
		var x, y Node = Num{0}, Num{0}
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		out[i] = op(x, y)
	}
	return out
}

func convolve(a, b []Node) []Node {
	out := make([]Node, len(a)+len(b)-1)
	for i := range out {
		out[i] = Num{0}
	}
	for i, x := range a {
		for j, y := range b {
			out[i+j] = add(out[i+j], mul(x, y))
		}
	}
	return out
}

// Polynomial returns one compiled closure per coefficient of the expression
// in its variable, or false if the expression is not a polynomial.
func (e *Expression) Polynomial() ([]Func, bool) {
	coeffs, ok := Coefficients(e.Root, e.Variable)
	if !ok {
		return nil, false
	}
	out := make([]Func, len(coeffs))
	for i, c := range coeffs {
		out[i] = compile(c, e.Variable)
	}
	return out, true
}
