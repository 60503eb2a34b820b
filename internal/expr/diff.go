package expr

import "fmt"

// Diff differentiates n with respect to the variable v.
func Diff(n Node, v string) (Node, error) {
	switch e := n.(type) {
	case Num:
		return Num{0}, nil
	case Var:
		if e.Name == v {
			return Num{1}, nil
		}
		return Num{0}, nil
	case Neg:
		d, err := Diff(e.X, v)
		if err != nil {
			return nil, err
		}
		return neg(d), nil
	case Binary:
		return diffBinary(e, v)
	case Call:
		return diffCall(e, v)
	}
	return nil, fmt.Errorf("cannot differentiate %T", n)
}

func diffBinary(b Binary, v string) (Node, error) {
	dl, err := Diff(b.L, v)
	if err != nil {
		return nil, err
	}
	dr, err := Diff(b.R, v)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case '+':
		return add(dl, dr), nil
	case '-':
		return sub(dl, dr), nil
	case '*':
		return add(mul(dl, b.R), mul(b.L, dr)), nil
	case '/':
		if !depends(b.R, v) {
			return div(dl, b.R), nil
		}
		return div(sub(mul(dl, b.R), mul(b.L, dr)), pow(b.R, Num{2})), nil
	case '^':
		switch {
		case !depends(b.R, v):
			// d(u^k) = k u^(k-1) u'
			return mul(mul(b.R, pow(b.L, sub(b.R, Num{1}))), dl), nil
		case !depends(b.L, v):
			// d(a^w) = a^w ln(a) w'
			return mul(mul(b, call("log", b.L)), dr), nil
		}
		// d(u^w) = u^w (w' ln u + w u'/u)
		inner := add(mul(dr, call("log", b.L)), div(mul(b.R, dl), b.L))
		return mul(b, inner), nil
	}
	return nil, fmt.Errorf("cannot differentiate operator %q", b.Op)
}

func diffCall(c Call, v string) (Node, error) {
	du, err := Diff(c.Arg, v)
	if err != nil {
		return nil, err
	}
	if isNum(du, 0) {
		return Num{0}, nil
	}

	u := c.Arg
	var outer Node
	switch c.Fn {
	case "sin":
		outer = call("cos", u)
	case "cos":
		outer = neg(call("sin", u))
	case "tan":
		outer = div(Num{1}, pow(call("cos", u), Num{2}))
	case "asin":
		outer = div(Num{1}, call("sqrt", sub(Num{1}, pow(u, Num{2}))))
	case "acos":
		outer = neg(div(Num{1}, call("sqrt", sub(Num{1}, pow(u, Num{2})))))
	case "atan":
		outer = div(Num{1}, add(Num{1}, pow(u, Num{2})))
	case "sinh":
		outer = call("cosh", u)
	case "cosh":
		outer = call("sinh", u)
	case "tanh":
		outer = div(Num{1}, pow(call("cosh", u), Num{2}))
	case "exp":
		outer = c
	case "log":
		outer = div(Num{1}, u)
	case "sqrt":
		outer = div(Num{1}, mul(Num{2}, c))
	case "abs":
		outer = div(u, c)
	default:
		return nil, fmt.Errorf("no derivative rule for %s", c.Fn)
	}
	return mul(outer, du), nil
}
