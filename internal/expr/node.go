package expr

import (
	"math"
	"strconv"
)

// Node is a symbolic expression over one state variable and one parameter.
type Node interface {
	String() string
	prec() int
}

const (
	precAdd = iota + 1
	precMul
	precNeg
	precPow
	precAtom
)

// Num is a numeric literal.
type Num struct{ Value float64 }

// Var is a reference to the state variable or the parameter.
type Var struct{ Name string }

// Neg is unary negation.
type Neg struct{ X Node }

// Binary is one of + - * / ^.
type Binary struct {
	Op   byte
	L, R Node
}

// Call applies a named real function to one argument.
type Call struct {
	Fn  string
	Arg Node
}

func (n Num) prec() int {
	if n.Value < 0 {
		return precNeg
	}
	return precAtom
}

func (n Num) String() string {
	switch {
	case math.IsInf(n.Value, 1):
		return "inf"
	case math.IsInf(n.Value, -1):
		return "-inf"
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (v Var) prec() int      { return precAtom }
func (v Var) String() string { return v.Name }

func (n Neg) prec() int { return precNeg }

func (n Neg) String() string {
	if n.X.prec() < precNeg {
		return "-(" + n.X.String() + ")"
	}
	return "-" + n.X.String()
}

func (b Binary) prec() int {
	switch b.Op {
	case '+', '-':
		return precAdd
	case '*', '/':
		return precMul
	}
	return precPow
}

func (b Binary) String() string {
	p := b.prec()
	l, r := b.L.String(), b.R.String()

	// ^ is right associative, everything else left associative.
	if b.L.prec() < p || (b.Op == '^' && b.L.prec() == p) {
		l = "(" + l + ")"
	}
	if b.R.prec() < p || (b.R.prec() == p && (b.Op == '-' || b.Op == '/')) {
		r = "(" + r + ")"
	}
	if b.Op == '^' {
		return l + "^" + r
	}
	return l + " " + string(b.Op) + " " + r
}

func (c Call) prec() int      { return precAtom }
func (c Call) String() string { return c.Fn + "(" + c.Arg.String() + ")" }

func isNum(n Node, v float64) bool {
	k, ok := n.(Num)
	return ok && k.Value == v
}

func add(a, b Node) Node {
	ka, aok := a.(Num)
	kb, bok := b.(Num)
	switch {
	case aok && bok:
		return Num{ka.Value + kb.Value}
	case isNum(a, 0):
		return b
	case isNum(b, 0):
		return a
	}
	if nb, ok := b.(Neg); ok {
		return Binary{'-', a, nb.X}
	}
	return Binary{'+', a, b}
}

func sub(a, b Node) Node {
	ka, aok := a.(Num)
	kb, bok := b.(Num)
	switch {
	case aok && bok:
		return Num{ka.Value - kb.Value}
	case isNum(b, 0):
		return a
	case isNum(a, 0):
		return neg(b)
	}
	if nb, ok := b.(Neg); ok {
		return Binary{'+', a, nb.X}
	}
	return Binary{'-', a, b}
}

func mul(a, b Node) Node {
	ka, aok := a.(Num)
	kb, bok := b.(Num)
	switch {
	case aok && bok:
		return Num{ka.Value * kb.Value}
	case isNum(a, 0) || isNum(b, 0):
		return Num{0}
	case isNum(a, 1):
		return b
	case isNum(b, 1):
		return a
	case isNum(a, -1):
		return neg(b)
	case isNum(b, -1):
		return neg(a)
	}
	return Binary{'*', a, b}
}

func div(a, b Node) Node {
	ka, aok := a.(Num)
	kb, bok := b.(Num)
	switch {
	case aok && bok && kb.Value != 0:
		return Num{ka.Value / kb.Value}
	case isNum(a, 0):
		return Num{0}
	case isNum(b, 1):
		return a
	}
	return Binary{'/', a, b}
}

func pow(a, b Node) Node {
	ka, aok := a.(Num)
	kb, bok := b.(Num)
	switch {
	case aok && bok:
		return Num{math.Pow(ka.Value, kb.Value)}
	case isNum(b, 0):
		return Num{1}
	case isNum(b, 1):
		return a
	}
	return Binary{'^', a, b}
}

func neg(a Node) Node {
	switch v := a.(type) {
	case Num:
		return Num{-v.Value}
	case Neg:
		return v.X
	}
	return Neg{a}
}

func call(fn string, arg Node) Node {
	if k, ok := arg.(Num); ok {
		if f, ok := functions[fn]; ok {
			return Num{f(k.Value)}
		}
	}
	return Call{fn, arg}
}

// depends reports whether n references the variable name.
func depends(n Node, name string) bool {
	switch v := n.(type) {
	case Var:
		return v.Name == name
	case Neg:
		return depends(v.X, name)
	case Binary:
		return depends(v.L, name) || depends(v.R, name)
	case Call:
		return depends(v.Arg, name)
	}
	return false
}
