package expr

import "math"

// Func evaluates a compiled expression at state x and parameter r.
type Func func(x, r float64) float64

var functions = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"asin": math.Asin,
	"acos": math.Acos,
	"atan": math.Atan,
	"sinh": math.Sinh,
	"cosh": math.Cosh,
	"tanh": math.Tanh,
	"exp":  math.Exp,
	"log":  math.Log,
	"ln":   math.Log,
	"sqrt": math.Sqrt,
	"abs":  math.Abs,
}

func canonical(name string) string {
	if name == "ln" {
		return "log"
	}
	return name
}

// Compile turns the tree into nested closures. The tree is walked once.
func (e *Expression) Compile() Func {
	return compile(e.Root, e.Variable)
}

func compile(n Node, variable string) Func {
	switch v := n.(type) {
	case Num:
		k := v.Value
		return func(float64, float64) float64 { return k }
	case Var:
		if v.Name == variable {
			return func(x, _ float64) float64 { return x }
		}
		return func(_, r float64) float64 { return r }
	case Neg:
		f := compile(v.X, variable)
		return func(x, r float64) float64 { return -f(x, r) }
	case Binary:
		return compileBinary(v, variable)
	case Call:
		fn := functions[v.Fn]
		arg := compile(v.Arg, variable)
		return func(x, r float64) float64 { return fn(arg(x, r)) }
	}
	return func(float64, float64) float64 { return math.NaN() }
}

func compileBinary(b Binary, variable string) Func {
	l := compile(b.L, variable)
	r := compile(b.R, variable)
	switch b.Op {
	case '+':
		return func(x, p float64) float64 { return l(x, p) + r(x, p) }
	case '-':
		return func(x, p float64) float64 { return l(x, p) - r(x, p) }
	case '*':
		return func(x, p float64) float64 { return l(x, p) * r(x, p) }
	case '/':
		return func(x, p float64) float64 { return l(x, p) / r(x, p) }
	}
	if k, ok := b.R.(Num); ok && k.Value == math.Trunc(k.Value) && math.Abs(k.Value) <= maxDegree {
		n := int(k.Value)
		return func(x, p float64) float64 { return ipow(l(x, p), n) }
	}
	return func(x, p float64) float64 { return math.Pow(l(x, p), r(x, p)) }
}

func ipow(b float64, n int) float64 {
	if n < 0 {
		return 1 / ipow(b, -n)
	}
	out := 1.0
	for n > 0 {
		if n&1 == 1 {
			out *= b
		}
		b *= b
		n >>= 1
	}
	return out
}
