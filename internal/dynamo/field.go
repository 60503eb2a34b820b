package dynamo

import (
	"math"

	"github.com/san-kum/bifsim/internal/expr"
)

const (
	DefaultVariable  = "x"
	DefaultParameter = "r"
)

// ScalarField is a field parsed from text. It is parsed and differentiated
// once; evaluation goes through compiled closures.
type ScalarField struct {
	source string
	f      *expr.Expression
	fx     *expr.Expression
	eval   expr.Func
	slope  expr.Func
	coeffs []expr.Func
	poly   bool
}

// NewScalarField parses source as f(variable, param). Empty symbol names fall
// back to x and r.
func NewScalarField(source, variable, param string) (*ScalarField, error) {
	if variable == "" {
		variable = DefaultVariable
	}
	if param == "" {
		param = DefaultParameter
	}

	f, err := expr.Parse(source, variable, param)
	if err != nil {
		return nil, &ExpressionError{Expr: source, Wrapped: err}
	}
	fx, err := f.Derivative()
	if err != nil {
		return nil, &ExpressionError{Expr: source, Wrapped: err}
	}

	sf := &ScalarField{
		source: source,
		f:      f,
		fx:     fx,
		eval:   f.Compile(),
		slope:  fx.Compile(),
	}
	sf.coeffs, sf.poly = f.Polynomial()
	return sf, nil
}

func (s *ScalarField) Eval(x, r float64) float64  { return s.eval(x, r) }
func (s *ScalarField) Slope(x, r float64) float64 { return s.slope(x, r) }

// Coefficients implements Polynomial.
func (s *ScalarField) Coefficients(r float64) ([]float64, bool) {
	if !s.poly {
		return nil, false
	}
	out := make([]float64, len(s.coeffs))
	for i, c := range s.coeffs {
		v := c(0, r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// IsPolynomial reports whether the field has a polynomial view.
func (s *ScalarField) IsPolynomial() bool { return s.poly }

// Source returns the text the field was parsed from.
func (s *ScalarField) Source() string { return s.source }

// Expression returns the normalised form of f.
func (s *ScalarField) Expression() string { return s.f.String() }

// Derivative returns the normalised form of f_x.
func (s *ScalarField) Derivative() string { return s.fx.String() }

func (s *ScalarField) Variable() string  { return s.f.Variable }
func (s *ScalarField) Parameter() string { return s.f.Parameter }

// FieldFunc adapts plain functions to Field.
type FieldFunc struct {
	F  func(x, r float64) float64
	Fx func(x, r float64) float64
}

func (f FieldFunc) Eval(x, r float64) float64  { return f.F(x, r) }
func (f FieldFunc) Slope(x, r float64) float64 { return f.Fx(x, r) }
