package expr

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

var constants = map[string]float64{
	"pi": math.Pi,
	"PI": math.Pi,
	"e":  math.E,
	"E":  math.E,
}

// ParseError reports text that cannot be turned into a field expression.
type ParseError struct {
	Source string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Source, e.Reason)
}

// Expression is a parsed right-hand side f(variable, param).
type Expression struct {
	Source    string
	Variable  string
	Parameter string
	Root      Node
}

// Parse reads source once into a symbolic tree. Identifiers other than the
// variable, the parameter and the known constants are rejected.
func Parse(source, variable, param string) (*Expression, error) {
	if variable == "" || param == "" || variable == param {
		return nil, &ParseError{Source: source, Reason: fmt.Sprintf("invalid symbols %q and %q", variable, param)}
	}
	if strings.TrimSpace(source) == "" {
		return nil, &ParseError{Source: source, Reason: "empty expression"}
	}

	tree, err := parser.Parse(source)
	if err != nil {
		return nil, &ParseError{Source: source, Reason: firstLine(err.Error())}
	}

	c := converter{variable: variable, param: param}
	root, err := c.convert(tree.Node)
	if err != nil {
		return nil, &ParseError{Source: source, Reason: err.Error()}
	}

	return &Expression{Source: source, Variable: variable, Parameter: param, Root: root}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(source, variable, param string) *Expression {
	e, err := Parse(source, variable, param)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Expression) String() string { return e.Root.String() }

// Derivative returns d/d(variable) of the expression.
func (e *Expression) Derivative() (*Expression, error) {
	d, err := Diff(e.Root, e.Variable)
	if err != nil {
		return nil, &ParseError{Source: e.Source, Reason: err.Error()}
	}
	return &Expression{Source: e.Source, Variable: e.Variable, Parameter: e.Parameter, Root: d}, nil
}

type converter struct {
	variable string
	param    string
}

func (c converter) convert(n ast.Node) (Node, error) {
	switch v := n.(type) {
	case *ast.IntegerNode:
		return Num{float64(v.Value)}, nil
	case *ast.FloatNode:
		return Num{v.Value}, nil
	case *ast.IdentifierNode:
		return c.ident(v.Value)
	case *ast.UnaryNode:
		x, err := c.convert(v.Node)
		if err != nil {
			return nil, err
		}
		switch v.Operator {
		case "-":
			return neg(x), nil
		case "+":
			return x, nil
		}
		return nil, fmt.Errorf("unsupported operator %q", v.Operator)
	case *ast.BinaryNode:
		return c.binary(v)
	case *ast.CallNode:
		id, ok := v.Callee.(*ast.IdentifierNode)
		if !ok {
			return nil, fmt.Errorf("unsupported call")
		}
		return c.call(id.Value, v.Arguments)
	case *ast.BuiltinNode:
		return c.call(v.Name, v.Arguments)
	}
	return nil, fmt.Errorf("unsupported syntax %T", n)
}

func (c converter) ident(name string) (Node, error) {
	switch name {
	case c.variable, c.param:
		return Var{name}, nil
	}
	if v, ok := constants[name]; ok {
		return Num{v}, nil
	}
	return nil, fmt.Errorf("unknown identifier %q", name)
}

func (c converter) binary(b *ast.BinaryNode) (Node, error) {
	l, err := c.convert(b.Left)
	if err != nil {
		return nil, err
	}
	r, err := c.convert(b.Right)
	if err != nil {
		return nil, err
	}
	switch b.Operator {
	case "+":
		return add(l, r), nil
	case "-":
		return sub(l, r), nil
	case "*":
		return mul(l, r), nil
	case "/":
		return div(l, r), nil
	case "^", "**":
		return pow(l, r), nil
	}
	return nil, fmt.Errorf("unsupported operator %q", b.Operator)
}

func (c converter) call(name string, args []ast.Node) (Node, error) {
	if _, ok := functions[name]; !ok {
		return nil, fmt.Errorf("unsupported function %q", name)
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("%s takes one argument, got %d", name, len(args))
	}
	arg, err := c.convert(args[0])
	if err != nil {
		return nil, err
	}
	return call(canonical(name), arg), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
