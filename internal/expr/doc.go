// Package expr parses the right-hand side of x' = f(x, r) into a small
// symbolic tree, differentiates it and compiles it into closures.
//
// Text is tokenised and parsed by github.com/expr-lang/expr; its AST is then
// lowered into [Node] values restricted to one state variable, one parameter,
// numeric constants and the real functions listed in the functions table.
//
//   - [Parse] builds an [Expression] once.
//   - [Diff] differentiates symbolically.
//   - [Coefficients] and [Expression.Polynomial] expose the polynomial view.
//   - [Expression.Compile] returns a [Func].
package expr
