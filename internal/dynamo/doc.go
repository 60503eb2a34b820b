// Package dynamo provides the core types for one-dimensional parametrized
// systems x' = f(x, r).
//
//   - [Field]: f and its x-derivative, optionally a [Polynomial]
//   - [ScalarField]: a field parsed once from text
//   - [FieldFunc]: a field from plain Go functions
//   - [Stability], [Equilibrium], [Branch]: per-sample results
//   - [BifurcationEvent], [SweepResult]: sweep output
//
// # Example
//
//	f, err := dynamo.NewScalarField("r*x - x**3", "x", "r")
//	if err != nil {
//		return err
//	}
//	res, err := analysis.RunField(ctx, f, analysis.SweepSpec{RMin: -1, RMax: 1, XMin: -2, XMax: 2})
//
// # Thread Safety
//
// A ScalarField is immutable after construction and safe for concurrent use.
// [ParallelFor] relies on this when a sweep fans out over workers.
package dynamo
