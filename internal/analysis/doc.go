// Package analysis finds, classifies and tracks the equilibria of a
// one-dimensional field over a parameter sweep and detects bifurcations.
//
//   - [RootConfig.Find], [FindEquilibria]: real roots of f(., r) in a window
//   - [Classify]: stability from the sign of f_x
//   - [TrackBranches]: greedy nearest-neighbour continuation
//   - [Detector.Detect]: saddle-node, transcritical and pitchfork events
//   - [Sweeper], [Run], [RunField]: the full pipeline
//   - [CriticalR], [Snapshot], [NewPhaseLine]: summaries of a sweep
//
// # Example
//
//	res, err := analysis.Run(ctx, analysis.SweepSpec{
//		Expression: "r*x - x**3",
//		RMin: -1, RMax: 1,
//		XMin: -2, XMax: 2,
//	})
//	for _, ev := range res.Bifurcations {
//		fmt.Println(ev.Type, ev.R)
//	}
//
// Sweeps are deterministic: the same SweepSpec and options give identical output
// whatever the number of workers.
package analysis
