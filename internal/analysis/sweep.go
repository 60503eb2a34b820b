package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/go-logr/logr"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/bifsim/internal/dynamo"
)

const (
	minAutoSteps = 151
	maxAutoSteps = 801
)

// SweepSpec describes one parameter sweep.
type SweepSpec struct {
	Expression string
	Variable   string
	Parameter  string

	RMin, RMax float64
	XMin, XMax float64

	// Steps is the number of r samples. Zero selects AutoSteps.
	Steps int
}

// Validate checks the ranges of the spec.
func (s SweepSpec) Validate() error {
	if !finite(s.RMin) || !finite(s.RMax) || s.RMin > s.RMax {
		return fmt.Errorf("%w: r in [%g, %g]", dynamo.ErrParameterBounds, s.RMin, s.RMax)
	}
	if !finite(s.XMin) || !finite(s.XMax) || s.XMin >= s.XMax {
		return fmt.Errorf("%w: x in [%g, %g]", dynamo.ErrSearchWindow, s.XMin, s.XMax)
	}
	if s.Steps < 0 {
		return fmt.Errorf("%w: %d", dynamo.ErrInvalidSteps, s.Steps)
	}
	return nil
}

// AutoSteps picks a sample count proportional to the width of the r-range.
func AutoSteps(rMin, rMax float64) int {
	n := int(100 * math.Max(0.05, rMax-rMin))
	return max(minAutoSteps, min(maxAutoSteps, n))
}

// Grid returns n linearly spaced values from lo to hi inclusive.
func Grid(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Options configures a Sweeper.
type Options struct {
	Roots              RootConfig
	TranscriticalShift float64
	Coalesce           bool

	// Workers fans per-sample root finding out over goroutines. Results do
	// not depend on it.
	Workers int

	Logger logr.Logger
}

// DefaultOptions returns the options used by Run.
func DefaultOptions() Options {
	return Options{
		Roots:              DefaultRootConfig(),
		TranscriticalShift: DefaultTranscriticalShift,
		Coalesce:           true,
		Workers:            1,
	}
}

// Sweeper runs parameter sweeps.
type Sweeper struct {
	opts Options
	log  logr.Logger
}

// NewSweeper returns a Sweeper. A zero Logger discards output.
func NewSweeper(opts Options) *Sweeper {
	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	return &Sweeper{opts: opts, log: logger.WithName("sweep")}
}

// Run parses spec.Expression and sweeps it with the default options.
func Run(ctx context.Context, spec SweepSpec) (*dynamo.SweepResult, error) {
	return NewSweeper(DefaultOptions()).Run(ctx, spec)
}

// RunField sweeps an already constructed field with the default options.
func RunField(ctx context.Context, f dynamo.Field, spec SweepSpec) (*dynamo.SweepResult, error) {
	return NewSweeper(DefaultOptions()).RunField(ctx, f, spec)
}

// Run parses spec.Expression and sweeps it. Parse failures are returned as
// *dynamo.ExpressionError before any sampling happens.
func (s *Sweeper) Run(ctx context.Context, spec SweepSpec) (*dynamo.SweepResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	f, err := dynamo.NewScalarField(spec.Expression, spec.Variable, spec.Parameter)
	if err != nil {
		return nil, err
	}
	return s.RunField(ctx, f, spec)
}

// RunField samples r, solves and classifies the equilibria at each sample,
// tracks branches and detects bifurcations.
func (s *Sweeper) RunField(ctx context.Context, f dynamo.Field, spec SweepSpec) (*dynamo.SweepResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	steps := spec.Steps
	if steps == 0 {
		steps = AutoSteps(spec.RMin, spec.RMax)
	}
	rs := Grid(spec.RMin, spec.RMax, steps)

	res := &dynamo.SweepResult{
		Rs:          rs,
		Roots:       make([][]float64, len(rs)),
		Stabilities: make([][]dynamo.Stability, len(rs)),
		Slopes:      make([][]float64, len(rs)),
	}
	if sf, ok := f.(*dynamo.ScalarField); ok {
		res.Expression, res.Derivative = sf.Expression(), sf.Derivative()
	}

	s.log.V(1).Info("sweep started", "expression", res.Expression,
		"r", []float64{spec.RMin, spec.RMax}, "x", []float64{spec.XMin, spec.XMax}, "steps", len(rs))

	err := dynamo.ParallelFor(ctx, len(rs), s.opts.Workers, func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return &dynamo.SweepError{Step: i, R: rs[i], Wrapped: fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, err)}
		}
		roots := s.opts.Roots.Find(f, rs[i], spec.XMin, spec.XMax)
		stabs := make([]dynamo.Stability, len(roots))
		slopes := make([]float64, len(roots))
		for j, x := range roots {
			stabs[j], slopes[j] = Classify(f, x, rs[i])
		}
		res.Roots[i], res.Stabilities[i], res.Slopes[i] = roots, stabs, slopes
		return nil
	})
	if err != nil {
		s.log.Info("sweep aborted", "error", err.Error())
		return nil, err
	}

	res.Branches = TrackBranches(rs, res.Roots, res.Stabilities)
	res.Bifurcations = s.detector(spec).Detect(f, rs, res.Roots)

	s.log.Info("sweep complete", "samples", len(rs), "branches", len(res.Branches),
		"bifurcations", len(res.Bifurcations))
	return res, nil
}

func (s *Sweeper) detector(spec SweepSpec) Detector {
	return Detector{
		Roots:              s.opts.Roots,
		XMin:               spec.XMin,
		XMax:               spec.XMax,
		TranscriticalShift: s.opts.TranscriticalShift,
		Coalesce:           s.opts.Coalesce,
		Logger:             s.log.WithName("detect"),
	}
}

// Snapshot solves and classifies the equilibria of f at a single r.
func (s *Sweeper) Snapshot(f dynamo.Field, r, xMin, xMax float64) []dynamo.Equilibrium {
	roots := s.opts.Roots.Find(f, r, xMin, xMax)
	out := make([]dynamo.Equilibrium, len(roots))
	for i, x := range roots {
		st, slope := Classify(f, x, r)
		out[i] = dynamo.Equilibrium{X: x, Slope: slope, Stability: st}
	}
	return out
}
