package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/go-logr/logr"

	"github.com/san-kum/bifsim/internal/analysis"
	"github.com/san-kum/bifsim/internal/dynamo"
)

const (
	DefaultTolerance = 1e-8
	DefaultMaxIter   = 64
)

// Locator narrows the parameter interval of a detected bifurcation by
// bisecting on the equilibrium count.
type Locator struct {
	Roots      analysis.RootConfig
	XMin, XMax float64
	Tolerance  float64
	MaxIter    int
	Logger     logr.Logger
}

// NewLocator returns a Locator with default tolerances for the given window.
func NewLocator(xMin, xMax float64) *Locator {
	return &Locator{
		Roots:     analysis.DefaultRootConfig(),
		XMin:      xMin,
		XMax:      xMax,
		Tolerance: DefaultTolerance,
		MaxIter:   DefaultMaxIter,
	}
}

// Refined is a bifurcation with a narrowed location.
type Refined struct {
	Event dynamo.BifurcationEvent
	// R is the centre of the final bracket.
	R float64
	// Width is the final bracket width.
	Width float64
	// Converged is false when the bracket ends did not differ in count.
	Converged bool
}

func (l *Locator) count(f dynamo.Field, r float64) int {
	return len(l.Roots.Find(f, r, l.XMin, l.XMax))
}

// Locate bisects [ev.RBefore, ev.RAfter] while keeping the left end on the
// equilibrium count of ev.RBefore.
func (l *Locator) Locate(ctx context.Context, f dynamo.Field, ev dynamo.BifurcationEvent) (Refined, error) {
	log := l.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	log = log.WithName("locate")

	out := Refined{Event: ev, R: ev.R, Width: ev.RAfter - ev.RBefore}
	a, b := ev.RBefore, ev.RAfter
	if !(a < b) {
		return out, nil
	}

	left := l.count(f, a)
	moved := false
	for iter := 0; iter < l.MaxIter && b-a > l.Tolerance; iter++ {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("locate r = %g: %w", ev.R, err)
		}
		mid := 0.5 * (a + b)
		if mid <= a || mid >= b {
			break
		}
		if l.count(f, mid) == left {
			a = mid
		} else {
			b = mid
			moved = true
		}
	}

	out.Converged = moved || l.count(f, b) != left
	if out.Converged {
		out.R, out.Width = 0.5*(a+b), b-a
	}
	log.V(1).Info("located", "type", ev.Type, "r", ev.R, "refined", out.R, "width", out.Width, "converged", out.Converged)
	return out, nil
}

// LocateAll refines every event of a sweep.
func (l *Locator) LocateAll(ctx context.Context, f dynamo.Field, events []dynamo.BifurcationEvent) ([]Refined, error) {
	out := make([]Refined, 0, len(events))
	for _, ev := range events {
		ref, err := l.Locate(ctx, f, ev)
		if err != nil {
			return out, err
		}
		out = append(out, ref)
	}
	return out, nil
}

// Shift is the distance between the grid estimate and the refined location.
func (r Refined) Shift() float64 {
	if !r.Converged {
		return math.NaN()
	}
	return r.R - r.Event.R
}
