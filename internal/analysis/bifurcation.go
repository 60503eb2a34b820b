package analysis

import (
	"math"

	"github.com/go-logr/logr"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// DefaultTranscriticalShift is the minimum centre or span shift of the
// equilibrium set for an equal-count event to count as transcritical.
const DefaultTranscriticalShift = 1e-3

// Detector locates and classifies bifurcations in a sampled sweep.
type Detector struct {
	Roots      RootConfig
	XMin, XMax float64

	TranscriticalShift float64

	// Coalesce folds two candidates around an isolated sample into one
	// event when that sample sits exactly on a tangency or crossing, where
	// the finder sees a single merged root. Distinct events on adjacent
	// intervals are kept apart.
	Coalesce bool

	Logger logr.Logger
}

// Detect returns one event per change in equilibrium count between adjacent
// samples, ordered by r. eqs must be the per-sample roots for rs.
func (d Detector) Detect(f dynamo.Field, rs []float64, eqs [][]float64) []dynamo.BifurcationEvent {
	log := d.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	n := min(len(rs), len(eqs))
	events := make([]dynamo.BifurcationEvent, 0)
	for i := 0; i+1 < n; i++ {
		if len(eqs[i]) == len(eqs[i+1]) {
			continue
		}

		after := i + 1
		if d.Coalesce && i+2 < n && transient(len(eqs[i]), len(eqs[i+1]), len(eqs[i+2])) {
			after = i + 2
		}

		ev := d.classify(log, f, 0.5*(rs[i]+rs[i+1]), rs[i], rs[after])
		log.V(1).Info("bifurcation", "r", ev.R, "type", ev.Type,
			"before", ev.Before, "at", ev.At, "after", ev.After)
		events = append(events, ev)
		i = after - 1
	}
	return events
}

// transient reports whether the middle of three sample counts a, b, c is a
// merged root: a crossing (a == c, b < a) or a fold landing on the grid
// (|a-c| == 2, b strictly between).
func transient(a, b, c int) bool {
	if a == c {
		return b < a
	}
	if a-c != 2 && c-a != 2 {
		return false
	}
	return b > min(a, c) && b < max(a, c)
}

func (d Detector) classify(log logr.Logger, f dynamo.Field, r, rBefore, rAfter float64) (ev dynamo.BifurcationEvent) {
	ev = dynamo.BifurcationEvent{R: r, Type: dynamo.Unclassified, RBefore: rBefore, RAfter: rAfter}
	defer func() {
		if p := recover(); p != nil {
			log.V(1).Info("event analysis failed", "r", r, "panic", p)
			ev.Type = dynamo.Unclassified
		}
	}()

	before := d.Roots.Find(f, rBefore, d.XMin, d.XMax)
	at := d.Roots.Find(f, r, d.XMin, d.XMax)
	after := d.Roots.Find(f, rAfter, d.XMin, d.XMax)
	ev.Before, ev.At, ev.After = len(before), len(at), len(after)
	ev.Type = d.typeOf(before, after)
	return ev
}

// typeOf applies the classification rules in order: pitchfork,
// transcritical, then saddle-node for any other count change.
func (d Detector) typeOf(before, after []float64) dynamo.BifurcationType {
	nb, na := len(before), len(after)
	switch {
	case (nb == 1 && na == 3) || (nb == 3 && na == 1):
		return dynamo.Pitchfork
	case nb == na && nb >= 2 && d.shifted(before, after):
		return dynamo.Transcritical
	case nb != na:
		return dynamo.SaddleNode
	}
	return dynamo.StabilityChange
}

// shifted reports whether the centre or the span of two equally sized sorted
// root sets moved by more than the transcritical threshold.
func (d Detector) shifted(before, after []float64) bool {
	tol := d.TranscriticalShift
	if tol <= 0 {
		tol = DefaultTranscriticalShift
	}
	centre := math.Abs(mean(after) - mean(before))
	span := math.Abs((after[len(after)-1] - after[0]) - (before[len(before)-1] - before[0]))
	return centre > tol || span > tol
}

func mean(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}
