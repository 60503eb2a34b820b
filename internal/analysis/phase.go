package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// Snapshot returns the classified equilibria of f at r with default
// tolerances.
func Snapshot(f dynamo.Field, r, xMin, xMax float64) []dynamo.Equilibrium {
	return NewSweeper(DefaultOptions()).Snapshot(f, r, xMin, xMax)
}

// Flow is the direction of x' on an interval of the phase line.
type Flow struct {
	From, To  float64
	Direction int // +1 right, -1 left, 0 at rest or undefined
}

// PhaseLine is the one-dimensional phase portrait of f at a fixed r.
type PhaseLine struct {
	R          float64
	XMin, XMax float64
	Equilibria []dynamo.Equilibrium
	Flows      []Flow
}

// NewPhaseLine samples the sign of f between consecutive equilibria.
func NewPhaseLine(f dynamo.Field, r, xMin, xMax float64) *PhaseLine {
	eqs := Snapshot(f, r, xMin, xMax)
	pl := &PhaseLine{R: r, XMin: xMin, XMax: xMax, Equilibria: eqs}

	edges := make([]float64, 0, len(eqs)+2)
	edges = append(edges, xMin)
	for _, e := range eqs {
		edges = append(edges, e.X)
	}
	edges = append(edges, xMax)

	for i := 0; i+1 < len(edges); i++ {
		a, b := edges[i], edges[i+1]
		if b <= a {
			continue
		}
		pl.Flows = append(pl.Flows, Flow{From: a, To: b, Direction: sign(evalSafe(f, 0.5*(a+b), r))})
	}
	return pl
}

// Refine returns the label of equilibrium i, distinguishing half-stable
// points when the linearisation is neutral. The result is one of the
// dynamo.Stability values or "half-stable".
func (pl *PhaseLine) Refine(i int) string {
	e := pl.Equilibria[i]
	if e.Stability != dynamo.Neutral {
		return string(e.Stability)
	}
	left, right := pl.flowAt(e.X, -1), pl.flowAt(e.X, 1)
	switch {
	case left > 0 && right < 0:
		return string(dynamo.Stable)
	case left < 0 && right > 0:
		return string(dynamo.Unstable)
	case left != 0 && left == right:
		return "half-stable"
	}
	return string(dynamo.Neutral)
}

func (pl *PhaseLine) flowAt(x float64, side int) int {
	for _, fl := range pl.Flows {
		if (side < 0 && fl.To == x) || (side > 0 && fl.From == x) {
			return fl.Direction
		}
	}
	return 0
}

// ASCII draws the phase line in width columns with arrows for the flow and
// stability symbols at the equilibria.
func (pl *PhaseLine) ASCII(width int) string {
	if width < 3 || pl.XMax <= pl.XMin {
		return ""
	}
	line := make([]rune, width)
	col := func(x float64) int {
		c := int(math.Round((x - pl.XMin) / (pl.XMax - pl.XMin) * float64(width-1)))
		return max(0, min(width-1, c))
	}

	for _, fl := range pl.Flows {
		ch := '─'
		switch fl.Direction {
		case 1:
			ch = '>'
		case -1:
			ch = '<'
		}
		for c := col(fl.From); c <= col(fl.To); c++ {
			line[c] = ch
		}
	}
	for i, e := range pl.Equilibria {
		sym := []rune(e.Stability.Symbol())[0]
		if pl.Refine(i) == "half-stable" {
			sym = '◐'
		}
		line[col(e.X)] = sym
	}

	var sb strings.Builder
	for _, ch := range line {
		if ch == 0 {
			ch = ' '
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}

func evalSafe(f dynamo.Field, x, r float64) (v float64) {
	defer func() {
		if recover() != nil {
			v = math.NaN()
		}
	}()
	return f.Eval(x, r)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
