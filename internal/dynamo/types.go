package dynamo

import "math"

// Field is a one-dimensional vector field x' = f(x, r) with its partial
// derivative in x.
type Field interface {
	Eval(x, r float64) float64
	Slope(x, r float64) float64
}

// Polynomial is implemented by fields that are polynomials in x. The
// coefficients are returned lowest degree first; ok is false when they cannot
// be evaluated at r.
type Polynomial interface {
	Coefficients(r float64) (coeffs []float64, ok bool)
}

// Stability is the local stability label of an equilibrium.
type Stability string

const (
	// StabilityNone marks a branch sample with no equilibrium.
	StabilityNone Stability = ""
	Stable        Stability = "stable"
	Unstable      Stability = "unstable"
	Neutral       Stability = "neutral"
	Undefined     Stability = "undefined"
)

// Symbol is the one-rune marker used in tables.
func (s Stability) Symbol() string {
	switch s {
	case Stable:
		return "●"
	case Unstable:
		return "○"
	case Neutral:
		return "◐"
	case Undefined:
		return "?"
	}
	return " "
}

// Equilibrium is one root of f at a fixed r.
type Equilibrium struct {
	X         float64   `json:"x"`
	Slope     float64   `json:"slope"`
	Stability Stability `json:"stability"`
}

// Branch is one continuous curve of equilibria over the r-grid. X and Stab
// are NaN and StabilityNone where the branch has no point.
type Branch struct {
	R    []float64   `json:"r"`
	X    []float64   `json:"x"`
	Stab []Stability `json:"stability"`
}

// Len returns the number of grid samples the branch spans.
func (b Branch) Len() int { return len(b.X) }

// Present reports whether the branch has a point at sample i.
func (b Branch) Present(i int) bool {
	return i >= 0 && i < len(b.X) && !math.IsNaN(b.X[i])
}

// Extent returns the first and last present sample, or -1, -1.
func (b Branch) Extent() (first, last int) {
	first, last = -1, -1
	for i := range b.X {
		if !b.Present(i) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	return first, last
}

// Split returns copies of X masked to stable and unstable points. Masked
// samples are NaN so that plotting breaks the curve there.
func (b Branch) Split() (stable, unstable []float64) {
	stable = make([]float64, len(b.X))
	unstable = make([]float64, len(b.X))
	for i, x := range b.X {
		stable[i], unstable[i] = math.NaN(), math.NaN()
		switch b.Stab[i] {
		case Stable:
			stable[i] = x
		case Unstable:
			unstable[i] = x
		}
	}
	return stable, unstable
}

// BifurcationType names the kind of a detected bifurcation.
type BifurcationType string

const (
	SaddleNode      BifurcationType = "saddle-node"
	Transcritical   BifurcationType = "transcritical"
	Pitchfork       BifurcationType = "pitchfork"
	Appearing       BifurcationType = "equilibria-appearing"
	Vanishing       BifurcationType = "equilibria-vanishing"
	StabilityChange BifurcationType = "stability-change"
	Unclassified    BifurcationType = "unclassified"
)

// BifurcationEvent is a classified change in the equilibrium structure
// located between two grid samples.
type BifurcationEvent struct {
	R       float64         `json:"r"`
	Type    BifurcationType `json:"type"`
	RBefore float64         `json:"r_before"`
	RAfter  float64         `json:"r_after"`
	Before  int             `json:"n_before"`
	At      int             `json:"n_at"`
	After   int             `json:"n_after"`
}

// SweepResult is the output of a parameter sweep. Roots, Stabilities and
// Slopes are indexed like Rs.
type SweepResult struct {
	Expression   string             `json:"expression,omitempty"`
	Derivative   string             `json:"derivative,omitempty"`
	Rs           []float64          `json:"rs"`
	Roots        [][]float64        `json:"roots"`
	Stabilities  [][]Stability      `json:"stabilities"`
	Slopes       [][]float64        `json:"-"`
	Branches     []Branch           `json:"-"`
	Bifurcations []BifurcationEvent `json:"bifurcations"`
}

// Counts returns the number of equilibria per sample.
func (s *SweepResult) Counts() []int {
	out := make([]int, len(s.Roots))
	for i, roots := range s.Roots {
		out[i] = len(roots)
	}
	return out
}

// Empty reports whether no equilibrium was found anywhere in the sweep.
func (s *SweepResult) Empty() bool {
	for _, roots := range s.Roots {
		if len(roots) > 0 {
			return false
		}
	}
	return true
}

// At returns the equilibria of sample i with slopes and labels.
func (s *SweepResult) At(i int) []Equilibrium {
	if i < 0 || i >= len(s.Roots) {
		return nil
	}
	out := make([]Equilibrium, len(s.Roots[i]))
	for j, x := range s.Roots[i] {
		out[j] = Equilibrium{X: x, Slope: s.Slopes[i][j], Stability: s.Stabilities[i][j]}
	}
	return out
}
