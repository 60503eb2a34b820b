package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// Diagram renders a bifurcation diagram of a sweep as braille text.
type Diagram struct {
	Width  int
	Height int
	// Cursor marks one r value with a vertical bar; NaN disables it.
	Cursor float64
	// Plain disables colors.
	Plain bool
}

// NewDiagram returns a diagram of w x h cells without a cursor.
func NewDiagram(w, h int) Diagram {
	return Diagram{Width: max(w, 8), Height: max(h, 4), Cursor: math.NaN()}
}

// RenderDiagram is shorthand for NewDiagram(w, h).Render(res).
func RenderDiagram(res *dynamo.SweepResult, w, h int) string {
	return NewDiagram(w, h).Render(res)
}

// Render draws stable branches, unstable branches and event columns. Stable
// dots win over unstable ones in a shared cell.
func (d Diagram) Render(res *dynamo.SweepResult) string {
	if res == nil || len(res.Rs) == 0 {
		return Subtle.Render("(empty sweep)") + "\n"
	}
	rMin, rMax := res.Rs[0], res.Rs[len(res.Rs)-1]
	xMin, xMax := rootExtent(res)

	layers := map[dynamo.Stability]*Canvas{}
	layer := func(s dynamo.Stability) *Canvas {
		if s != dynamo.Stable && s != dynamo.Unstable {
			s = dynamo.Neutral
		}
		c, ok := layers[s]
		if !ok {
			c = NewCanvas(d.Width, d.Height, rMin, rMax, xMin, xMax)
			layers[s] = c
		}
		return c
	}

	for _, b := range res.Branches {
		for i := range b.X {
			if !b.Present(i) {
				continue
			}
			c := layer(b.Stab[i])
			if b.Present(i+1) && b.Stab[i+1] == b.Stab[i] {
				c.Line(b.R[i], b.X[i], b.R[i+1], b.X[i+1])
			} else {
				c.Point(b.R[i], b.X[i])
			}
		}
	}

	ref := NewCanvas(d.Width, d.Height, rMin, rMax, xMin, xMax)
	events := map[int]bool{}
	for _, ev := range res.Bifurcations {
		events[ref.Column(ev.R)] = true
	}
	cursor := -1
	if !math.IsNaN(d.Cursor) {
		cursor = ref.Column(d.Cursor)
	}

	order := []dynamo.Stability{dynamo.Stable, dynamo.Unstable, dynamo.Neutral}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", d.paint(Subtle, fmt.Sprintf("x %+.3g", xMax)))
	for row := 0; row < d.Height; row++ {
		for col := 0; col < d.Width; col++ {
			b.WriteString(d.cell(layers, order, row, col, col == cursor, events[col]))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%s\n", d.paint(Subtle, fmt.Sprintf("x %+.3g", xMin)))
	left := fmt.Sprintf("r %+.3g", rMin)
	right := fmt.Sprintf("%+.3g", rMax)
	pad := max(d.Width-len(left)-len(right), 1)
	fmt.Fprintf(&b, "%s\n", d.paint(Subtle, left+strings.Repeat(" ", pad)+right))
	return b.String()
}

func (d Diagram) cell(layers map[dynamo.Stability]*Canvas, order []dynamo.Stability, row, col int, cursor, event bool) string {
	for _, s := range order {
		c, ok := layers[s]
		if !ok || c.Empty(row, col) {
			continue
		}
		if cursor {
			return d.paint(Title, string(c.Grid[row][col]))
		}
		return d.paint(StabilityStyle(s), string(c.Grid[row][col]))
	}
	switch {
	case cursor:
		return d.paint(Title, "│")
	case event:
		return d.paint(EventStyle, "┊")
	}
	return " "
}

func (d Diagram) paint(style lipgloss.Style, s string) string {
	if d.Plain {
		return s
	}
	return style.Render(s)
}

// rootExtent returns the x range of all roots, padded by a tenth of its
// span. A sweep without roots maps onto [-1, 1].
func rootExtent(res *dynamo.SweepResult) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, roots := range res.Roots {
		for _, x := range roots {
			lo, hi = math.Min(lo, x), math.Max(hi, x)
		}
	}
	if math.IsInf(lo, 1) {
		return -1, 1
	}
	pad := 0.1 * (hi - lo)
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}
