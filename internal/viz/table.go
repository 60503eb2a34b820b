package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/bifsim/internal/analysis"
	"github.com/san-kum/bifsim/internal/dynamo"
)

// CountPlot draws the number of equilibria against the sample index.
func CountPlot(res *dynamo.SweepResult, width, height int) string {
	counts := res.Counts()
	if len(counts) == 0 {
		return ""
	}
	data := make([]float64, len(counts))
	for i, n := range counts {
		data[i] = float64(n)
	}
	caption := fmt.Sprintf("equilibria vs r in [%.3g, %.3g]", res.Rs[0], res.Rs[len(res.Rs)-1])
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
	)
}

// Nearest returns the index of the grid sample closest to r.
func Nearest(rs []float64, r float64) int {
	best, dist := -1, math.Inf(1)
	for i, v := range rs {
		if d := math.Abs(v - r); d < dist {
			best, dist = i, d
		}
	}
	return best
}

// EquilibriaLine formats the equilibria of one sample as "x● x○ ...".
func EquilibriaLine(eqs []dynamo.Equilibrium) string {
	if len(eqs) == 0 {
		return Subtle.Render("none")
	}
	parts := make([]string, len(eqs))
	for i, eq := range eqs {
		parts[i] = fmt.Sprintf("%+.4f%s", eq.X, Symbol(eq.Stability))
	}
	return strings.Join(parts, "  ")
}

// SummaryTable lists the equilibria at the start, middle and end of the sweep.
func SummaryTable(res *dynamo.SweepResult) string {
	var b strings.Builder
	for _, r := range analysis.SummaryRs(res) {
		i := Nearest(res.Rs, r)
		eqs := res.At(i)
		fmt.Fprintf(&b, "r = %+8.4f  n = %d  %s\n", res.Rs[i], len(eqs), EquilibriaLine(eqs))
	}
	return b.String()
}

// EventTable lists bifurcation events one per line.
func EventTable(events []dynamo.BifurcationEvent) string {
	if len(events) == 0 {
		return Subtle.Render("no bifurcations found in range") + "\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %10s  %-22s %s\n", "#", "r", "type", "count")
	for i, ev := range events {
		fmt.Fprintf(&b, "%-4d %+10.4f  %s %d -> %d -> %d\n",
			i+1, ev.R, EventStyle.Render(fmt.Sprintf("%-22s", ev.Type)), ev.Before, ev.At, ev.After)
	}
	return b.String()
}

// Legend explains the stability markers.
func Legend() string {
	return strings.Join([]string{
		StableStyle.Render("● stable"),
		UnstableStyle.Render("○ unstable"),
		NeutralStyle.Render("◐ neutral"),
		EventStyle.Render("┊ bifurcation"),
	}, "   ")
}
