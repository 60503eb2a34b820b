package export

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/bifsim/internal/dynamo"
)

var (
	stableColor   = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	unstableColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	neutralColor  = color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}
	eventColor    = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}

	dashes = []vg.Length{vg.Points(5), vg.Points(3)}
)

// Segment is a maximal run of consecutive branch points with one label.
type Segment struct {
	Stability dynamo.Stability
	Points    plotter.XYs
}

// Segments cuts every branch into runs of equal stability. Gaps end a run.
func Segments(branches []dynamo.Branch) []Segment {
	var out []Segment
	for _, b := range branches {
		cur := -1
		for i := range b.X {
			if !b.Present(i) {
				cur = -1
				continue
			}
			if cur < 0 || out[cur].Stability != b.Stab[i] {
				// Consecutive runs share their boundary point so the curve
				// stays connected where the label flips.
				var start plotter.XYs
				if cur >= 0 {
					start = plotter.XYs{out[cur].Points[len(out[cur].Points)-1]}
				}
				out = append(out, Segment{Stability: b.Stab[i], Points: start})
				cur = len(out) - 1
			}
			out[cur].Points = append(out[cur].Points, plotter.XY{X: b.R[i], Y: b.X[i]})
		}
	}
	return out
}

// Diagram draws the bifurcation diagram of a sweep: stable branches solid,
// unstable dashed, bifurcations as vertical lines.
func Diagram(res *dynamo.SweepResult, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "r"
	p.Y.Label.Text = "x*"
	p.Add(plotter.NewGrid())

	yMin, yMax := extent(res)
	if len(res.Rs) > 0 {
		p.X.Min, p.X.Max = res.Rs[0], res.Rs[len(res.Rs)-1]
	}
	p.Y.Min, p.Y.Max = yMin, yMax

	legend := map[dynamo.Stability]bool{}
	for _, seg := range Segments(res.Branches) {
		thumb, err := addSegment(p, seg)
		if err != nil {
			return nil, err
		}
		if thumb != nil && !legend[seg.Stability] {
			legend[seg.Stability] = true
			p.Legend.Add(string(seg.Stability), thumb)
		}
	}

	for i, ev := range res.Bifurcations {
		line, err := plotter.NewLine(plotter.XYs{{X: ev.R, Y: yMin}, {X: ev.R, Y: yMax}})
		if err != nil {
			return nil, err
		}
		line.Color = eventColor
		line.Width = vg.Points(1)
		line.Dashes = []vg.Length{vg.Points(1), vg.Points(2)}
		p.Add(line)
		if i == 0 {
			p.Legend.Add("bifurcation", line)
		}
	}

	p.Legend.Top = true
	return p, nil
}

func addSegment(p *plot.Plot, seg Segment) (plot.Thumbnailer, error) {
	c := neutralColor
	switch seg.Stability {
	case dynamo.Stable:
		c = stableColor
	case dynamo.Unstable:
		c = unstableColor
	}

	if len(seg.Points) == 1 {
		sc, err := plotter.NewScatter(seg.Points)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = c
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
		return sc, nil
	}

	line, err := plotter.NewLine(seg.Points)
	if err != nil {
		return nil, err
	}
	line.Color = c
	line.Width = vg.Points(2)
	if seg.Stability != dynamo.Stable {
		line.Dashes = dashes
	}
	p.Add(line)
	return line, nil
}

// extent returns a padded y-range covering every equilibrium.
func extent(res *dynamo.SweepResult) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, roots := range res.Roots {
		for _, x := range roots {
			lo, hi = math.Min(lo, x), math.Max(hi, x)
		}
	}
	if math.IsInf(lo, 0) {
		return -1, 1
	}
	pad := 0.05 * (hi - lo)
	if pad == 0 {
		pad = 0.5
	}
	return lo - pad, hi + pad
}

// Save writes the plot to path. The format follows the extension (.png,
// .svg, .pdf, ...).
func Save(p *plot.Plot, path string, width, height vg.Length) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create directory: %w", err)
		}
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// Render draws and saves the diagram in one step.
func Render(res *dynamo.SweepResult, title, path string) error {
	p, err := Diagram(res, title)
	if err != nil {
		return err
	}
	return Save(p, path, 8*vg.Inch, 6*vg.Inch)
}
