package viz

import (
	"math"
	"strings"
)

// Braille patterns: 2x4 dots per cell
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBase = 0x2800

var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot grid addressed in data coordinates.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	xMin, xMax float64
	yMin, yMax float64
}

// NewCanvas returns a w x h cell canvas mapping [xMin, xMax] x [yMin, yMax]
// onto its 2w x 4h dots.
func NewCanvas(w, h int, xMin, xMax, yMin, yMax float64) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		xMin:   xMin,
		xMax:   xMax,
		yMin:   yMin,
		yMax:   yMax,
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
		}
	}
	return c
}

// dot maps a data point to dot coordinates. y grows downwards.
func (c *Canvas) dot(x, y float64) (int, int, bool) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, 0, false
	}
	dw, dh := float64(2*c.Width-1), float64(4*c.Height-1)
	px, py := 0.0, 0.0
	if c.xMax > c.xMin {
		px = (x - c.xMin) / (c.xMax - c.xMin) * dw
	}
	if c.yMax > c.yMin {
		py = (c.yMax - y) / (c.yMax - c.yMin) * dh
	}
	return int(math.Round(px)), int(math.Round(py)), true
}

// Column returns the cell column of data x.
func (c *Canvas) Column(x float64) int {
	px, _, ok := c.dot(x, c.yMin)
	if !ok {
		return -1
	}
	return px / 2
}

func (c *Canvas) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

// Point sets the dot nearest to (x, y).
func (c *Canvas) Point(x, y float64) {
	if px, py, ok := c.dot(x, y); ok {
		c.set(px, py)
	}
}

// Line draws a segment between two data points using Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 float64) {
	ax, ay, ok0 := c.dot(x0, y0)
	bx, by, ok1 := c.dot(x1, y1)
	if !ok0 || !ok1 {
		return
	}

	dx, dy := absInt(bx-ax), absInt(by-ay)
	sx, sy := -1, -1
	if ax < bx {
		sx = 1
	}
	if ay < by {
		sy = 1
	}
	err := dx - dy

	for {
		c.set(ax, ay)
		if ax == bx && ay == by {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			ax += sx
		}
		if e2 < dx {
			err += dx
			ay += sy
		}
	}
}

// Empty reports whether the cell at row, col has no dots.
func (c *Canvas) Empty(row, col int) bool {
	return c.Grid[row][col] == brailleBase
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
