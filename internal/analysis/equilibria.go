package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// RootConfig holds the tolerances of the equilibrium finder.
type RootConfig struct {
	// Seeds is the number of starting points of the numeric path.
	Seeds int
	// Tolerance is the Newton step tolerance. A converged point is accepted
	// when f^2 <= Tolerance.
	Tolerance float64
	MaxSteps  int

	// ImagTol drops complex polynomial roots.
	ImagTol float64
	// ZeroTol snaps roots this close to zero to exactly zero.
	ZeroTol float64
	// CoeffTol treats a coefficient vector as identically zero.
	CoeffTol float64

	PolyDedup    float64
	NumericDedup float64

	// Margin widens the search window when accepting roots.
	Margin float64
}

// DefaultRootConfig returns the tolerances used by FindEquilibria.
func DefaultRootConfig() RootConfig {
	return RootConfig{
		Seeds:        31,
		Tolerance:    1e-14,
		MaxSteps:     100,
		ImagTol:      1e-9,
		ZeroTol:      1e-10,
		CoeffTol:     1e-8,
		PolyDedup:    1e-6,
		NumericDedup: 1e-4,
		Margin:       1e-6,
	}
}

// FindEquilibria returns the real roots of f(., r) in [xMin, xMax] using the
// default tolerances.
func FindEquilibria(f dynamo.Field, r, xMin, xMax float64) []float64 {
	return DefaultRootConfig().Find(f, r, xMin, xMax)
}

// Find returns the real roots of f(., r) in [xMin, xMax], ascending and
// without near-duplicates. Polynomial fields are solved exactly through the
// companion matrix; other fields through multi-seed Newton iteration.
// Failures are not errors: the result may be empty.
func (c RootConfig) Find(f dynamo.Field, r, xMin, xMax float64) []float64 {
	if roots, ok := c.polynomialRoots(f, r, xMin, xMax); ok {
		return roots
	}
	return c.numericRoots(f, r, xMin, xMax)
}

func (c RootConfig) polynomialRoots(f dynamo.Field, r, xMin, xMax float64) (out []float64, ok bool) {
	p, isPoly := f.(dynamo.Polynomial)
	if !isPoly {
		return nil, false
	}
	defer func() {
		if recover() != nil {
			out, ok = nil, false
		}
	}()

	coeffs, ok := p.Coefficients(r)
	if !ok || len(coeffs) == 0 {
		return nil, false
	}
	zero := true
	for _, v := range coeffs {
		if !finite(v) {
			return nil, false
		}
		if math.Abs(v) > c.CoeffTol {
			zero = false
		}
	}
	if zero {
		return nil, false
	}

	var roots []float64
	for _, z := range polyRoots(coeffs) {
		if math.Abs(imag(z)) >= c.ImagTol {
			continue
		}
		roots = append(roots, c.snap(real(z)))
	}
	roots = uniqueSorted(roots, c.PolyDedup)
	return c.window(roots, xMin, xMax), true
}

// polyRoots returns every complex root of the polynomial with ascending
// coefficients. Zero low-order coefficients are factored out as roots at the
// origin so that the companion matrix stays well conditioned.
func polyRoots(coeffs []float64) []complex128 {
	hi := len(coeffs) - 1
	for hi >= 0 && coeffs[hi] == 0 {
		hi--
	}
	if hi <= 0 {
		return nil
	}
	lo := 0
	for lo < hi && coeffs[lo] == 0 {
		lo++
	}

	roots := make([]complex128, lo, hi)
	c := coeffs[lo : hi+1]
	n := len(c) - 1
	switch n {
	case 0:
		return roots
	case 1:
		return append(roots, complex(-c[0]/c[1], 0))
	}

	comp := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		comp.Set(0, j, -c[n-1-j]/c[n])
	}
	for i := 1; i < n; i++ {
		comp.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if !eig.Factorize(comp, mat.EigenNone) {
		return roots
	}
	return append(roots, eig.Values(nil)...)
}

func (c RootConfig) numericRoots(f dynamo.Field, r, xMin, xMax float64) []float64 {
	n := max(c.Seeds, 2)
	seeds := floats.Span(make([]float64, n), xMin, xMax)
	offset := (xMax - xMin) / float64(3*n)

	var roots []float64
	for _, s := range seeds {
		x, ok := c.solve(f, r, s, s+offset)
		if !ok || x < xMin-c.Margin || x > xMax+c.Margin {
			continue
		}
		roots = append(roots, x)
	}

	roots = uniqueSorted(roots, c.NumericDedup)
	for i := range roots {
		roots[i] = c.snap(roots[i])
	}
	return roots
}

// solve runs Newton from x0, then a secant from (x0, x1), then bisection if
// the pair brackets a sign change. Panics in f count as failure.
func (c RootConfig) solve(f dynamo.Field, r, x0, x1 float64) (root float64, ok bool) {
	defer func() {
		if recover() != nil {
			root, ok = 0, false
		}
	}()

	g := func(x float64) float64 { return f.Eval(x, r) }
	dg := func(x float64) float64 { return f.Slope(x, r) }

	if x, ok := c.newton(g, dg, x0); ok {
		return x, true
	}
	if x, ok := c.secant(g, x0, x1); ok {
		return x, true
	}
	return c.bisect(g, x0, x1)
}

func (c RootConfig) accept(g func(float64) float64, x float64) (float64, bool) {
	fx := g(x)
	if !finite(x) || !finite(fx) || fx*fx > c.Tolerance {
		return 0, false
	}
	return x, true
}

func (c RootConfig) converged(step, x float64) bool {
	return math.Abs(step) <= c.Tolerance*math.Max(1, math.Abs(x))
}

func (c RootConfig) newton(g, dg func(float64) float64, x float64) (float64, bool) {
	for i := 0; i < c.MaxSteps; i++ {
		fx := g(x)
		if fx == 0 {
			return x, true
		}
		d := dg(x)
		if d == 0 || !finite(d) || !finite(fx) {
			return 0, false
		}
		step := fx / d
		x -= step
		if !finite(x) {
			return 0, false
		}
		if c.converged(step, x) {
			return c.accept(g, x)
		}
	}
	return 0, false
}

func (c RootConfig) secant(g func(float64) float64, x0, x1 float64) (float64, bool) {
	f0, f1 := g(x0), g(x1)
	for i := 0; i < c.MaxSteps; i++ {
		if f1 == 0 {
			return x1, true
		}
		if f1 == f0 || !finite(f0) || !finite(f1) {
			return 0, false
		}
		step := f1 * (x1 - x0) / (f1 - f0)
		x0, f0 = x1, f1
		x1 -= step
		if !finite(x1) {
			return 0, false
		}
		f1 = g(x1)
		if c.converged(step, x1) {
			return c.accept(g, x1)
		}
	}
	return 0, false
}

func (c RootConfig) bisect(g func(float64) float64, a, b float64) (float64, bool) {
	fa, fb := g(a), g(b)
	if !finite(fa) || !finite(fb) || fa*fb > 0 {
		return 0, false
	}
	if fa == 0 {
		return a, true
	}
	if fb == 0 {
		return b, true
	}
	for i := 0; i < 4*c.MaxSteps; i++ {
		m := 0.5 * (a + b)
		fm := g(m)
		if fm == 0 || c.converged(b-a, m) {
			return c.accept(g, m)
		}
		if (fm < 0) == (fa < 0) {
			a, fa = m, fm
		} else {
			b = m
		}
	}
	return 0, false
}

func (c RootConfig) snap(x float64) float64 {
	if math.Abs(x) < c.ZeroTol {
		return 0
	}
	return x
}

func (c RootConfig) window(xs []float64, xMin, xMax float64) []float64 {
	out := xs[:0]
	for _, x := range xs {
		if x >= xMin-c.Margin && x <= xMax+c.Margin {
			out = append(out, x)
		}
	}
	return out
}

// uniqueSorted sorts xs and keeps the first value of every cluster whose
// members lie within tol of the previously kept value.
func uniqueSorted(xs []float64, tol float64) []float64 {
	out := make([]float64, 0, len(xs))
	if len(xs) == 0 {
		return out
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	out = append(out, sorted[0])
	for _, x := range sorted[1:] {
		if math.Abs(x-out[len(out)-1]) > tol {
			out = append(out, x)
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
