package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/bifsim/internal/dynamo"
)

func mustField(t *testing.T, src string) *dynamo.ScalarField {
	t.Helper()
	f, err := dynamo.NewScalarField(src, "x", "r")
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return f
}

func assertRoots(t *testing.T, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d roots %v, got %d %v", len(want), want, len(got), got)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > tol {
			t.Errorf("root %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestFindEquilibriaPolynomial(t *testing.T) {
	tests := []struct {
		name string
		src  string
		r    float64
		xMin float64
		xMax float64
		want []float64
	}{
		{"two roots", "x^2 + r", -1, -3, 3, []float64{-1, 1}},
		{"no real roots", "x^2 + r", 1, -3, 3, []float64{}},
		{"triple root", "r*x - x^3", 0, -3, 3, []float64{0}},
		{"pitchfork", "r*x - x^3", 4, -3, 3, []float64{-2, 0, 2}},
		{"window", "r*x - x^3", 4, -1, 3, []float64{0, 2}},
		{"cubic", "(x - 1)*(x - 2)*(x - 3)", 0, -5, 5, []float64{1, 2, 3}},
		{"linear", "r - 2*x", 3, -5, 5, []float64{1.5}},
		{"constant", "r", 1, -5, 5, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindEquilibria(mustField(t, tt.src), tt.r, tt.xMin, tt.xMax)
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			assertRoots(t, got, tt.want, 1e-9)
		})
	}
}

func TestFindEquilibriaNumeric(t *testing.T) {
	f := mustField(t, "r - cosh(x)")
	a := math.Acosh(2)
	assertRoots(t, FindEquilibria(f, 2, -3, 3), []float64{-a, a}, 1e-8)
	assertRoots(t, FindEquilibria(f, 0.5, -3, 3), []float64{}, 0)

	g := mustField(t, "x*(r - exp(x))")
	assertRoots(t, FindEquilibria(g, 2, -3, 3), []float64{0, math.Ln2}, 1e-8)
}

func TestFindEquilibriaFieldFunc(t *testing.T) {
	f := dynamo.FieldFunc{
		F:  func(x, r float64) float64 { return x - r },
		Fx: func(x, r float64) float64 { return 1 },
	}
	assertRoots(t, FindEquilibria(f, 0.25, -1, 1), []float64{0.25}, 1e-12)
	assertRoots(t, FindEquilibria(f, 5, -1, 1), []float64{}, 0)
}

func TestFindEquilibriaPanickingField(t *testing.T) {
	f := dynamo.FieldFunc{
		F:  func(x, r float64) float64 { panic("boom") },
		Fx: func(x, r float64) float64 { panic("boom") },
	}
	got := FindEquilibria(f, 0, -1, 1)
	if len(got) != 0 {
		t.Errorf("expected no roots, got %v", got)
	}
}

func TestFindEquilibriaSortedUnique(t *testing.T) {
	f := mustField(t, "sin(r*x)")
	got := FindEquilibria(f, 3, -3, 3)
	for i := 1; i < len(got); i++ {
		if got[i]-got[i-1] <= 1e-4 {
			t.Errorf("roots %v and %v not ascending and distinct", got[i-1], got[i])
		}
	}
	for _, x := range got {
		if math.Abs(math.Sin(3*x)) > 1e-7 {
			t.Errorf("f(%v) = %v is not a root", x, math.Sin(3*x))
		}
	}
}

func TestPolyRoots(t *testing.T) {
	roots := polyRoots([]float64{0, 0, -6, 11, -6, 1})
	if len(roots) != 5 {
		t.Fatalf("expected 5 roots, got %d", len(roots))
	}
	zeros := 0
	for _, z := range roots {
		if z == 0 {
			zeros++
		}
	}
	if zeros != 2 {
		t.Errorf("expected 2 exact zero roots, got %d", zeros)
	}
}

func TestUniqueSorted(t *testing.T) {
	got := uniqueSorted([]float64{0.3, 0.1000001, 0.1, 0.2}, 1e-4)
	want := []float64{0.1, 0.2, 0.3}
	assertRoots(t, got, want, 0)

	if out := uniqueSorted(nil, 1e-4); out == nil || len(out) != 0 {
		t.Errorf("expected empty slice, got %v", out)
	}
}
