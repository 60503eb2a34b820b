package dynamo

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"
)

func TestScalarField(t *testing.T) {
	f, err := NewScalarField("r*x - x**3", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := f.Eval(2, 1); got != -6 {
		t.Errorf("expected f(2, 1) = -6, got %v", got)
	}
	if got := f.Slope(2, 1); got != -11 {
		t.Errorf("expected f_x(2, 1) = -11, got %v", got)
	}
	if !f.IsPolynomial() {
		t.Fatal("expected polynomial view")
	}

	c, ok := f.Coefficients(0.5)
	if !ok {
		t.Fatal("expected coefficients")
	}
	want := []float64{0, 0.5, 0, -1}
	if len(c) != len(want) {
		t.Fatalf("expected %d coefficients, got %d", len(want), len(c))
	}
	for i := range want {
		if c[i] != want[i] {
			t.Errorf("coefficient %d: expected %v, got %v", i, want[i], c[i])
		}
	}
}

func TestScalarFieldNonPolynomial(t *testing.T) {
	f, err := NewScalarField("r - cosh(x)", "x", "r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.IsPolynomial() {
		t.Error("cosh field should not be polynomial")
	}
	if _, ok := f.Coefficients(1); ok {
		t.Error("expected no coefficients")
	}
	if got := f.Slope(1, 0); math.Abs(got+math.Sinh(1)) > 1e-12 {
		t.Errorf("expected -sinh(1), got %v", got)
	}
}

func TestCoefficientsNonFinite(t *testing.T) {
	f, err := NewScalarField("log(r)*x + 1", "x", "r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.Coefficients(-1); ok {
		t.Error("expected coefficients to be rejected at r=-1")
	}
	if _, ok := f.Coefficients(1); !ok {
		t.Error("expected coefficients at r=1")
	}
}

func TestExpressionError(t *testing.T) {
	_, err := NewScalarField("r*x +* 2", "x", "r")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrInvalidExpression) {
		t.Errorf("expected ErrInvalidExpression, got %v", err)
	}
	var ee *ExpressionError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *ExpressionError, got %T", err)
	}
	if !strings.Contains(err.Error(), "r*x +* 2") {
		t.Errorf("expected message to quote the expression, got %q", err.Error())
	}
}

func TestSweepErrorUnwrap(t *testing.T) {
	err := &SweepError{Step: 3, R: 0.5, Wrapped: ErrContextCanceled}
	if !errors.Is(err, ErrContextCanceled) {
		t.Error("expected errors.Is to find ErrContextCanceled")
	}
}

func TestBranchSplit(t *testing.T) {
	nan := math.NaN()
	b := Branch{
		R:    []float64{0, 1, 2, 3},
		X:    []float64{nan, 1, 2, 3},
		Stab: []Stability{StabilityNone, Stable, Unstable, Neutral},
	}

	first, last := b.Extent()
	if first != 1 || last != 3 {
		t.Errorf("expected extent [1, 3], got [%d, %d]", first, last)
	}

	s, u := b.Split()
	if s[1] != 1 || !math.IsNaN(s[2]) || !math.IsNaN(s[0]) {
		t.Errorf("unexpected stable mask %v", s)
	}
	if u[2] != 2 || !math.IsNaN(u[1]) || !math.IsNaN(u[3]) {
		t.Errorf("unexpected unstable mask %v", u)
	}
}

func TestParallelFor(t *testing.T) {
	for _, workers := range []int{0, 1, 4} {
		out := make([]int, 100)
		err := ParallelFor(context.Background(), len(out), workers, func(_ context.Context, i int) error {
			out[i] = i * i
			return nil
		})
		if err != nil {
			t.Fatalf("workers=%d: unexpected error: %v", workers, err)
		}
		for i, v := range out {
			if v != i*i {
				t.Fatalf("workers=%d: index %d: expected %d, got %d", workers, i, i*i, v)
			}
		}
	}
}

func TestParallelForError(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	err := ParallelFor(context.Background(), 50, 1, func(_ context.Context, i int) error {
		calls.Add(1)
		if i == 10 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if calls.Load() != 11 {
		t.Errorf("expected serial run to stop after 11 calls, got %d", calls.Load())
	}
}
