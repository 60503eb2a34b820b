package analysis

import (
	"math"
	"sort"
	"testing"

	"github.com/san-kum/bifsim/internal/dynamo"
)

func labels(roots [][]float64, s dynamo.Stability) [][]dynamo.Stability {
	out := make([][]dynamo.Stability, len(roots))
	for i, rr := range roots {
		out[i] = make([]dynamo.Stability, len(rr))
		for j := range rr {
			out[i][j] = s
		}
	}
	return out
}

func TestTrackBranchesParallel(t *testing.T) {
	rs := []float64{0, 1, 2}
	roots := [][]float64{{-1, 1}, {-1.1, 1.1}, {-1.2, 1.2}}
	bs := TrackBranches(rs, roots, labels(roots, dynamo.Stable))

	if len(bs) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(bs))
	}
	want := [][]float64{{-1, -1.1, -1.2}, {1, 1.1, 1.2}}
	for k := range want {
		for i := range want[k] {
			if bs[k].X[i] != want[k][i] {
				t.Errorf("branch %d sample %d: expected %v, got %v", k, i, want[k][i], bs[k].X[i])
			}
		}
	}
}

func TestTrackBranchesAppear(t *testing.T) {
	rs := []float64{0, 1, 2}
	roots := [][]float64{{}, {0}, {-0.1, 0.1}}
	bs := TrackBranches(rs, roots, labels(roots, dynamo.Unstable))

	if len(bs) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(bs))
	}
	if !math.IsNaN(bs[0].X[0]) || bs[0].X[1] != 0 || bs[0].X[2] != -0.1 {
		t.Errorf("unexpected first branch %v", bs[0].X)
	}
	if bs[0].Stab[0] != dynamo.StabilityNone {
		t.Errorf("expected no label on a gap, got %q", bs[0].Stab[0])
	}
	if bs[1].X[2] != 0.1 || bs[1].Present(1) {
		t.Errorf("unexpected second branch %v", bs[1].X)
	}
}

func TestTrackBranchesGapNotResumed(t *testing.T) {
	rs := []float64{0, 1, 2}
	roots := [][]float64{{1}, {}, {1}}
	bs := TrackBranches(rs, roots, labels(roots, dynamo.Stable))

	if len(bs) != 2 {
		t.Fatalf("expected a new branch after the gap, got %d branches", len(bs))
	}
	if bs[0].Present(2) {
		t.Error("branch absent at the previous sample must not be matched")
	}
}

func TestTrackBranchesEmpty(t *testing.T) {
	bs := TrackBranches([]float64{0, 1}, [][]float64{{}, {}}, nil)
	if bs == nil || len(bs) != 0 {
		t.Errorf("expected empty branch list, got %v", bs)
	}
}

func TestTrackBranchesConservesRoots(t *testing.T) {
	f := mustField(t, "r*x - x^3")
	rs := Grid(-1, 1, 41)
	roots := make([][]float64, len(rs))
	for i, r := range rs {
		roots[i] = FindEquilibria(f, r, -2, 2)
	}
	bs := TrackBranches(rs, roots, labels(roots, dynamo.Stable))

	for i := range rs {
		var got []float64
		for _, b := range bs {
			if b.Present(i) {
				got = append(got, b.X[i])
			}
		}
		sort.Float64s(got)
		assertRoots(t, got, roots[i], 0)
	}
}

func TestTrackBranchesOwnR(t *testing.T) {
	rs := []float64{0, 1, 2}
	roots := [][]float64{{-1, 1}, {-1, 1}, {-1, 1}}
	bs := TrackBranches(rs, roots, labels(roots, dynamo.Stable))
	if len(bs) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(bs))
	}

	bs[0].R[0] = 42
	if bs[1].R[0] != 0 || rs[0] != 0 {
		t.Errorf("branch R must not alias: other branch %v, input %v", bs[1].R, rs)
	}
}
