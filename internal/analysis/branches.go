package analysis

import (
	"math"
	"slices"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// TrackBranches stitches per-sample equilibria into branches. At each step
// the globally closest (branch, root) pair is matched first, then the next
// closest among the remaining ones, until either side is exhausted. Branches
// with no point at the previous sample are not candidates. Unmatched branches
// get a gap; unmatched roots start a new branch.
//
// Matching is greedy, not an optimal assignment: crossing branches can be
// swapped when two roots come closer than one grid step.
func TrackBranches(rs []float64, roots [][]float64, stabs [][]dynamo.Stability) []dynamo.Branch {
	n := min(len(rs), len(roots))
	var branches []dynamo.Branch
	if n == 0 {
		return []dynamo.Branch{}
	}

	newBranch := func() dynamo.Branch {
		b := dynamo.Branch{
			R:    slices.Clone(rs[:n]),
			X:    make([]float64, n),
			Stab: make([]dynamo.Stability, n),
		}
		for i := range b.X {
			b.X[i] = math.NaN()
		}
		return b
	}

	label := func(i, j int) dynamo.Stability {
		if i < len(stabs) && j < len(stabs[i]) {
			return stabs[i][j]
		}
		return dynamo.Undefined
	}

	for j, x := range roots[0] {
		b := newBranch()
		b.X[0], b.Stab[0] = x, label(0, j)
		branches = append(branches, b)
	}

	for i := 1; i < n; i++ {
		cur := roots[i]
		var live []int
		for k := range branches {
			if branches[k].Present(i - 1) {
				live = append(live, k)
			}
		}

		usedRoot := make([]bool, len(cur))
		usedBranch := make(map[int]bool, len(live))
		for m := min(len(live), len(cur)); m > 0; m-- {
			bestK, bestJ, best := -1, -1, math.Inf(1)
			for _, k := range live {
				if usedBranch[k] {
					continue
				}
				prev := branches[k].X[i-1]
				for j, x := range cur {
					if usedRoot[j] {
						continue
					}
					if d := math.Abs(prev - x); d < best {
						bestK, bestJ, best = k, j, d
					}
				}
			}
			if bestK < 0 {
				break
			}
			usedBranch[bestK], usedRoot[bestJ] = true, true
			branches[bestK].X[i] = cur[bestJ]
			branches[bestK].Stab[i] = label(i, bestJ)
		}

		for j, x := range cur {
			if usedRoot[j] {
				continue
			}
			b := newBranch()
			b.X[i], b.Stab[i] = x, label(i, j)
			branches = append(branches, b)
		}
	}

	if branches == nil {
		return []dynamo.Branch{}
	}
	return branches
}
