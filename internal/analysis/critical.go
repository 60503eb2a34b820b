package analysis

import (
	"slices"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// CriticalR estimates the most interesting parameter value of a sweep: the
// first change in equilibrium count, else the first change in the stability
// pattern between samples with equal counts, else the middle of the range.
func CriticalR(res *dynamo.SweepResult) float64 {
	rs := res.Rs
	if len(rs) == 0 {
		return 0
	}
	for i := 0; i+1 < len(rs); i++ {
		if len(res.Roots[i]) != len(res.Roots[i+1]) {
			return 0.5 * (rs[i] + rs[i+1])
		}
	}
	for i := 0; i+1 < len(rs); i++ {
		if !slices.Equal(res.Stabilities[i], res.Stabilities[i+1]) {
			return 0.5 * (rs[i] + rs[i+1])
		}
	}
	return 0.5 * (rs[0] + rs[len(rs)-1])
}

// SummaryRs returns the start, middle and end of the swept range.
func SummaryRs(res *dynamo.SweepResult) []float64 {
	if len(res.Rs) == 0 {
		return nil
	}
	lo, hi := res.Rs[0], res.Rs[len(res.Rs)-1]
	return []float64{lo, 0.5 * (lo + hi), hi}
}
