package analysis

import (
	"math"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// Classify labels the equilibrium x of f at r by the sign of f_x. A
// non-finite or panicking derivative yields Undefined with a NaN slope.
func Classify(f dynamo.Field, x, r float64) (s dynamo.Stability, slope float64) {
	defer func() {
		if recover() != nil {
			s, slope = dynamo.Undefined, math.NaN()
		}
	}()

	slope = f.Slope(x, r)
	switch {
	case !finite(slope):
		return dynamo.Undefined, math.NaN()
	case slope < 0:
		return dynamo.Stable, slope
	case slope > 0:
		return dynamo.Unstable, slope
	}
	return dynamo.Neutral, slope
}
