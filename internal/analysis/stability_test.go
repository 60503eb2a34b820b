package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/bifsim/internal/dynamo"
)

func TestClassify(t *testing.T) {
	f := mustField(t, "r*x - x^2")

	tests := []struct {
		x, r      float64
		want      dynamo.Stability
		wantSlope float64
	}{
		{0, 1, dynamo.Unstable, 1},
		{1, 1, dynamo.Stable, -1},
		{0, -1, dynamo.Stable, -1},
		{0, 0, dynamo.Neutral, 0},
	}

	for _, tt := range tests {
		got, slope := Classify(f, tt.x, tt.r)
		if got != tt.want {
			t.Errorf("x=%v r=%v: expected %s, got %s", tt.x, tt.r, tt.want, got)
		}
		if slope != tt.wantSlope {
			t.Errorf("x=%v r=%v: expected slope %v, got %v", tt.x, tt.r, tt.wantSlope, slope)
		}
	}
}

func TestClassifyUndefined(t *testing.T) {
	tests := []struct {
		name string
		fx   func(x, r float64) float64
	}{
		{"nan", func(x, r float64) float64 { return math.NaN() }},
		{"inf", func(x, r float64) float64 { return math.Inf(1) }},
		{"panic", func(x, r float64) float64 { panic("no derivative") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := dynamo.FieldFunc{F: func(x, r float64) float64 { return 0 }, Fx: tt.fx}
			got, slope := Classify(f, 0, 0)
			if got != dynamo.Undefined {
				t.Errorf("expected undefined, got %s", got)
			}
			if !math.IsNaN(slope) {
				t.Errorf("expected NaN slope, got %v", slope)
			}
		})
	}
}
