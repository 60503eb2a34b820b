package storage

import (
	"encoding/json"
	"io"
	"math"

	"github.com/san-kum/bifsim/internal/analysis"
	"github.com/san-kum/bifsim/internal/dynamo"
)

type ExportData struct {
	Model        string                    `json:"model,omitempty"`
	Expression   string                    `json:"expression"`
	Derivative   string                    `json:"derivative"`
	Steps        int                       `json:"steps"`
	CriticalR    float64                   `json:"critical_r"`
	Samples      []ExportSample            `json:"samples"`
	Branches     []ExportBranch            `json:"branches"`
	Bifurcations []dynamo.BifurcationEvent `json:"bifurcations"`
}

type ExportSample struct {
	R          float64       `json:"r"`
	Equilibria []ExportPoint `json:"equilibria"`
}

// ExportPoint has a nil slope where the derivative was undefined.
type ExportPoint struct {
	X         float64          `json:"x"`
	Slope     *float64         `json:"slope"`
	Stability dynamo.Stability `json:"stability"`
}

type ExportBranch struct {
	ID     int           `json:"id"`
	R      []float64     `json:"r"`
	Points []ExportPoint `json:"points"`
}

// NewExportData converts a sweep into a JSON-safe document.
func NewExportData(model string, res *dynamo.SweepResult) *ExportData {
	data := &ExportData{
		Model:        model,
		Expression:   res.Expression,
		Derivative:   res.Derivative,
		Steps:        len(res.Rs),
		CriticalR:    analysis.CriticalR(res),
		Samples:      make([]ExportSample, len(res.Rs)),
		Branches:     make([]ExportBranch, len(res.Branches)),
		Bifurcations: res.Bifurcations,
	}

	for i, r := range res.Rs {
		s := ExportSample{R: r, Equilibria: make([]ExportPoint, len(res.Roots[i]))}
		for j, x := range res.Roots[i] {
			s.Equilibria[j] = ExportPoint{X: x, Slope: finitePtr(res.Slopes[i][j]), Stability: res.Stabilities[i][j]}
		}
		data.Samples[i] = s
	}

	for k, b := range res.Branches {
		eb := ExportBranch{ID: k, R: []float64{}, Points: []ExportPoint{}}
		for i := range b.X {
			if !b.Present(i) {
				continue
			}
			eb.R = append(eb.R, b.R[i])
			eb.Points = append(eb.Points, ExportPoint{X: b.X[i], Stability: b.Stab[i]})
		}
		data.Branches[k] = eb
	}
	return data
}

// ExportJSON writes the sweep as indented JSON.
func ExportJSON(w io.Writer, model string, res *dynamo.SweepResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(model, res))
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
