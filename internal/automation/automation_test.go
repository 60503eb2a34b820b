package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/zapr"
	"go.uber.org/zap/zaptest"

	"github.com/san-kum/bifsim/internal/config"
	"github.com/san-kum/bifsim/internal/dynamo"
	"github.com/san-kum/bifsim/internal/experiment"
)

const scenarioYAML = `name: normal-forms
description: saddle-node then transcritical
steps:
  - model: saddle_node
  - expression: "r*x - x^2"
    r_min: -1
    r_max: 1
    x_min: -2
    x_max: 2
    steps: 201
    save_as: transcritical
`

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "normal-forms" || len(s.Steps) != 2 {
		t.Fatalf("got %+v", s)
	}
	if s.Steps[1].RMin == nil || *s.Steps[1].RMin != -1 {
		t.Error("r_min not parsed")
	}
	if s.Steps[0].RMin != nil {
		t.Error("unset r_min must stay nil")
	}

	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for a scenario without steps")
	}
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestRunScenario(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), s, experiment.NewRegistry(), zapr.NewLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}

	want := []dynamo.BifurcationType{dynamo.SaddleNode, dynamo.Transcritical}
	for i, r := range results {
		evs := r.Result.Bifurcations
		if len(evs) != 1 || evs[0].Type != want[i] {
			t.Errorf("step %d: got %+v, want one %s", i+1, evs, want[i])
		}
	}
	if results[1].Config.Model != "" || results[1].Step.SaveAs != "transcritical" {
		t.Errorf("custom step resolved to %+v", results[1].Config)
	}
}

func TestStepConfig(t *testing.T) {
	reg := experiment.NewRegistry()
	lo := -0.5

	cfg, err := ScenarioStep{Model: "pitchfork", Preset: "zoom", RMin: &lo}.Config(reg)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RMin != -0.5 || cfg.RMax != 0.1 || cfg.Expression != "r*x - x^3" {
		t.Errorf("got %+v", cfg)
	}

	for name, step := range map[string]ScenarioStep{
		"unknown model":  {Model: "lorenz"},
		"unknown preset": {Model: "pitchfork", Preset: "wide"},
		"no expression":  {},
		"bad range":      {Expression: "r + x^2", RMin: ptr(2.0), RMax: ptr(1.0)},
	} {
		if _, err := step.Config(reg); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestRunScenarioStopsOnError(t *testing.T) {
	s := &Scenario{Name: "broken", Steps: []ScenarioStep{{Model: "saddle_node"}, {Expression: "r*x +"}}}
	results, err := RunScenario(context.Background(), s, experiment.NewRegistry(), zapr.NewLogger(zaptest.NewLogger(t)))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(results) != 1 {
		t.Errorf("expected the first step to complete, got %d results", len(results))
	}
}

func TestRunUnfolding(t *testing.T) {
	cfg := config.GetPreset("imperfect", "default")
	cfg.Expression = "r*x - x^3"

	u := &Unfolding{Config: cfg, Epsilons: []float64{0, 0.05, -0.05}}
	results, err := RunUnfolding(context.Background(), u, zapr.NewLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Expression != "r*x - x^3" {
		t.Errorf("eps = 0 must keep the expression, got %q", results[0].Expression)
	}
	if results[1].Expression != "(r*x - x^3) + (0.05)" {
		t.Errorf("got %q", results[1].Expression)
	}
	for _, r := range results {
		types := r.Types()
		if len(types) != 1 || types[0] != dynamo.Pitchfork {
			t.Errorf("eps = %g: got %v", r.Epsilon, types)
		}
	}
	if cfg.Expression != "r*x - x^3" {
		t.Error("RunUnfolding must not modify the base config")
	}
}

func ptr(v float64) *float64 { return &v }
