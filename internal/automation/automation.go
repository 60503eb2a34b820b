package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/bifsim/internal/config"
	"github.com/san-kum/bifsim/internal/dynamo"
	"github.com/san-kum/bifsim/internal/experiment"
)

// Scenario defines a scripted sequence of sweeps
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single sweep in a scenario. Model selects a registry
// entry and its preset; Expression and the ranges override them.
type ScenarioStep struct {
	Model      string   `yaml:"model"`
	Preset     string   `yaml:"preset"`
	Expression string   `yaml:"expression"`
	RMin       *float64 `yaml:"r_min"`
	RMax       *float64 `yaml:"r_max"`
	XMin       *float64 `yaml:"x_min"`
	XMax       *float64 `yaml:"x_max"`
	Steps      int      `yaml:"steps"`
	SaveAs     string   `yaml:"save_as"`
}

// StepResult pairs a step with its resolved config and sweep.
type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *dynamo.SweepResult
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Config resolves a step against the registry and presets.
func (s ScenarioStep) Config(registry *experiment.Registry) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Model != "" {
		m, err := registry.GetModel(s.Model)
		if err != nil {
			return nil, err
		}
		cfg.Model, cfg.Expression = m.Name, m.Expression

		name := s.Preset
		if name == "" {
			name = "default"
		}
		if p := config.GetPreset(s.Model, name); p != nil {
			cfg = p
		} else if s.Preset != "" {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", s.Preset, config.ListPresets(s.Model))
		}
	} else {
		cfg.Model, cfg.Expression = "", ""
	}

	if s.Expression != "" {
		cfg.Expression = s.Expression
	}
	if cfg.Expression == "" {
		return nil, fmt.Errorf("step needs a model or an expression")
	}
	for _, o := range []struct {
		dst *float64
		src *float64
	}{{&cfg.RMin, s.RMin}, {&cfg.RMax, s.RMax}, {&cfg.XMin, s.XMin}, {&cfg.XMax, s.XMax}} {
		if o.src != nil {
			*o.dst = *o.src
		}
	}
	if s.Steps > 0 {
		cfg.Steps = s.Steps
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in a scenario
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger logr.Logger) ([]StepResult, error) {
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	log := logger.WithName("scenario").WithValues("scenario", scenario.Name)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config(registry)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		log.Info("running step", "step", i+1, "of", len(scenario.Steps), "expression", cfg.Expression)

		exp := experiment.New(cfg, logger)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Config: cfg, Result: result})
	}

	return results, nil
}

// Unfolding perturbs a field by a constant term and records how its
// bifurcations change.
type Unfolding struct {
	Config   *config.Config
	Epsilons []float64
}

// UnfoldingResult holds the events of one perturbation.
type UnfoldingResult struct {
	Epsilon    float64
	Expression string
	Events     []dynamo.BifurcationEvent
}

// Types returns the event types in r order.
func (u UnfoldingResult) Types() []dynamo.BifurcationType {
	out := make([]dynamo.BifurcationType, len(u.Events))
	for i, ev := range u.Events {
		out[i] = ev.Type
	}
	return out
}

// RunUnfolding sweeps f + eps for every eps.
func RunUnfolding(ctx context.Context, u *Unfolding, logger logr.Logger) ([]UnfoldingResult, error) {
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	results := make([]UnfoldingResult, 0, len(u.Epsilons))

	for i, eps := range u.Epsilons {
		cfg := u.Config.Clone()
		if eps != 0 {
			cfg.Expression = fmt.Sprintf("(%s) + (%g)", u.Config.Expression, eps)
		}

		exp := experiment.New(cfg, logger)
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, UnfoldingResult{
			Epsilon:    eps,
			Expression: cfg.Expression,
			Events:     result.Bifurcations,
		})
		logger.V(1).Info("unfolding", "step", i+1, "of", len(u.Epsilons), "eps", eps, "events", len(result.Bifurcations))
	}

	return results, nil
}
