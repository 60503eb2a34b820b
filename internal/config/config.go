package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bifsim/internal/dynamo"
)

const (
	DefaultModel      = "pitchfork"
	DefaultExpression = "r*x - x**3"
	DefaultRMin       = -2.0
	DefaultRMax       = 2.0
	DefaultXMin       = -3.0
	DefaultXMax       = 3.0
	DefaultSeeds      = 31
	DefaultShift      = 1e-3
)

type Config struct {
	Model      string           `yaml:"model"`
	Expression string           `yaml:"expression"`
	Variable   string           `yaml:"variable"`
	Parameter  string           `yaml:"parameter"`
	RMin       float64          `yaml:"r_min"`
	RMax       float64          `yaml:"r_max"`
	XMin       float64          `yaml:"x_min"`
	XMax       float64          `yaml:"x_max"`
	Steps      int              `yaml:"steps"`
	Workers    int              `yaml:"workers"`
	Roots      RootsConfig      `yaml:"roots"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Log        LogConfig        `yaml:"log"`
}

type RootsConfig struct {
	Seeds        int     `yaml:"seeds"`
	MaxSteps     int     `yaml:"max_steps"`
	Tolerance    float64 `yaml:"tolerance"`
	ZeroTol      float64 `yaml:"zero_tol"`
	PolyDedup    float64 `yaml:"poly_dedup"`
	NumericDedup float64 `yaml:"numeric_dedup"`
}

type ClassifierConfig struct {
	TranscriticalShift float64 `yaml:"transcritical_shift"`
	Coalesce           bool    `yaml:"coalesce"`
}

type LogConfig struct {
	Level       int  `yaml:"level"`
	Development bool `yaml:"development"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		Expression: DefaultExpression,
		Variable:   dynamo.DefaultVariable,
		Parameter:  dynamo.DefaultParameter,
		RMin:       DefaultRMin,
		RMax:       DefaultRMax,
		XMin:       DefaultXMin,
		XMax:       DefaultXMax,
		Workers:    1,
		Roots: RootsConfig{
			Seeds:        DefaultSeeds,
			MaxSteps:     100,
			Tolerance:    1e-14,
			ZeroTol:      1e-10,
			PolyDedup:    1e-6,
			NumericDedup: 1e-4,
		},
		Classifier: ClassifierConfig{
			TranscriticalShift: DefaultShift,
			Coalesce:           true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks ranges and tolerances. Expression syntax is checked when the
// field is built.
func (c *Config) Validate() error {
	if c.Expression == "" {
		return fmt.Errorf("%w: empty expression", dynamo.ErrInvalidExpression)
	}
	if !finite(c.RMin) || !finite(c.RMax) || c.RMin > c.RMax {
		return fmt.Errorf("%w: r in [%g, %g]", dynamo.ErrParameterBounds, c.RMin, c.RMax)
	}
	if !finite(c.XMin) || !finite(c.XMax) || c.XMin >= c.XMax {
		return fmt.Errorf("%w: x in [%g, %g]", dynamo.ErrSearchWindow, c.XMin, c.XMax)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: %d", dynamo.ErrInvalidSteps, c.Steps)
	}
	if c.Roots.Seeds < 2 {
		return fmt.Errorf("roots.seeds must be at least 2, got %d", c.Roots.Seeds)
	}
	if c.Classifier.TranscriticalShift <= 0 {
		return fmt.Errorf("classifier.transcritical_shift must be positive, got %g", c.Classifier.TranscriticalShift)
	}
	return nil
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
