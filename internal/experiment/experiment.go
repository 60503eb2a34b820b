package experiment

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/san-kum/bifsim/internal/analysis"
	"github.com/san-kum/bifsim/internal/config"
	"github.com/san-kum/bifsim/internal/dynamo"
)

// Experiment is one configured sweep.
type Experiment struct {
	cfg     *config.Config
	field   *dynamo.ScalarField
	sweeper *analysis.Sweeper
	log     logr.Logger
}

func New(cfg *config.Config, logger logr.Logger) *Experiment {
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	return &Experiment{cfg: cfg, log: logger.WithName("experiment")}
}

// Setup validates the config and parses the field.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	f, err := dynamo.NewScalarField(e.cfg.Expression, e.cfg.Variable, e.cfg.Parameter)
	if err != nil {
		return err
	}
	e.field = f
	e.sweeper = analysis.NewSweeper(Options(e.cfg, e.log))
	e.log.V(1).Info("field ready", "f", f.Expression(), "f_x", f.Derivative(), "polynomial", f.IsPolynomial())
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.SweepResult, error) {
	if e.field == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.sweeper.RunField(ctx, e.field, Spec(e.cfg))
}

// Snapshot returns the classified equilibria at a single r.
func (e *Experiment) Snapshot(r float64) ([]dynamo.Equilibrium, error) {
	if e.field == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.sweeper.Snapshot(e.field, r, e.cfg.XMin, e.cfg.XMax), nil
}

func (e *Experiment) Field() *dynamo.ScalarField { return e.field }
func (e *Experiment) Config() *config.Config     { return e.cfg }

// Spec converts a config into a sweep spec.
func Spec(cfg *config.Config) analysis.SweepSpec {
	return analysis.SweepSpec{
		Expression: cfg.Expression,
		Variable:   cfg.Variable,
		Parameter:  cfg.Parameter,
		RMin:       cfg.RMin,
		RMax:       cfg.RMax,
		XMin:       cfg.XMin,
		XMax:       cfg.XMax,
		Steps:      cfg.Steps,
	}
}

// Options converts a config into sweeper options.
func Options(cfg *config.Config, logger logr.Logger) analysis.Options {
	opts := analysis.DefaultOptions()
	rc := &opts.Roots
	if cfg.Roots.Seeds > 0 {
		rc.Seeds = cfg.Roots.Seeds
	}
	if cfg.Roots.MaxSteps > 0 {
		rc.MaxSteps = cfg.Roots.MaxSteps
	}
	if cfg.Roots.Tolerance > 0 {
		rc.Tolerance = cfg.Roots.Tolerance
	}
	if cfg.Roots.ZeroTol > 0 {
		rc.ZeroTol = cfg.Roots.ZeroTol
	}
	if cfg.Roots.PolyDedup > 0 {
		rc.PolyDedup = cfg.Roots.PolyDedup
	}
	if cfg.Roots.NumericDedup > 0 {
		rc.NumericDedup = cfg.Roots.NumericDedup
	}
	if cfg.Classifier.TranscriticalShift > 0 {
		opts.TranscriticalShift = cfg.Classifier.TranscriticalShift
	}
	opts.Coalesce = cfg.Classifier.Coalesce
	opts.Workers = cfg.Workers
	opts.Logger = logger
	return opts
}
