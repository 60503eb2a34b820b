package config

import "sort"

func preset(model, expr string, rMin, rMax, xMin, xMax float64) *Config {
	cfg := DefaultConfig()
	cfg.Model, cfg.Expression = model, expr
	cfg.RMin, cfg.RMax, cfg.XMin, cfg.XMax = rMin, rMax, xMin, xMax
	return cfg
}

func (c *Config) withSteps(n int) *Config {
	c.Steps = n
	return c
}

// Presets are keyed by model, then preset name. Step counts are odd where the
// bifurcation sits on a grid point, since exchanges of stability are only
// visible to the count-based detector there.
var Presets = map[string]map[string]*Config{
	"saddle_node": {
		"default": preset("saddle_node", "r + x^2", -1, 1, -2, 2),
		"zoom":    preset("saddle_node", "r + x^2", -0.1, 0.1, -2, 2),
	},
	"transcritical": {
		"default": preset("transcritical", "r*x - x^2", -1, 1, -2, 2).withSteps(201),
		"zoom":    preset("transcritical", "r*x - x^2", -0.1, 0.1, -2, 2),
	},
	"pitchfork": {
		"default": preset("pitchfork", "r*x - x^3", -2, 2, -3, 3),
		"zoom":    preset("pitchfork", "r*x - x^3", -0.1, 0.1, -2, 2),
	},
	"subcritical": {
		"default": preset("subcritical", "r*x + x^3 - x^5", -0.5, 0.5, -2, 2),
	},
	"imperfect": {
		"default": preset("imperfect", "0.05 + r*x - x^3", -1, 1, -2, 2),
	},
	"harvest": {
		"default": preset("harvest", "x*(1 - x) - r", -0.5, 0.5, -1, 2),
	},
	"cosh": {
		"default": preset("cosh", "r - cosh(x)", 0, 3, -3, 3),
	},
	"exp": {
		"default": preset("exp", "x*(r - exp(x))", 0.5, 1.5, -3, 3).withSteps(101),
	},
	"empty": {
		"default": preset("empty", "-x^2 - 1", -1, 1, -2, 2),
	},
}

// GetPreset returns a copy of the named preset or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
