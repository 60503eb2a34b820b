package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/bifsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Expression != "r*x - x**3" {
		t.Errorf("expected default expression r*x - x**3, got %s", cfg.Expression)
	}
	if cfg.RMin != -2 || cfg.RMax != 2 {
		t.Errorf("expected r in [-2, 2], got [%v, %v]", cfg.RMin, cfg.RMax)
	}
	if cfg.XMin != -3 || cfg.XMax != 3 {
		t.Errorf("expected x in [-3, 3], got [%v, %v]", cfg.XMin, cfg.XMax)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
		want error
	}{
		{"inverted r", func(c *Config) { c.RMin, c.RMax = 1, 0 }, dynamo.ErrParameterBounds},
		{"empty window", func(c *Config) { c.XMin, c.XMax = 0, 0 }, dynamo.ErrSearchWindow},
		{"negative steps", func(c *Config) { c.Steps = -5 }, dynamo.ErrInvalidSteps},
		{"empty expression", func(c *Config) { c.Expression = "" }, dynamo.ErrInvalidExpression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Roots.Seeds = 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for a single seed")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bifsim.yaml")

	cfg := DefaultConfig()
	cfg.Expression = "r + x^2"
	cfg.Steps = 201
	cfg.Classifier.TranscriticalShift = 0.01
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Expression != "r + x^2" || loaded.Steps != 201 {
		t.Errorf("unexpected round trip: %+v", loaded)
	}
	if loaded.Classifier.TranscriticalShift != 0.01 {
		t.Errorf("expected shift 0.01, got %v", loaded.Classifier.TranscriticalShift)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := saveRaw(path, "expression: r - x\nr_min: -1\n"); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RMin != -1 || cfg.RMax != DefaultRMax {
		t.Errorf("expected r in [-1, %v], got [%v, %v]", DefaultRMax, cfg.RMin, cfg.RMax)
	}
	if cfg.Roots.Seeds != DefaultSeeds {
		t.Errorf("expected default seeds, got %d", cfg.Roots.Seeds)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("saddle_node", "zoom")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Expression != "r + x^2" || cfg.RMin != -0.1 {
		t.Errorf("unexpected preset %+v", cfg)
	}

	cfg.RMin = 42
	if Presets["saddle_node"]["zoom"].RMin == 42 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("pitchfork", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "default"); cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("pitchfork")
	if len(presets) != 2 || presets[0] != "default" || presets[1] != "zoom" {
		t.Errorf("expected [default zoom], got %v", presets)
	}

	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestPresetsValid(t *testing.T) {
	for model, named := range Presets {
		for name, cfg := range named {
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", model, name, err)
			}
		}
	}
}

func saveRaw(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
