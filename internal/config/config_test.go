package config

import (
	"math"
	"path/filepath"
	"sort"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Steps <= 0 {
		t.Error("steps should be positive")
	}
	if cfg.Batch <= 0 {
		t.Error("batch should be positive")
	}
	if err := cfg.Params.Validate(); err != nil {
		t.Errorf("default params invalid: %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Batch = 128
	cfg.Backend = "serial"
	cfg.Action = ActionConfig{Mode: "constant", Values: [4]float64{0.5, 0.5, 0.6, 0.6}}

	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Batch != 128 {
		t.Errorf("batch = %d, want 128", loaded.Batch)
	}
	if loaded.Backend != "serial" {
		t.Errorf("backend = %q, want serial", loaded.Backend)
	}
	if loaded.Action.Values != cfg.Action.Values {
		t.Errorf("action values = %v, want %v", loaded.Action.Values, cfg.Action.Values)
	}
}

func TestActionRow(t *testing.T) {
	cfg := DefaultConfig()

	row, err := cfg.ActionRow()
	if err != nil {
		t.Fatalf("hover action: %v", err)
	}
	want := cfg.Params.HoverAction()
	for k, v := range row {
		if math.Abs(v-want) > 1e-15 {
			t.Errorf("hover action[%d] = %v, want %v", k, v, want)
		}
	}

	cfg.Action = ActionConfig{Mode: "zero"}
	row, err = cfg.ActionRow()
	if err != nil || row != [4]float64{} {
		t.Errorf("zero action = %v (%v), want zeros", row, err)
	}

	cfg.Action = ActionConfig{Mode: "constant", Values: [4]float64{0.1, -0.2, 0.3, 0.4}}
	if _, err := cfg.ActionRow(); err == nil {
		t.Error("expected error for negative constant action")
	}

	cfg.Action = ActionConfig{Mode: "warp"}
	if _, err := cfg.ActionRow(); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestPresets(t *testing.T) {
	cfg := GetPreset("hover")
	if cfg == nil {
		t.Fatal("expected hover preset")
	}
	if cfg.Action.Mode != "hover" {
		t.Errorf("hover preset mode = %q", cfg.Action.Mode)
	}

	// GetPreset returns a copy; mutating it must not leak into the table.
	cfg.Steps = 9999
	if Presets["hover"].Steps == 9999 {
		t.Error("preset table mutated through returned copy")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for unknown preset")
	}

	names := ListPresets()
	sort.Strings(names)
	if len(names) != 4 {
		t.Errorf("expected 4 presets, got %v", names)
	}
}
