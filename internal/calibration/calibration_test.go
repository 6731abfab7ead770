package calibration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aurawell/coherence/go-engine/internal/classify"
	"github.com/aurawell/coherence/go-engine/internal/engine"
)

const sampleYAML = `
sample_interval_ms: 2000
ring_capacity: 16
momentum_window_ms: 8000
ensemble:
  coupling_rate: 0.5
  staleness_window_ms: 15000
  staleness_half_life_ms: 10000
  default_weight: 0.8
  channels:
    - id: tap_rhythm
      weight: 1.0
    - id: scroll_rate
      weight: 0.5
classifier:
  base_thresholds:
    crystalline: 0.9
    fluid: 0.7
    turbulent: 0.4
  states:
    - id: crystalline
      name: Crystalline
      ai_hint: keep it spare
      llm_temp: 0.3
      noise_scale: 0.0
`

func TestParseFullCalibration(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.SampleInterval != 2*time.Second {
		t.Fatalf("sample interval: %v", cfg.SampleInterval)
	}
	if cfg.RingCapacity != 16 {
		t.Fatalf("ring capacity: %d", cfg.RingCapacity)
	}
	if cfg.MomentumWindow != 8*time.Second {
		t.Fatalf("momentum window: %v", cfg.MomentumWindow)
	}
	if cfg.Ensemble.CouplingRate != 0.5 {
		t.Fatalf("coupling rate: %f", cfg.Ensemble.CouplingRate)
	}
	if cfg.Ensemble.DefaultWeight != 0.8 {
		t.Fatalf("default weight: %f", cfg.Ensemble.DefaultWeight)
	}
	if len(cfg.Ensemble.Channels) != 2 || cfg.Ensemble.Channels[1].Weight != 0.5 {
		t.Fatalf("channels: %+v", cfg.Ensemble.Channels)
	}
	if cfg.Classifier.Base.Fluid != 0.7 {
		t.Fatalf("fluid base: %f", cfg.Classifier.Base.Fluid)
	}
	if len(cfg.Classifier.States) != 1 || cfg.Classifier.States[0].ID != classify.StateCrystalline {
		t.Fatalf("states: %+v", cfg.Classifier.States)
	}
}

func TestParseEmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	def := engine.DefaultConfig()
	if cfg.SampleInterval != def.SampleInterval {
		t.Fatalf("expected default sample interval, got %v", cfg.SampleInterval)
	}
	if cfg.Classifier.Base != def.Classifier.Base {
		t.Fatalf("expected default thresholds, got %+v", cfg.Classifier.Base)
	}
	if len(cfg.Classifier.States) != 4 {
		t.Fatalf("expected 4 default states, got %d", len(cfg.Classifier.States))
	}
}

func TestParsePartialOverride(t *testing.T) {
	cfg, err := Parse([]byte("sample_interval_ms: 1000\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.SampleInterval != time.Second {
		t.Fatalf("sample interval: %v", cfg.SampleInterval)
	}
	def := engine.DefaultConfig()
	if cfg.RingCapacity != def.RingCapacity {
		t.Fatalf("expected default ring capacity, got %d", cfg.RingCapacity)
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("sample_interval_ms: [not a number")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SampleInterval != 2*time.Second {
		t.Fatalf("sample interval: %v", cfg.SampleInterval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
