// Package calibration loads engine calibration from YAML. The channel set,
// coupling rate, staleness decay, base thresholds, and state parameters are
// all calibration data; the momentum gain κ deliberately is not.
package calibration

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aurawell/coherence/go-engine/internal/classify"
	"github.com/aurawell/coherence/go-engine/internal/engine"
	"github.com/aurawell/coherence/go-engine/internal/ensemble"
)

// #region file-schema

// File mirrors engine.Config with YAML-friendly millisecond durations.
// Omitted fields fall back to the engine defaults.
type File struct {
	SampleIntervalMs int64 `yaml:"sample_interval_ms"`
	RingCapacity     int   `yaml:"ring_capacity"`
	MomentumWindowMs int64 `yaml:"momentum_window_ms"`

	Ensemble   EnsembleSection   `yaml:"ensemble"`
	Classifier ClassifierSection `yaml:"classifier"`
}

// EnsembleSection is the ensemble calibration block.
type EnsembleSection struct {
	CouplingRate        float32                  `yaml:"coupling_rate"`
	StalenessWindowMs   int64                    `yaml:"staleness_window_ms"`
	StalenessHalfLifeMs int64                    `yaml:"staleness_half_life_ms"`
	DefaultWeight       *float32                 `yaml:"default_weight"`
	Channels            []ensemble.ChannelConfig `yaml:"channels"`
}

// ClassifierSection is the classifier calibration block.
type ClassifierSection struct {
	Base   *classify.Thresholds       `yaml:"base_thresholds"`
	States []classify.StateDefinition `yaml:"states"`
}

// #endregion file-schema

// #region load

// Load reads a YAML calibration file into an engine config.
func Load(path string) (engine.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Config{}, fmt.Errorf("read calibration: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML calibration data, filling engine defaults for anything
// omitted. Out-of-range values are left to the engine's own normalization,
// which clamps rather than rejects.
func Parse(data []byte) (engine.Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return engine.Config{}, fmt.Errorf("parse calibration: %w", err)
	}

	cfg := engine.DefaultConfig()

	if f.SampleIntervalMs > 0 {
		cfg.SampleInterval = time.Duration(f.SampleIntervalMs) * time.Millisecond
	}
	if f.RingCapacity >= 2 {
		cfg.RingCapacity = f.RingCapacity
	}
	if f.MomentumWindowMs > 0 {
		cfg.MomentumWindow = time.Duration(f.MomentumWindowMs) * time.Millisecond
	}

	if f.Ensemble.CouplingRate > 0 {
		cfg.Ensemble.CouplingRate = f.Ensemble.CouplingRate
	}
	if f.Ensemble.StalenessWindowMs > 0 {
		cfg.Ensemble.StalenessWindow = time.Duration(f.Ensemble.StalenessWindowMs) * time.Millisecond
	}
	if f.Ensemble.StalenessHalfLifeMs > 0 {
		cfg.Ensemble.StalenessHalfLife = time.Duration(f.Ensemble.StalenessHalfLifeMs) * time.Millisecond
	}
	if f.Ensemble.DefaultWeight != nil {
		cfg.Ensemble.DefaultWeight = *f.Ensemble.DefaultWeight
	}
	if len(f.Ensemble.Channels) > 0 {
		cfg.Ensemble.Channels = f.Ensemble.Channels
	}

	if f.Classifier.Base != nil {
		cfg.Classifier.Base = *f.Classifier.Base
	}
	if len(f.Classifier.States) > 0 {
		cfg.Classifier.States = f.Classifier.States
	}

	return cfg, nil
}

// #endregion load
