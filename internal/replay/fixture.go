package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aurawell/coherence/go-engine/internal/classify"
	"github.com/aurawell/coherence/go-engine/internal/ensemble"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay run: a calibration,
// a timeline of evidence injections, and the state expected after selected
// ticks.
type Fixture struct {
	Description string               `json:"description"`
	Config      FixtureConfig        `json:"config"`
	Events      []FixtureEvent       `json:"events"`
	Expected    []FixtureExpectation `json:"expected"`
}

// FixtureConfig is the JSON-serializable calibration subset a replay needs.
type FixtureConfig struct {
	SampleIntervalMs int64             `json:"sample_interval_ms"`
	RingCapacity     int               `json:"ring_capacity"`
	MomentumWindowMs int64             `json:"momentum_window_ms"`
	CouplingRate     float32           `json:"coupling_rate"`
	Thresholds       FixtureThresholds `json:"base_thresholds"`
	States           []FixtureStateDef `json:"states,omitempty"`
}

// FixtureThresholds mirrors classify.Thresholds with JSON tags.
type FixtureThresholds struct {
	Crystalline float32 `json:"crystalline"`
	Fluid       float32 `json:"fluid"`
	Turbulent   float32 `json:"turbulent"`
}

// FixtureStateDef mirrors classify.StateDefinition with JSON tags.
type FixtureStateDef struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	AIHint     string  `json:"ai_hint"`
	LLMTemp    float32 `json:"llm_temp"`
	NoiseScale float32 `json:"noise_scale"`
}

// FixtureEvidence mirrors ensemble.Evidence with JSON tags.
type FixtureEvidence struct {
	Phase float32 `json:"phase"`
	Delta bool    `json:"delta,omitempty"`
}

// FixtureEvent is one injection batch at an offset from session start.
type FixtureEvent struct {
	AtMs   int64                      `json:"at_ms"`
	Inject map[string]FixtureEvidence `json:"inject"`
}

// FixtureExpectation names the state expected after a given 1-based tick.
type FixtureExpectation struct {
	Tick  int    `json:"tick"`
	State string `json:"state"`
}

// #endregion fixture-types

// #region defaults

// DefaultFixtureConfig mirrors the engine defaults.
func DefaultFixtureConfig() FixtureConfig {
	base := classify.DefaultConfig().Base
	return FixtureConfig{
		SampleIntervalMs: 1500,
		RingCapacity:     32,
		MomentumWindowMs: 10000,
		CouplingRate:     ensemble.DefaultConfig().CouplingRate,
		Thresholds: FixtureThresholds{
			Crystalline: base.Crystalline,
			Fluid:       base.Fluid,
			Turbulent:   base.Turbulent,
		},
	}
}

// #endregion defaults

// #region load-save

// LoadFixture reads a fixture file, filling defaults for omitted calibration.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	def := DefaultFixtureConfig()
	if f.Config.SampleIntervalMs <= 0 {
		f.Config.SampleIntervalMs = def.SampleIntervalMs
	}
	if f.Config.RingCapacity < 2 {
		f.Config.RingCapacity = def.RingCapacity
	}
	if f.Config.MomentumWindowMs <= 0 {
		f.Config.MomentumWindowMs = def.MomentumWindowMs
	}
	if f.Config.CouplingRate <= 0 || f.Config.CouplingRate > 1 {
		f.Config.CouplingRate = def.CouplingRate
	}
	return f, nil
}

// SaveFixture writes a fixture as indented JSON.
func SaveFixture(path string, f Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// #endregion load-save

// #region conversion

func (c FixtureConfig) sampleInterval() time.Duration {
	return time.Duration(c.SampleIntervalMs) * time.Millisecond
}

func (c FixtureConfig) momentumWindow() time.Duration {
	return time.Duration(c.MomentumWindowMs) * time.Millisecond
}

func (c FixtureConfig) classifierConfig() classify.Config {
	cfg := classify.DefaultConfig()
	if c.Thresholds != (FixtureThresholds{}) {
		cfg.Base = classify.Thresholds{
			Crystalline: c.Thresholds.Crystalline,
			Fluid:       c.Thresholds.Fluid,
			Turbulent:   c.Thresholds.Turbulent,
		}
	}
	if len(c.States) > 0 {
		states := make([]classify.StateDefinition, 0, len(c.States))
		for _, s := range c.States {
			states = append(states, classify.StateDefinition{
				ID:         classify.StateID(s.ID),
				Name:       s.Name,
				AIHint:     s.AIHint,
				LLMTemp:    s.LLMTemp,
				NoiseScale: s.NoiseScale,
			})
		}
		cfg.States = states
	}
	return cfg
}

func (c FixtureConfig) ensembleConfig() ensemble.Config {
	cfg := ensemble.DefaultConfig()
	cfg.CouplingRate = c.CouplingRate
	return cfg
}

// #endregion conversion
