package classify

// #region state-id
// StateID names one of the four interaction states, ordered from least to
// most coherent.
type StateID string

const (
	StateCollapse    StateID = "collapse"
	StateTurbulent   StateID = "turbulent"
	StateFluid       StateID = "fluid"
	StateCrystalline StateID = "crystalline"
)

// rank orders states for transition direction checks: collapse < turbulent
// < fluid < crystalline.
func rank(id StateID) int {
	switch id {
	case StateCrystalline:
		return 3
	case StateFluid:
		return 2
	case StateTurbulent:
		return 1
	default:
		return 0
	}
}

// #endregion state-id

// #region state-definition
// StateDefinition is the static persona-facing payload for one state. These
// are calibration data supplied at startup and never mutated at runtime.
type StateDefinition struct {
	ID         StateID `yaml:"id"`
	Name       string  `yaml:"name"`
	AIHint     string  `yaml:"ai_hint"`
	LLMTemp    float32 `yaml:"llm_temp"`    // in (0, 2]
	NoiseScale float32 `yaml:"noise_scale"` // ≥ 0
}

// #endregion state-definition

// #region thresholds
// Thresholds holds the three decision boundaries separating the four states.
// R above Crystalline classifies crystalline, above Fluid classifies fluid,
// above Turbulent classifies turbulent, otherwise collapse.
type Thresholds struct {
	Crystalline float32 `yaml:"crystalline"`
	Fluid       float32 `yaml:"fluid"`
	Turbulent   float32 `yaml:"turbulent"`
}

// #endregion thresholds

// #region config
// Config holds the classifier calibration: base boundaries plus the four
// state definitions.
type Config struct {
	Base   Thresholds        `yaml:"base_thresholds"`
	States []StateDefinition `yaml:"states"`
}

// DefaultConfig returns the baseline calibration.
func DefaultConfig() Config {
	return Config{
		Base: Thresholds{
			Crystalline: 0.85,
			Fluid:       0.60,
			Turbulent:   0.35,
		},
		States: DefaultStates(),
	}
}

// DefaultStates returns the four built-in state definitions.
func DefaultStates() []StateDefinition {
	return []StateDefinition{
		{
			ID:         StateCrystalline,
			Name:       "Crystalline",
			AIHint:     "User is deeply settled and focused. Keep responses precise, calm, and spare.",
			LLMTemp:    0.4,
			NoiseScale: 0.0,
		},
		{
			ID:         StateFluid,
			Name:       "Fluid",
			AIHint:     "User is engaged and moving smoothly. Match their flow with warm, open phrasing.",
			LLMTemp:    0.7,
			NoiseScale: 0.1,
		},
		{
			ID:         StateTurbulent,
			Name:       "Turbulent",
			AIHint:     "User attention is scattered. Slow down, shorten sentences, offer grounding.",
			LLMTemp:    0.9,
			NoiseScale: 0.3,
		},
		{
			ID:         StateCollapse,
			Name:       "Collapse",
			AIHint:     "User is disengaged or overwhelmed. Be gentle, minimal, and invite a pause.",
			LLMTemp:    1.1,
			NoiseScale: 0.5,
		},
	}
}

// #endregion config

// #region outcome
// Outcome is one classification result: the confirmed state, the dynamic
// boundaries that produced it, and whether the confirmed state changed on
// this tick.
type Outcome struct {
	State      StateDefinition
	Thresholds Thresholds
	Changed    bool
	// PendingDown is set while a downward transition is observed but not yet
	// confirmed by the hysteresis rule.
	PendingDown StateID
}

// #endregion outcome
