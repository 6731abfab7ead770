package persona

import (
	"github.com/aurawell/coherence/go-engine/internal/classify"
)

// #region profile

// Profile is the generation parameter bundle for the current state. It is
// derived, never stored: a pure function of the classified StateDefinition.
type Profile struct {
	Name       string
	LLMTemp    float32
	NoiseScale float32
	AIHint     string
}

// ProfileFor maps a state definition to its persona profile verbatim. No
// smoothing: abrupt persona changes are intentional and must be visible the
// moment the classifier confirms a transition.
func ProfileFor(state classify.StateDefinition) Profile {
	return Profile{
		Name:       state.Name,
		LLMTemp:    state.LLMTemp,
		NoiseScale: state.NoiseScale,
		AIHint:     state.AIHint,
	}
}

// #endregion profile

// #region action

// Action tags an optional recommended user-facing intervention.
type Action string

const (
	ActionNone            Action = "none"
	ActionBreathingPrompt Action = "breathing_prompt"
)

// Recommendation pairs an action tag with a short advisory message.
type Recommendation struct {
	Action  Action
	Message string
}

// Recommend emits a restorative prompt only when the state is turbulent or
// collapse AND momentum is non-positive. A turbulent reading that is actively
// recovering (momentum > 0) never triggers an intervention.
func Recommend(state classify.StateID, momentum float32) Recommendation {
	if momentum > 0 {
		return Recommendation{Action: ActionNone}
	}
	switch state {
	case classify.StateTurbulent:
		return Recommendation{
			Action:  ActionBreathingPrompt,
			Message: "Things feel a little scattered. A slow breath might help you settle.",
		}
	case classify.StateCollapse:
		return Recommendation{
			Action:  ActionBreathingPrompt,
			Message: "It looks like a good moment to pause. Try one slow breath in and out.",
		}
	default:
		return Recommendation{Action: ActionNone}
	}
}

// #endregion action

// #region prompt-config

// ItemContext describes the content item a downstream generation call is
// being prepared for.
type ItemContext struct {
	ID    string
	Kind  string // "reading" | "reflection" | "exercise"
	Topic string
}

// InteractionContext carries session-level context supplied by the caller.
type InteractionContext struct {
	TimeOfDay      string // "morning" | "afternoon" | "evening" | "night"
	SessionMinutes int
}

// PromptConfig is the parameter bundle handed to the downstream content
// generation call. The engine selects parameters only; the call itself is
// the caller's business.
type PromptConfig struct {
	Temperature float32
	NoiseScale  float32
	Tone        string
	Hint        string
	Topic       string
	ItemID      string
	ItemKind    string
}

// longSessionMinutes is the point past which temperature is eased down to
// keep long sessions from drifting.
const longSessionMinutes = 25

// BuildPromptConfig combines the current profile with caller-supplied
// context. Deterministic for a given (profile, item, interaction) triple:
// no hidden randomness, so the mapping is directly testable.
func BuildPromptConfig(p Profile, item ItemContext, inter InteractionContext) PromptConfig {
	temp := p.LLMTemp
	if inter.SessionMinutes >= longSessionMinutes {
		temp -= 0.1
		if temp < 0.1 {
			temp = 0.1
		}
	}
	return PromptConfig{
		Temperature: temp,
		NoiseScale:  p.NoiseScale,
		Tone:        p.Name,
		Hint:        p.AIHint,
		Topic:       item.Topic,
		ItemID:      item.ID,
		ItemKind:    item.Kind,
	}
}

// #endregion prompt-config
