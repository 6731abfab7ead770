package classify

// MomentumGain is κ, the fixed gain coupling momentum into the decision
// boundaries: τ_state = τ_base − κ·momentum. It is a behavioral calibration
// invariant of the whole system and must not vary per session.
const MomentumGain float32 = 1.0

// minSeparation keeps adjusted boundaries strictly ordered after clamping.
const minSeparation float32 = 1e-4

// #region classifier

// Classifier turns the continuous (R, momentum) pair into one of the four
// discrete states. Downward transitions must hold for two consecutive ticks
// before they are confirmed; upward transitions take effect immediately.
type Classifier struct {
	config  Config
	states  map[StateID]StateDefinition
	current StateID

	// Pending downward transition tracking.
	downCandidate StateID
	downStreak    int
}

// NewClassifier creates a classifier starting in the lowest-engagement state.
// The config is normalized first; see Normalize.
func NewClassifier(config Config) *Classifier {
	config, _ = Normalize(config)
	states := make(map[StateID]StateDefinition, len(config.States))
	for _, s := range config.States {
		states[s.ID] = s
	}
	return &Classifier{
		config:  config,
		states:  states,
		current: StateCollapse,
	}
}

// Current returns the currently confirmed state.
func (c *Classifier) Current() StateDefinition {
	return c.states[c.current]
}

// Reset returns the classifier to the lowest-engagement state and clears any
// pending downward transition.
func (c *Classifier) Reset() {
	c.current = StateCollapse
	c.downCandidate = ""
	c.downStreak = 0
}

// #endregion classifier

// #region thresholds

// DynamicThresholds shifts each base boundary by -κ·momentum and clamps the
// result so collapse < turbulent < fluid < crystalline always holds. Rising R
// lowers every bar; falling R raises them.
func DynamicThresholds(base Thresholds, momentum float32) Thresholds {
	t := Thresholds{
		Crystalline: base.Crystalline - MomentumGain*momentum,
		Fluid:       base.Fluid - MomentumGain*momentum,
		Turbulent:   base.Turbulent - MomentumGain*momentum,
	}
	if t.Fluid <= t.Turbulent {
		t.Fluid = t.Turbulent + minSeparation
	}
	if t.Crystalline <= t.Fluid {
		t.Crystalline = t.Fluid + minSeparation
	}
	return t
}

// rawClassify applies the boundaries high to low with no hysteresis.
func rawClassify(r float32, t Thresholds) StateID {
	switch {
	case r > t.Crystalline:
		return StateCrystalline
	case r > t.Fluid:
		return StateFluid
	case r > t.Turbulent:
		return StateTurbulent
	default:
		return StateCollapse
	}
}

// #endregion thresholds

// #region classify

// Classify evaluates one tick. Upward (or unchanged) raw classifications are
// committed immediately; a downward classification is committed only once the
// same-or-lower condition has held for two consecutive ticks, so a single
// noisy sample cannot flap the state downward.
func (c *Classifier) Classify(r, momentum float32) Outcome {
	thresholds := DynamicThresholds(c.config.Base, momentum)
	raw := rawClassify(r, thresholds)

	prev := c.current

	if rank(raw) >= rank(c.current) {
		c.current = raw
		c.downCandidate = ""
		c.downStreak = 0
	} else {
		if raw == c.downCandidate {
			c.downStreak++
		} else {
			c.downCandidate = raw
			c.downStreak = 1
		}
		if c.downStreak >= 2 {
			c.current = raw
			c.downCandidate = ""
			c.downStreak = 0
		}
	}

	return Outcome{
		State:       c.states[c.current],
		Thresholds:  thresholds,
		Changed:     c.current != prev,
		PendingDown: c.downCandidate,
	}
}

// #endregion classify
