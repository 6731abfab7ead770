package classify

import "fmt"

// #region checks
// Check is one named validation result over the classifier calibration.
type Check struct {
	Name   string
	Detail string
	Pass   bool
}

// Report summarizes a Normalize pass.
type Report struct {
	Adjusted bool
	Checks   []Check
}

// #endregion checks

// #region normalize

// Normalize validates a classifier config and clamps anything out of range
// instead of rejecting it: the caller has no way to react to a refused
// calibration mid-session, so degraded accuracy always beats a failure.
// Returns the corrected config plus a check report for diagnostics.
func Normalize(config Config) (Config, Report) {
	var report Report
	fail := func(name, format string, args ...interface{}) {
		report.Adjusted = true
		report.Checks = append(report.Checks, Check{
			Name:   name,
			Detail: fmt.Sprintf(format, args...),
			Pass:   false,
		})
	}
	pass := func(name string) {
		report.Checks = append(report.Checks, Check{Name: name, Pass: true})
	}

	// 1. Base boundary ordering: turbulent < fluid < crystalline.
	b := config.Base
	ordered := b.Turbulent < b.Fluid && b.Fluid < b.Crystalline
	if !ordered {
		if b.Fluid <= b.Turbulent {
			b.Fluid = b.Turbulent + minSeparation
		}
		if b.Crystalline <= b.Fluid {
			b.Crystalline = b.Fluid + minSeparation
		}
		config.Base = b
		fail("base_ordering", "base thresholds reordered to %+v", b)
	} else {
		pass("base_ordering")
	}

	// 2. Exactly the four known states, defaults filling any gap.
	stateSetOK := true
	seen := make(map[StateID]bool, 4)
	states := make([]StateDefinition, 0, 4)
	for _, s := range config.States {
		if rank(s.ID) == 0 && s.ID != StateCollapse {
			fail("state_id", "unknown state %q dropped", s.ID)
			stateSetOK = false
			continue
		}
		if seen[s.ID] {
			fail("state_id", "duplicate state %q dropped", s.ID)
			stateSetOK = false
			continue
		}
		seen[s.ID] = true
		states = append(states, s)
	}
	for _, def := range DefaultStates() {
		if !seen[def.ID] {
			states = append(states, def)
			fail("state_set", "missing state %q filled from defaults", def.ID)
			stateSetOK = false
		}
	}
	if stateSetOK {
		pass("state_set")
	}
	config.States = states

	// 3. Generation parameter ranges: temp in (0, 2], noise ≥ 0.
	paramsOK := true
	for i, s := range config.States {
		if s.LLMTemp <= 0 || s.LLMTemp > 2 {
			def := defaultFor(s.ID)
			config.States[i].LLMTemp = def.LLMTemp
			fail("llm_temp", "state %q temp %.2f out of (0,2], reset to %.2f", s.ID, s.LLMTemp, def.LLMTemp)
			paramsOK = false
		}
		if s.NoiseScale < 0 {
			config.States[i].NoiseScale = 0
			fail("noise_scale", "state %q noise %.2f clamped to 0", s.ID, s.NoiseScale)
			paramsOK = false
		}
	}
	if paramsOK {
		pass("generation_params")
	}

	return config, report
}

func defaultFor(id StateID) StateDefinition {
	for _, def := range DefaultStates() {
		if def.ID == id {
			return def
		}
	}
	return DefaultStates()[len(DefaultStates())-1]
}

// #endregion normalize
