package classify

import (
	"math"
	"testing"
)

func TestZeroMomentumReducesToStaticThresholds(t *testing.T) {
	base := DefaultConfig().Base
	got := DynamicThresholds(base, 0)
	if got != base {
		t.Fatalf("expected dynamic thresholds to equal base at momentum 0, got %+v", got)
	}
}

func TestDynamicThresholdShift(t *testing.T) {
	// With κ=1.0 and a fluid base of 0.80, momentum +0.05 lowers the bar to
	// 0.75 and momentum -0.05 raises it to 0.85.
	base := Thresholds{Crystalline: 0.95, Fluid: 0.80, Turbulent: 0.40}

	up := DynamicThresholds(base, 0.05)
	if math.Abs(float64(up.Fluid)-0.75) > 1e-6 {
		t.Fatalf("expected fluid threshold 0.75 at momentum +0.05, got %f", up.Fluid)
	}

	down := DynamicThresholds(base, -0.05)
	if math.Abs(float64(down.Fluid)-0.85) > 1e-6 {
		t.Fatalf("expected fluid threshold 0.85 at momentum -0.05, got %f", down.Fluid)
	}
}

func TestDynamicThresholdsPreserveOrdering(t *testing.T) {
	for _, momentum := range []float32{-50, -1, -0.5, 0, 0.5, 1, 50} {
		th := DynamicThresholds(DefaultConfig().Base, momentum)
		if !(th.Turbulent < th.Fluid && th.Fluid < th.Crystalline) {
			t.Fatalf("momentum %f inverted ordering: %+v", momentum, th)
		}
	}
}

func TestClassifierStartsInCollapse(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	if c.Current().ID != StateCollapse {
		t.Fatalf("expected initial state collapse, got %s", c.Current().ID)
	}
}

func TestUpwardTransitionImmediate(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	out := c.Classify(0.95, 0)
	if out.State.ID != StateCrystalline {
		t.Fatalf("expected immediate jump to crystalline, got %s", out.State.ID)
	}
	if !out.Changed {
		t.Fatal("expected Changed on upward transition")
	}
}

func TestDownwardTransitionNeedsTwoTicks(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	c.Classify(0.95, 0) // crystalline

	// Single-tick downward noise spike: state must hold.
	out := c.Classify(0.30, 0)
	if out.State.ID != StateCrystalline {
		t.Fatalf("expected crystalline to hold after one low tick, got %s", out.State.ID)
	}
	if out.Changed {
		t.Fatal("state must not change on first downward tick")
	}
	if out.PendingDown != StateCollapse {
		t.Fatalf("expected pending collapse, got %q", out.PendingDown)
	}

	// Second consecutive tick confirms.
	out = c.Classify(0.30, 0)
	if out.State.ID != StateCollapse {
		t.Fatalf("expected collapse after two low ticks, got %s", out.State.ID)
	}
	if !out.Changed {
		t.Fatal("expected Changed on confirmed downward transition")
	}
}

func TestDownwardSpikeRecoversWithoutTransition(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	c.Classify(0.95, 0)           // crystalline
	c.Classify(0.30, 0)           // noise spike, pending
	out := c.Classify(0.95, 0)    // recovery resets the streak
	if out.State.ID != StateCrystalline {
		t.Fatalf("expected crystalline after recovery, got %s", out.State.ID)
	}
	if out.PendingDown != "" {
		t.Fatalf("expected no pending transition after recovery, got %q", out.PendingDown)
	}

	// A later single low tick must again not transition.
	out = c.Classify(0.30, 0)
	if out.State.ID != StateCrystalline {
		t.Fatalf("streak must have been reset, got %s", out.State.ID)
	}
}

func TestChangingDownCandidateRestartsStreak(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	c.Classify(0.95, 0) // crystalline

	c.Classify(0.70, 0) // pending fluid
	out := c.Classify(0.30, 0)
	if out.State.ID != StateCrystalline {
		t.Fatalf("candidate change must restart streak, got %s", out.State.ID)
	}
	out = c.Classify(0.30, 0)
	if out.State.ID != StateCollapse {
		t.Fatalf("expected collapse after two collapse ticks, got %s", out.State.ID)
	}
}

func TestMomentumLowersBarWhileRising(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	// R just under the fluid base of 0.60: static classification is turbulent,
	// but positive momentum lowers the bar enough to admit fluid.
	out := c.Classify(0.58, 0.05)
	if out.State.ID != StateFluid {
		t.Fatalf("expected fluid with rising momentum, got %s", out.State.ID)
	}
}

func TestResetReturnsToCollapse(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	c.Classify(0.95, 0)
	c.Reset()
	if c.Current().ID != StateCollapse {
		t.Fatalf("expected collapse after reset, got %s", c.Current().ID)
	}
}

func TestNormalizePassesCleanConfig(t *testing.T) {
	_, report := Normalize(DefaultConfig())
	if report.Adjusted {
		t.Fatalf("default config should not need adjustment: %+v", report.Checks)
	}
}

func TestNormalizeReordersBaseThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Base = Thresholds{Crystalline: 0.2, Fluid: 0.5, Turbulent: 0.7}
	fixed, report := Normalize(cfg)
	if !report.Adjusted {
		t.Fatal("expected adjustment for inverted base thresholds")
	}
	b := fixed.Base
	if !(b.Turbulent < b.Fluid && b.Fluid < b.Crystalline) {
		t.Fatalf("normalize left thresholds unordered: %+v", b)
	}
}

func TestNormalizeFillsMissingStates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.States = cfg.States[:2]
	fixed, report := Normalize(cfg)
	if !report.Adjusted {
		t.Fatal("expected adjustment for missing states")
	}
	if len(fixed.States) != 4 {
		t.Fatalf("expected 4 states after fill, got %d", len(fixed.States))
	}
}

func TestNormalizeClampsGenerationParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.States[0].LLMTemp = 5.0
	cfg.States[1].NoiseScale = -1.0
	fixed, report := Normalize(cfg)
	if !report.Adjusted {
		t.Fatal("expected adjustment for out-of-range params")
	}
	for _, s := range fixed.States {
		if s.LLMTemp <= 0 || s.LLMTemp > 2 {
			t.Fatalf("state %s temp %f still out of range", s.ID, s.LLMTemp)
		}
		if s.NoiseScale < 0 {
			t.Fatalf("state %s noise %f still negative", s.ID, s.NoiseScale)
		}
	}
}
