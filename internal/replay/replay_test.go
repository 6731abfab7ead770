package replay

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/aurawell/coherence/go-engine/internal/classify"
)

func syncFixture() Fixture {
	cfg := DefaultFixtureConfig()
	cfg.CouplingRate = 1.0
	return Fixture{
		Description: "three synchronized channels reach crystalline",
		Config:      cfg,
		Events: []FixtureEvent{
			{AtMs: 100, Inject: map[string]FixtureEvidence{
				"a": {Phase: 0.5},
				"b": {Phase: 0.5},
				"c": {Phase: 0.5},
			}},
		},
		Expected: []FixtureExpectation{
			{Tick: 1, State: string(classify.StateCrystalline)},
		},
	}
}

func TestReplaySynchronizedChannels(t *testing.T) {
	results, summary := Run(syncFixture())
	if summary.Mismatches != 0 {
		t.Fatalf("unexpected mismatches: %+v", results)
	}
	if math.Abs(float64(results[0].R)-1.0) > 1e-5 {
		t.Fatalf("expected R≈1, got %f", results[0].R)
	}
	if summary.FinalState != classify.StateCrystalline {
		t.Fatalf("expected crystalline final state, got %s", summary.FinalState)
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	f := syncFixture()
	first, _ := Run(f)
	second, _ := Run(f)
	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("tick %d differs across runs: %+v vs %+v", i+1, first[i], second[i])
		}
	}
}

func TestReplayHysteresisTimeline(t *testing.T) {
	cfg := DefaultFixtureConfig()
	cfg.CouplingRate = 1.0
	third := float32(2 * math.Pi / 3)
	f := Fixture{
		Description: "dispersion must hold two ticks before the state drops",
		Config:      cfg,
		Events: []FixtureEvent{
			{AtMs: 100, Inject: map[string]FixtureEvidence{
				"a": {Phase: 1}, "b": {Phase: 1}, "c": {Phase: 1},
			}},
			// Disperse right after tick 1.
			{AtMs: 1600, Inject: map[string]FixtureEvidence{
				"a": {Phase: 0}, "b": {Phase: third}, "c": {Phase: 2 * third},
			}},
		},
		Expected: []FixtureExpectation{
			{Tick: 1, State: string(classify.StateCrystalline)},
			{Tick: 2, State: string(classify.StateCrystalline)}, // first low tick held
			{Tick: 3, State: string(classify.StateCollapse)},    // second confirms
		},
	}

	results, summary := Run(f)
	if summary.Mismatches != 0 {
		for _, r := range results {
			t.Logf("tick %d: R=%.3f momentum=%.3f state=%s expected=%s", r.Tick, r.R, r.Momentum, r.State, r.Expected)
		}
		t.Fatalf("hysteresis timeline mismatched: %+v", summary)
	}
}

func TestReplayEmptyFixtureRunsOneTick(t *testing.T) {
	results, summary := Run(Fixture{Config: DefaultFixtureConfig()})
	if len(results) != 1 {
		t.Fatalf("expected a single tick, got %d", len(results))
	}
	if results[0].R != 0 {
		t.Fatalf("expected R=0 with no channels, got %f", results[0].R)
	}
	if summary.FinalState != classify.StateCollapse {
		t.Fatalf("expected collapse with empty ensemble, got %s", summary.FinalState)
	}
}

func TestFixtureRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	f := syncFixture()
	if err := SaveFixture(path, f); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	if loaded.Description != f.Description {
		t.Fatalf("description mismatch: %q", loaded.Description)
	}
	if len(loaded.Events) != 1 || len(loaded.Expected) != 1 {
		t.Fatalf("fixture contents lost: %+v", loaded)
	}
	if loaded.Config.CouplingRate != 1.0 {
		t.Fatalf("coupling rate lost: %f", loaded.Config.CouplingRate)
	}
}

func TestLoadFixtureFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sparse.json")
	f := Fixture{Description: "sparse"}
	if err := SaveFixture(path, f); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	def := DefaultFixtureConfig()
	if loaded.Config.SampleIntervalMs != def.SampleIntervalMs {
		t.Fatalf("sample interval default not applied: %d", loaded.Config.SampleIntervalMs)
	}
	if loaded.Config.RingCapacity != def.RingCapacity {
		t.Fatalf("ring capacity default not applied: %d", loaded.Config.RingCapacity)
	}
}
