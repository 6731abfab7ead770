// Command fixture-export converts one journaled session into a replay
// fixture: evidence batches become timed events, and confirmed transitions
// become per-tick state expectations. The exported fixture replays the
// session deterministically under cmd/replay.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/aurawell/coherence/go-engine/internal/classify"
	"github.com/aurawell/coherence/go-engine/internal/engine"
	"github.com/aurawell/coherence/go-engine/internal/journal"
	"github.com/aurawell/coherence/go-engine/internal/replay"
)

// #region main
func main() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.Kitchen,
		}),
	))

	var (
		dbPath    = flag.String("db", "coherence.db", "path to journal database")
		sessionID = flag.String("session", "", "session to export")
		outPath   = flag.String("out", "fixture.json", "output fixture path")
	)
	flag.Parse()

	if *sessionID == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export -db <file> -session <id> [-out <file.json>]")
		os.Exit(2)
	}

	store, err := journal.NewStore(*dbPath)
	if err != nil {
		slog.Error("journal open failed", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	fixture, err := export(store, *sessionID)
	if err != nil {
		slog.Error("export failed", "session", *sessionID, "error", err)
		os.Exit(1)
	}

	if err := replay.SaveFixture(*outPath, fixture); err != nil {
		slog.Error("fixture write failed", "error", err)
		os.Exit(1)
	}
	slog.Info("fixture exported",
		"session", *sessionID,
		"events", len(fixture.Events),
		"expected", len(fixture.Expected),
		"out", *outPath,
	)
}

// #endregion main

// #region export

func export(store *journal.Store, sessionID string) (replay.Fixture, error) {
	session, err := findSession(store, sessionID)
	if err != nil {
		return replay.Fixture{}, err
	}

	config := fixtureConfig(session.ConfigJSON)

	evidence, err := store.Evidence(sessionID)
	if err != nil {
		return replay.Fixture{}, err
	}
	transitions, err := store.Transitions(sessionID)
	if err != nil {
		return replay.Fixture{}, err
	}

	fixture := replay.Fixture{
		Description: fmt.Sprintf("exported from session %s", sessionID),
		Config:      config,
	}

	for _, ev := range evidence {
		inject := make(map[string]replay.FixtureEvidence, len(ev.Updates))
		for id, e := range ev.Updates {
			inject[id] = replay.FixtureEvidence{Phase: e.Phase, Delta: e.Delta}
		}
		fixture.Events = append(fixture.Events, replay.FixtureEvent{
			AtMs:   ev.At.Sub(session.StartedAt).Milliseconds(),
			Inject: inject,
		})
	}

	for _, tr := range transitions {
		offsetMs := tr.At.Sub(session.StartedAt).Milliseconds()
		tick := int(offsetMs / config.SampleIntervalMs)
		if tick < 1 {
			tick = 1
		}
		fixture.Expected = append(fixture.Expected, replay.FixtureExpectation{
			Tick:  tick,
			State: string(tr.ToState),
		})
	}

	return fixture, nil
}

func findSession(store *journal.Store, sessionID string) (journal.SessionInfo, error) {
	sessions, err := store.Sessions()
	if err != nil {
		return journal.SessionInfo{}, err
	}
	for _, s := range sessions {
		if s.SessionID == sessionID {
			return s, nil
		}
	}
	return journal.SessionInfo{}, fmt.Errorf("session %s not found", sessionID)
}

// fixtureConfig recovers the engine calibration recorded at session start;
// missing or unparsable config falls back to defaults.
func fixtureConfig(configJSON string) replay.FixtureConfig {
	out := replay.DefaultFixtureConfig()
	if configJSON == "" {
		return out
	}
	var cfg engine.Config
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		slog.Warn("session config unparsable, using defaults", "error", err)
		return out
	}
	if cfg.SampleInterval > 0 {
		out.SampleIntervalMs = cfg.SampleInterval.Milliseconds()
	}
	if cfg.RingCapacity >= 2 {
		out.RingCapacity = cfg.RingCapacity
	}
	if cfg.MomentumWindow > 0 {
		out.MomentumWindowMs = cfg.MomentumWindow.Milliseconds()
	}
	if cfg.Ensemble.CouplingRate > 0 {
		out.CouplingRate = cfg.Ensemble.CouplingRate
	}
	if cfg.Classifier.Base != (classify.Thresholds{}) {
		out.Thresholds = replay.FixtureThresholds{
			Crystalline: cfg.Classifier.Base.Crystalline,
			Fluid:       cfg.Classifier.Base.Fluid,
			Turbulent:   cfg.Classifier.Base.Turbulent,
		}
	}
	return out
}

// #endregion export
