// Command enginectl runs the coherence engine interactively: inject phase
// evidence, watch snapshots, and exercise the persona queries. Useful for
// calibration sessions; attach a journal database to record provenance for
// later replay.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/aurawell/coherence/go-engine/internal/calibration"
	"github.com/aurawell/coherence/go-engine/internal/engine"
	"github.com/aurawell/coherence/go-engine/internal/ensemble"
	"github.com/aurawell/coherence/go-engine/internal/journal"
	"github.com/aurawell/coherence/go-engine/internal/persona"
)

// #region main
func main() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.Kitchen,
		}),
	))

	cfg := engine.DefaultConfig()
	if calPath := os.Getenv("COHERENCE_CALIBRATION"); calPath != "" {
		loaded, err := calibration.Load(calPath)
		if err != nil {
			slog.Error("calibration load failed", "path", calPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
		slog.Info("calibration loaded", "path", calPath)
	}

	e := engine.New(cfg, slog.Default())

	var store *journal.Store
	if dbPath := os.Getenv("COHERENCE_DB"); dbPath != "" {
		var err error
		store, err = journal.NewStore(dbPath)
		if err != nil {
			slog.Error("journal open failed", "path", dbPath, "error", err)
			os.Exit(1)
		}
		defer store.Close()

		configJSON, _ := json.Marshal(cfg)
		if err := store.BeginSession(e.SessionID(), time.Now(), string(configJSON)); err != nil {
			slog.Error("journal session failed", "error", err)
			os.Exit(1)
		}
		e.AttachRecorder(store)
		slog.Info("journal attached", "path", dbPath, "session", e.SessionID())
	}

	e.Start()
	defer e.Stop()

	fmt.Println("Coherence engine ready. Session:", e.SessionID())
	fmt.Println("Commands: inject ch=phase [...], delta ch=phase [...], snap, profile, action, prompt <topic>, start, stop, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "quit", "exit":
			return
		case "start":
			e.Start()
		case "stop":
			e.Stop()
		case "snap":
			printSnapshot(e.Snapshot())
		case "profile":
			p := e.Profile()
			fmt.Printf("persona=%s temp=%.2f noise=%.2f\n  hint: %s\n", p.Name, p.LLMTemp, p.NoiseScale, p.AIHint)
		case "action":
			rec := e.RecommendedAction()
			fmt.Printf("action=%s", rec.Action)
			if rec.Message != "" {
				fmt.Printf("  %q", rec.Message)
			}
			fmt.Println()
		case "prompt":
			topic := ""
			if len(fields) > 1 {
				topic = fields[1]
			}
			pc := e.ReadingPromptConfig(
				persona.ItemContext{ID: "repl", Kind: "reading", Topic: topic},
				persona.InteractionContext{TimeOfDay: "evening"},
			)
			fmt.Printf("temp=%.2f noise=%.2f tone=%s topic=%s\n  hint: %s\n", pc.Temperature, pc.NoiseScale, pc.Tone, pc.Topic, pc.Hint)
		case "inject", "delta":
			updates, err := parseUpdates(fields[1:], fields[0] == "delta")
			if err != nil {
				fmt.Println("parse error:", err)
				continue
			}
			e.Inject(updates)
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

// #endregion main

// #region helpers

func parseUpdates(args []string, delta bool) (map[string]ensemble.Evidence, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expected ch=phase pairs")
	}
	updates := make(map[string]ensemble.Evidence, len(args))
	for _, arg := range args {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed pair %q", arg)
		}
		phase, err := strconv.ParseFloat(parts[1], 32)
		if err != nil {
			return nil, fmt.Errorf("phase %q: %w", parts[1], err)
		}
		updates[parts[0]] = ensemble.Evidence{Phase: float32(phase), Delta: delta}
	}
	return updates, nil
}

func printSnapshot(snap engine.Snapshot) {
	fmt.Printf("R=%.4f momentum=%.4f state=%s running=%v\n", snap.R, snap.Momentum, snap.State, snap.IsRunning)
	fmt.Printf("thresholds: crystalline=%.3f fluid=%.3f turbulent=%.3f\n",
		snap.Thresholds.Crystalline, snap.Thresholds.Fluid, snap.Thresholds.Turbulent)
	for id, s := range snap.Signals {
		fmt.Printf("  %-16s %.3f\n", id, s)
	}
}

// #endregion helpers
