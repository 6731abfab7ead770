// Command replay runs a recorded fixture through the coherence pipeline and
// checks the classified state against the fixture's expectations. Exits
// non-zero on any mismatch, so fixtures double as calibration regression
// tests.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

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
		fixturePath = flag.String("fixture", "", "path to fixture JSON")
		verbose     = flag.Bool("v", false, "print every tick, not just checked ones")
	)
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -fixture <file.json> [-v]")
		os.Exit(2)
	}

	fixture, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		slog.Error("fixture load failed", "error", err)
		os.Exit(1)
	}
	if fixture.Description != "" {
		fmt.Println(fixture.Description)
	}

	results, summary := replay.Run(fixture)
	for _, res := range results {
		if res.Expected == "" {
			if *verbose {
				fmt.Printf("tick %3d  R=%.4f momentum=%+.4f state=%s\n", res.Tick, res.R, res.Momentum, res.State)
			}
			continue
		}
		status := "ok"
		if !res.Match {
			status = "MISMATCH"
		}
		fmt.Printf("tick %3d  R=%.4f momentum=%+.4f state=%s expected=%s  %s\n",
			res.Tick, res.R, res.Momentum, res.State, res.Expected, status)
	}

	fmt.Printf("\nticks=%d checked=%d matches=%d mismatches=%d final=%s\n",
		summary.Ticks, summary.Checked, summary.Matches, summary.Mismatches, summary.FinalState)

	if summary.Mismatches > 0 {
		os.Exit(1)
	}
}

// #endregion main
