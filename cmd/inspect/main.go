// Command inspect dumps journaled sessions, state transitions, and evidence
// batches from a coherence journal database.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/aurawell/coherence/go-engine/internal/journal"
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
		sessionID = flag.String("session", "", "dump one session in full")
	)
	flag.Parse()

	store, err := journal.NewStore(*dbPath)
	if err != nil {
		slog.Error("journal open failed", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if *sessionID == "" {
		listSessions(store)
		return
	}
	dumpSession(store, *sessionID)
}

// #endregion main

// #region listing

func listSessions(store *journal.Store) {
	sessions, err := store.Sessions()
	if err != nil {
		slog.Error("list sessions failed", "error", err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		fmt.Println("no sessions recorded")
		return
	}
	for _, s := range sessions {
		fmt.Printf("%s  started %s\n", s.SessionID, s.StartedAt.Format(time.RFC3339))
	}
}

func dumpSession(store *journal.Store, sessionID string) {
	transitions, err := store.Transitions(sessionID)
	if err != nil {
		slog.Error("read transitions failed", "error", err)
		os.Exit(1)
	}
	evidence, err := store.Evidence(sessionID)
	if err != nil {
		slog.Error("read evidence failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("session %s: %d transitions, %d evidence batches\n\n", sessionID, len(transitions), len(evidence))

	fmt.Println("transitions:")
	for _, tr := range transitions {
		fmt.Printf("  %s  %s → %s  R=%.4f momentum=%+.4f\n",
			tr.At.Format(time.RFC3339), tr.FromState, tr.ToState, tr.R, tr.Momentum)
	}

	fmt.Println("\nevidence:")
	for _, ev := range evidence {
		fmt.Printf("  %s  %d channels", ev.At.Format(time.RFC3339), len(ev.Updates))
		if len(ev.Dropped) > 0 {
			fmt.Printf("  dropped=%v", ev.Dropped)
		}
		fmt.Println()
		for id, e := range ev.Updates {
			kind := "abs"
			if e.Delta {
				kind = "delta"
			}
			fmt.Printf("    %-16s %s %.4f\n", id, kind, e.Phase)
		}
	}
}

// #endregion listing
