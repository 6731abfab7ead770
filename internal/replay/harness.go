package replay

import (
	"sort"
	"time"

	"github.com/aurawell/coherence/go-engine/internal/classify"
	"github.com/aurawell/coherence/go-engine/internal/coherence"
	"github.com/aurawell/coherence/go-engine/internal/ensemble"
)

// #region types

// TickResult captures the pipeline output for one simulated tick.
type TickResult struct {
	Tick     int
	Offset   time.Duration
	R        float32
	Momentum float32
	State    classify.StateID

	// Expected is empty when the fixture holds no expectation for this tick.
	Expected classify.StateID
	Match    bool
}

// Summary aggregates one replay run.
type Summary struct {
	Ticks      int
	Checked    int
	Matches    int
	Mismatches int
	FinalState classify.StateID
}

// #endregion types

// #region replay

// Run replays a fixture through the ensemble → order parameter → classifier
// pipeline with simulated time, entirely in-memory. Evidence batches apply at
// their recorded offsets; ticks fire on the fixture's sampling cadence. The
// run is deterministic: same fixture, same results.
func Run(f Fixture) ([]TickResult, Summary) {
	if f.Config.SampleIntervalMs <= 0 {
		f.Config.SampleIntervalMs = DefaultFixtureConfig().SampleIntervalMs
	}
	interval := f.Config.sampleInterval()
	window := f.Config.momentumWindow()

	ens := ensemble.New(f.Config.ensembleConfig())
	ring := coherence.NewRing(f.Config.RingCapacity)
	cls := classify.NewClassifier(f.Config.classifierConfig())

	events := append([]FixtureEvent(nil), f.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].AtMs < events[j].AtMs })

	expected := make(map[int]classify.StateID, len(f.Expected))
	lastTick := 0
	for _, exp := range f.Expected {
		expected[exp.Tick] = classify.StateID(exp.State)
		if exp.Tick > lastTick {
			lastTick = exp.Tick
		}
	}
	if len(events) > 0 {
		need := int(events[len(events)-1].AtMs/f.Config.SampleIntervalMs) + 1
		if need > lastTick {
			lastTick = need
		}
	}
	if lastTick == 0 {
		lastTick = 1
	}

	base := time.Unix(0, 0).UTC()
	results := make([]TickResult, 0, lastTick)
	next := 0

	for tick := 1; tick <= lastTick; tick++ {
		offset := time.Duration(tick) * interval
		now := base.Add(offset)

		// Apply every event due by this tick at its own recorded time.
		for next < len(events) && time.Duration(events[next].AtMs)*time.Millisecond <= offset {
			ev := events[next]
			updates := make(map[string]ensemble.Evidence, len(ev.Inject))
			for id, fe := range ev.Inject {
				updates[id] = ensemble.Evidence{Phase: fe.Phase, Delta: fe.Delta}
			}
			ens.Inject(base.Add(time.Duration(ev.AtMs)*time.Millisecond), updates)
			next++
		}

		view := ens.View(now)
		r, _ := coherence.OrderParameter(view)
		ring.Push(coherence.Sample{R: r, At: now})
		momentum := ring.Momentum(window)
		out := cls.Classify(r, momentum)

		result := TickResult{
			Tick:     tick,
			Offset:   offset,
			R:        r,
			Momentum: momentum,
			State:    out.State.ID,
		}
		if want, ok := expected[tick]; ok {
			result.Expected = want
			result.Match = want == out.State.ID
		}
		results = append(results, result)
	}

	summary := Summary{Ticks: len(results)}
	for _, res := range results {
		if res.Expected == "" {
			continue
		}
		summary.Checked++
		if res.Match {
			summary.Matches++
		} else {
			summary.Mismatches++
		}
	}
	if len(results) > 0 {
		summary.FinalState = results[len(results)-1].State
	}
	return results, summary
}

// #endregion replay
