package ensemble

import (
	"math"
	"sync"
	"time"
)

// #region ensemble

// Ensemble owns the channel set. All mutation goes through Inject; the
// sampler reads an atomic copy via View so a tick never observes a
// half-updated channel set.
type Ensemble struct {
	mu       sync.Mutex
	channels map[string]*Channel
	config   Config
}

// New creates an ensemble seeded with the configured channels.
// Negative seed weights clamp to zero rather than rejecting the channel.
func New(config Config) *Ensemble {
	if config.CouplingRate <= 0 || config.CouplingRate > 1 {
		config.CouplingRate = DefaultConfig().CouplingRate
	}
	if config.DefaultWeight < 0 {
		config.DefaultWeight = 0
	}
	e := &Ensemble{
		channels: make(map[string]*Channel),
		config:   config,
	}
	for _, cc := range config.Channels {
		w := cc.Weight
		if w < 0 {
			w = 0
		}
		e.channels[cc.ID] = &Channel{ID: cc.ID, Phase: 0, Weight: w}
	}
	return e
}

// #endregion ensemble

// #region inject

// Inject merges a batch of phase evidence into the channel set at the given
// time. Each channel moves a coupling step toward its evidence instead of
// snapping to it. Malformed evidence (NaN/Inf) drops that channel's update
// only; the rest of the batch still applies. Unknown channel IDs create a
// new channel with the default weight.
func (e *Ensemble) Inject(now time.Time, updates map[string]Evidence) InjectReport {
	var report InjectReport

	e.mu.Lock()
	defer e.mu.Unlock()

	for id, ev := range updates {
		if !validPhase(ev.Phase) {
			report.Dropped = append(report.Dropped, id)
			continue
		}

		ch, ok := e.channels[id]
		if !ok {
			ch = &Channel{ID: id, Phase: 0, Weight: e.config.DefaultWeight}
			e.channels[id] = ch
			report.Created++
		}

		if ev.Delta {
			ch.Phase = wrapPhase(ch.Phase + e.config.CouplingRate*ev.Phase)
		} else {
			target := wrapPhase(ev.Phase)
			ch.Phase = wrapPhase(ch.Phase + e.config.CouplingRate*angularDiff(target, ch.Phase))
		}
		ch.LastUpdated = now
		report.Applied++
	}

	return report
}

// #endregion inject

// #region view

// View returns a copy of the effective channel states at the given time.
// Channels idle past the staleness window are down-weighted exponentially;
// they are never deleted, so a returning signal source resumes at full
// weight on its next injection.
func (e *Ensemble) View(now time.Time) []ChannelState {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]ChannelState, 0, len(e.channels))
	for _, ch := range e.channels {
		w := ch.Weight
		if w > 0 && e.config.StalenessWindow > 0 && !ch.LastUpdated.IsZero() {
			idle := now.Sub(ch.LastUpdated)
			if idle > e.config.StalenessWindow {
				w *= decayFactor(idle-e.config.StalenessWindow, e.config.StalenessHalfLife)
			}
		}
		out = append(out, ChannelState{ID: ch.ID, Phase: ch.Phase, Weight: w})
	}
	return out
}

// Len returns the current channel count.
func (e *Ensemble) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.channels)
}

// Reset clears all channels back to the configured seed set.
func (e *Ensemble) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.channels = make(map[string]*Channel)
	for _, cc := range e.config.Channels {
		w := cc.Weight
		if w < 0 {
			w = 0
		}
		e.channels[cc.ID] = &Channel{ID: cc.ID, Phase: 0, Weight: w}
	}
}

// #endregion view

// #region helpers

const twoPi = 2 * math.Pi

// wrapPhase normalizes an angle into [0, 2π).
func wrapPhase(phase float32) float32 {
	p := math.Mod(float64(phase), twoPi)
	if p < 0 {
		p += twoPi
	}
	return float32(p)
}

// angularDiff returns the shortest signed distance from current to target,
// in (-π, π].
func angularDiff(target, current float32) float32 {
	d := math.Mod(float64(target)-float64(current), twoPi)
	if d > math.Pi {
		d -= twoPi
	} else if d <= -math.Pi {
		d += twoPi
	}
	return float32(d)
}

// validPhase rejects NaN and Inf evidence.
func validPhase(p float32) bool {
	f := float64(p)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// decayFactor computes 2^(-overshoot/halfLife) for staleness down-weighting.
func decayFactor(overshoot, halfLife time.Duration) float32 {
	if halfLife <= 0 {
		return 0
	}
	return float32(math.Exp2(-float64(overshoot) / float64(halfLife)))
}

// #endregion helpers
