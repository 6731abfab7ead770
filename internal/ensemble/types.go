package ensemble

import "time"

// #region evidence
// Evidence is one channel's incoming phase observation for an Inject batch.
// Phase is in radians. When Delta is set, Phase is an increment relative to
// the channel's current phase rather than a target angle.
type Evidence struct {
	Phase float32
	Delta bool
}

// #endregion evidence

// #region channel
// Channel is one tracked behavioral dimension (tap rhythm, scroll velocity,
// dwell time, ...). Phase stays in [0, 2π); Weight is the channel's relative
// contribution to the order parameter.
type Channel struct {
	ID          string
	Phase       float32
	Weight      float32
	LastUpdated time.Time
}

// ChannelState is the read-side view of a channel handed to the sampler,
// with the staleness down-weight already applied.
type ChannelState struct {
	ID     string
	Phase  float32
	Weight float32
}

// #endregion channel

// #region config
// ChannelConfig seeds one channel at ensemble construction.
type ChannelConfig struct {
	ID     string  `yaml:"id"`
	Weight float32 `yaml:"weight"`
}

// Config holds the ensemble calibration values.
type Config struct {
	// CouplingRate is the per-inject step toward incoming evidence, in (0, 1].
	// 1.0 would be an instantaneous overwrite; smaller values smooth noise.
	CouplingRate float32

	// StalenessWindow is how long a channel may sit idle before its weight
	// starts decaying in the read-side view.
	StalenessWindow time.Duration

	// StalenessHalfLife controls the decay speed once past the window.
	StalenessHalfLife time.Duration

	// DefaultWeight is assigned to channels created on first injection.
	DefaultWeight float32

	// Channels seeds the initial channel set. Optional; injection creates
	// channels on demand.
	Channels []ChannelConfig
}

// DefaultConfig returns the baseline ensemble calibration.
func DefaultConfig() Config {
	return Config{
		CouplingRate:      0.35,
		StalenessWindow:   30 * time.Second,
		StalenessHalfLife: 20 * time.Second,
		DefaultWeight:     1.0,
	}
}

// #endregion config

// #region report
// InjectReport summarizes one Inject batch for logging.
type InjectReport struct {
	Applied int
	Created int
	Dropped []string // channel IDs whose evidence was malformed
}

// #endregion report
