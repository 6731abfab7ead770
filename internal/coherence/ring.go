package coherence

import "time"

// #region sample

// Sample is one timestamped coherence observation. R stays in [0, 1].
type Sample struct {
	R  float32
	At time.Time
}

// #endregion sample

// #region ring

// Ring is a fixed-capacity circular buffer of coherence samples. It is the
// only historical state the engine keeps: the backing array is allocated once
// and indexed by position, so a tick never reallocates.
type Ring struct {
	samples []Sample
	head    int // index of the next write
	count   int
}

// NewRing allocates a ring with the given capacity. Capacity below 2 is
// raised to 2 so momentum always has room for a finite difference.
func NewRing(capacity int) *Ring {
	if capacity < 2 {
		capacity = 2
	}
	return &Ring{samples: make([]Sample, capacity)}
}

// Push appends a sample, evicting the oldest once full.
func (r *Ring) Push(s Sample) {
	r.samples[r.head] = s
	r.head = (r.head + 1) % len(r.samples)
	if r.count < len(r.samples) {
		r.count++
	}
}

// Len returns the number of stored samples.
func (r *Ring) Len() int { return r.count }

// Cap returns the fixed capacity.
func (r *Ring) Cap() int { return len(r.samples) }

// Latest returns the most recent sample, if any.
func (r *Ring) Latest() (Sample, bool) {
	if r.count == 0 {
		return Sample{}, false
	}
	idx := (r.head - 1 + len(r.samples)) % len(r.samples)
	return r.samples[idx], true
}

// At returns the i-th most recent sample (0 = latest).
func (r *Ring) At(i int) (Sample, bool) {
	if i < 0 || i >= r.count {
		return Sample{}, false
	}
	idx := (r.head - 1 - i + 2*len(r.samples)) % len(r.samples)
	return r.samples[idx], true
}

// Reset discards all samples without reallocating.
func (r *Ring) Reset() {
	r.head = 0
	r.count = 0
}

// #endregion ring

// #region momentum

// Momentum estimates dR/dt as a finite difference between the latest sample
// and the oldest sample still inside the window, using the actual elapsed
// time between the two rather than an assumed cadence, so missed or late
// ticks do not skew the slope. Fewer than two samples yields 0.
func (r *Ring) Momentum(window time.Duration) float32 {
	if r.count < 2 {
		return 0
	}
	latest, _ := r.At(0)

	ref, _ := r.At(r.count - 1)
	if window > 0 {
		cutoff := latest.At.Add(-window)
		for i := r.count - 1; i >= 1; i-- {
			s, _ := r.At(i)
			if !s.At.Before(cutoff) {
				ref = s
				break
			}
		}
	}

	dt := latest.At.Sub(ref.At).Seconds()
	if dt <= 0 {
		return 0
	}
	return float32(float64(latest.R-ref.R) / dt)
}

// #endregion momentum
